package source

import (
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
)

// ErrMalformedMatch marks raw records that cannot be carried through the
// pipeline at all (missing team names, no innings). The orchestrator counts
// and skips them.
var ErrMalformedMatch = crerr.New("malformed source match")

// LoadCorpus reads and decodes a raw match export file. Corpus files run to
// many megabytes, so decoding goes through sonic.
func LoadCorpus(path string) ([]RawMatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "read corpus %s", path)
	}
	var matches []RawMatch
	if err := sonic.Unmarshal(data, &matches); err != nil {
		return nil, crerr.Wrapf(err, "decode corpus %s", path)
	}
	log.Info("Loaded raw corpus", "path", path, "matches", len(matches))
	return matches, nil
}

// Check validates a single raw record at ingestion so downstream code works
// against a known-good shape.
func (m *RawMatch) Check() error {
	if strings.TrimSpace(m.Teams.Team1) == "" || strings.TrimSpace(m.Teams.Team2) == "" {
		return crerr.Mark(crerr.Newf("match %q: missing team name", m.MatchID), ErrMalformedMatch)
	}
	if m.MatchID == "" {
		return crerr.Mark(crerr.New("match without match_id"), ErrMalformedMatch)
	}
	for i := range m.Innings {
		if strings.TrimSpace(m.Innings[i].Team) == "" {
			return crerr.Mark(crerr.Newf("match %q: innings %d has no team", m.MatchID, i), ErrMalformedMatch)
		}
	}
	return nil
}

// dateLayouts covers the formats seen across export generations.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// ParseDate converts a source date string to the store's timestamp type.
// Unparseable dates fall back to the zero time; the scorer sometimes left
// the field blank entirely.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	log.Warn("Unparseable source date", "date", s)
	return time.Time{}
}
