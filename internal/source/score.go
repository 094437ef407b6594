package source

import (
	"fmt"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// ParsedScore is the structured form of a "runs/wickets" score string.
type ParsedScore struct {
	Runs     int
	Wickets  int
	Declared bool
}

// allOut is the implied wicket count when the scorer wrote a bare total.
const allOut = 10

// ParseScore parses score strings of the shapes "120/6", "120/6d" and "120".
// A bare total means the side was bowled out.
func ParseScore(s string) (ParsedScore, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ParsedScore{}, crerr.New("empty score string")
	}
	var ps ParsedScore
	if strings.HasSuffix(strings.ToLower(s), "d") {
		ps.Declared = true
		s = s[:len(s)-1]
	}
	runsPart, wicketsPart, found := strings.Cut(s, "/")
	runs, err := strconv.Atoi(strings.TrimSpace(runsPart))
	if err != nil || runs < 0 {
		return ParsedScore{}, crerr.Newf("bad runs in score %q", s)
	}
	ps.Runs = runs
	if !found {
		ps.Wickets = allOut
		return ps, nil
	}
	wickets, err := strconv.Atoi(strings.TrimSpace(wicketsPart))
	if err != nil || wickets < 0 || wickets > 10 {
		return ParsedScore{}, crerr.Newf("bad wickets in score %q", s)
	}
	ps.Wickets = wickets
	return ps, nil
}

// FormatScore renders the canonical "runs/wickets" form.
func FormatScore(ps ParsedScore) string {
	s := fmt.Sprintf("%d/%d", ps.Runs, ps.Wickets)
	if ps.Declared {
		s += "d"
	}
	return s
}
