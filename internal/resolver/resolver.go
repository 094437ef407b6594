package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/sequence"
)

// ErrResolutionFailure marks names that cannot be matched or created.
// Creation is the normal fallback, so this is reserved for malformed or
// empty names.
var ErrResolutionFailure = crerr.New("name resolution failure")

// Match tiers, reported to the match callback for instrumentation.
const (
	TierExact        = "exact"
	TierContainment  = "containment"
	TierTokenOverlap = "token-overlap"
	TierCreated      = "created"
)

type tieredMatcher struct {
	tier    string
	matcher NameMatcher
}

// Context holds the per-run name→ID indexes and creation machinery. It is an
// explicit object passed into every resolver call — constructed fresh per
// migration run, never a package-level singleton — so resolution is unit
// testable in isolation.
type Context struct {
	Teams   *Index
	Players *Index

	seq      *sequence.Allocator
	matchers []tieredMatcher
	now      func() time.Time
	onMatch  func(tier string)
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithMatcher replaces the whole strategy chain with a single matcher under
// the given tier label.
func WithMatcher(tier string, m NameMatcher) ContextOption {
	return func(c *Context) {
		c.matchers = []tieredMatcher{{tier: tier, matcher: m}}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) ContextOption {
	return func(c *Context) { c.now = now }
}

// WithMatchCallback installs a hook invoked with the tier of every
// successful resolution (including "created").
func WithMatchCallback(fn func(tier string)) ContextOption {
	return func(c *Context) { c.onMatch = fn }
}

// NewContext creates a fresh resolution context with the default three-tier
// matcher chain.
func NewContext(seq *sequence.Allocator, opts ...ContextOption) *Context {
	c := &Context{
		Teams:   NewIndex(),
		Players: NewIndex(),
		seq:     seq,
		now:     time.Now,
		matchers: []tieredMatcher{
			{tier: TierExact, matcher: ExactMatcher{}},
			{tier: TierContainment, matcher: ContainmentMatcher{}},
			{tier: TierTokenOverlap, matcher: TokenOverlapMatcher{}},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterTeam primes the team index with an already-known entity.
func (c *Context) RegisterTeam(name, id string) {
	c.Teams.Add(NormalizeName(name), id)
}

// RegisterPlayer primes the player index with an already-known entity.
func (c *Context) RegisterPlayer(name, id string) {
	c.Players.Add(NormalizeName(name), id)
}

// ResolveTeam maps a free-text team name to a known team ID without creating.
func (c *Context) ResolveTeam(name string) (string, bool) {
	return c.resolve(name, c.Teams)
}

// ResolvePlayer maps a free-text player name to a known player ID without
// creating.
func (c *Context) ResolvePlayer(name string) (string, bool) {
	return c.resolve(name, c.Players)
}

func (c *Context) resolve(name string, index *Index) (string, bool) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return "", false
	}
	for _, tm := range c.matchers {
		if id, ok := tm.matcher.Match(normalized, index); ok {
			if c.onMatch != nil {
				c.onMatch(tm.tier)
			}
			return id, true
		}
	}
	return "", false
}

// ResolveOrCreateTeam resolves a team name, creating a default record when no
// reasonable match exists. The returned team is non-nil only when created;
// the caller owns persisting it.
func (c *Context) ResolveOrCreateTeam(ctx context.Context, name string) (id string, created *cricket.Team, err error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return "", nil, crerr.Mark(crerr.Newf("unresolvable team name %q", name), ErrResolutionFailure)
	}
	if id, ok := c.resolve(name, c.Teams); ok {
		return id, nil, nil
	}

	teamID, displayID, err := c.seq.Allocate(ctx, sequence.Teams)
	if err != nil {
		return "", nil, crerr.Wrapf(err, "allocate team for %q", name)
	}
	now := c.now().UTC()
	team := &cricket.Team{
		TeamID:    teamID,
		DisplayID: displayID,
		Name:      strings.TrimSpace(name),
		ShortName: shortName(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.Teams.Add(normalized, teamID)
	if c.onMatch != nil {
		c.onMatch(TierCreated)
	}
	log.Debug("Created team", "name", team.Name, "teamId", teamID)
	return teamID, team, nil
}

// ResolveOrCreatePlayer resolves a player name, creating a default record
// (role defaults, zeroed stats) when no reasonable match exists.
func (c *Context) ResolveOrCreatePlayer(ctx context.Context, name string) (id string, created *cricket.Player, err error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return "", nil, crerr.Mark(crerr.Newf("unresolvable player name %q", name), ErrResolutionFailure)
	}
	if id, ok := c.resolve(name, c.Players); ok {
		return id, nil, nil
	}

	playerID, displayID, err := c.seq.Allocate(ctx, sequence.Players)
	if err != nil {
		return "", nil, crerr.Wrapf(err, "allocate player for %q", name)
	}
	now := c.now().UTC()
	player := &cricket.Player{
		PlayerID:   playerID,
		DisplayID:  displayID,
		Name:       strings.TrimSpace(name),
		SourceName: name,
		Role:       cricket.RoleBatsman,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	c.Players.Add(normalized, playerID)
	if c.onMatch != nil {
		c.onMatch(TierCreated)
	}
	log.Debug("Created player", "name", player.Name, "playerId", playerID)
	return playerID, player, nil
}

// shortName derives a display abbreviation from the leading letters of each
// word, capped at three characters.
func shortName(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(strings.ToUpper(name)) {
		b.WriteByte(word[0])
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() < 2 {
		upper := strings.ToUpper(NormalizeName(name))
		if len(upper) >= 3 {
			return strings.ReplaceAll(upper, " ", "")[:3]
		}
		return upper
	}
	return b.String()
}
