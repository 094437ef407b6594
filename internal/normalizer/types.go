package normalizer

import "github.com/wagonwheel/crickstats/internal/cricket"

// WarningKind classifies conditions that are preserved as-is in the data but
// surfaced to an operator instead of being silently recorded.
type WarningKind string

const (
	// WarnUnresolvedWinner: the declared winner matched neither team. The
	// result stays "normal" with a nil winner — unresolved, not a draw.
	WarnUnresolvedWinner WarningKind = "unresolved-winner"
	// WarnAmbiguousFielder: a dismissal's fielder name matched more than one
	// player in the same match; the first found was credited.
	WarnAmbiguousFielder WarningKind = "ambiguous-fielder"
	// WarnUnresolvedName: a name inside the match could not be matched to
	// any same-match player; the reference stays null.
	WarnUnresolvedName WarningKind = "unresolved-name"
)

// Warning is one operator-facing flag raised while normalizing a match.
type Warning struct {
	Kind     WarningKind
	MatchRef string // source match_id
	Detail   string
}

// Result is the output of normalizing one raw match: the canonical document
// plus any entities created along the way (the caller owns persisting them)
// and the warnings raised.
type Result struct {
	Match      *cricket.Match
	NewTeams   []*cricket.Team
	NewPlayers []*cricket.Player
	Warnings   []Warning
}
