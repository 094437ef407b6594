package cricket

import "time"

// Collection names in the document store.
const (
	CollectionPlayers     = "players"
	CollectionTeams       = "teams"
	CollectionMatches     = "matches"
	CollectionMatchSquads = "matchSquads"
	CollectionTournaments = "tournaments"
	CollectionCounters    = "counters"
)

// PlayerRole classifies a player's primary discipline.
type PlayerRole string

const (
	RoleBatsman      PlayerRole = "batsman"
	RoleBowler       PlayerRole = "bowler"
	RoleAllRounder   PlayerRole = "all-rounder"
	RoleWicketKeeper PlayerRole = "wicket-keeper"
)

// ResultType classifies how a match ended.
type ResultType string

const (
	ResultNormal    ResultType = "normal"
	ResultTie       ResultType = "tie"
	ResultAbandoned ResultType = "abandoned"
)

// CaptainTBD is the sentinel captain name used when no captain could be
// inferred from the source data.
const CaptainTBD = "TBD"

// Player is a long-lived aggregate root. It is created on first appearance
// of a name in any source match and never deleted; deactivation and merges
// are soft (IsActive / MergedInto).
type Player struct {
	PlayerID     string     `firestore:"playerId" json:"playerId" validate:"required,numeric"`
	DisplayID    int64      `firestore:"displayId" json:"displayId" validate:"gte=0"`
	Name         string     `firestore:"name" json:"name" validate:"required"`
	SourceName   string     `firestore:"sourceName,omitempty" json:"sourceName,omitempty"`
	Role         PlayerRole `firestore:"role" json:"role" validate:"required,oneof=batsman bowler all-rounder wicket-keeper"`
	BattingStyle string     `firestore:"battingStyle,omitempty" json:"battingStyle,omitempty"`
	BowlingStyle string     `firestore:"bowlingStyle,omitempty" json:"bowlingStyle,omitempty"`

	// PreferredTeamID is derived from recent appearances, not authoritative.
	PreferredTeamID string `firestore:"preferredTeamId,omitempty" json:"preferredTeamId,omitempty"`

	CareerStats  CareerStats   `firestore:"careerStats" json:"careerStats"`
	Achievements []Achievement `firestore:"achievements,omitempty" json:"achievements,omitempty"`

	// Most-recent-first, capped at 10 and 5 respectively.
	RecentMatches []MatchRef `firestore:"recentMatches,omitempty" json:"recentMatches,omitempty"`
	RecentTeams   []string   `firestore:"recentTeams,omitempty" json:"recentTeams,omitempty"`

	IsActive   bool      `firestore:"isActive" json:"isActive"`
	MergedInto string    `firestore:"mergedInto,omitempty" json:"mergedInto,omitempty"`
	CreatedAt  time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// CareerStats holds a player's cumulative all-time aggregates. Averages are
// always recomputed from the counters, never drifted incrementally.
type CareerStats struct {
	Batting  BattingStats  `firestore:"batting" json:"batting"`
	Bowling  BowlingStats  `firestore:"bowling" json:"bowling"`
	Fielding FieldingStats `firestore:"fielding" json:"fielding"`
	Overall  OverallStats  `firestore:"overall" json:"overall"`
}

type BattingStats struct {
	MatchesPlayed int     `firestore:"matchesPlayed" json:"matchesPlayed"`
	Runs          int     `firestore:"runs" json:"runs"`
	Balls         int     `firestore:"balls" json:"balls"`
	NotOuts       int     `firestore:"notOuts" json:"notOuts"`
	Fours         int     `firestore:"fours" json:"fours"`
	Sixes         int     `firestore:"sixes" json:"sixes"`
	HighestScore  int     `firestore:"highestScore" json:"highestScore"`
	Centuries     int     `firestore:"centuries" json:"centuries"`
	Fifties       int     `firestore:"fifties" json:"fifties"`
	Ducks         int     `firestore:"ducks" json:"ducks"`
	Average       float64 `firestore:"average" json:"average"`
	StrikeRate    float64 `firestore:"strikeRate" json:"strikeRate"`
}

type BowlingStats struct {
	MatchesPlayed   int           `firestore:"matchesPlayed" json:"matchesPlayed"`
	Wickets         int           `firestore:"wickets" json:"wickets"`
	RunsConceded    int           `firestore:"runsConceded" json:"runsConceded"`
	OversBowled     float64       `firestore:"oversBowled" json:"oversBowled"`
	Maidens         int           `firestore:"maidens" json:"maidens"`
	FiveWicketHauls int           `firestore:"fiveWicketHauls" json:"fiveWicketHauls"`
	BestBowling     BowlingFigure `firestore:"bestBowling" json:"bestBowling"`
	Economy         float64       `firestore:"economy" json:"economy"`
	Average         float64       `firestore:"average" json:"average"`
}

// BowlingFigure is a single bowling return. More wickets always beats fewer;
// equal wickets are broken by fewer runs conceded.
type BowlingFigure struct {
	Wickets int `firestore:"wickets" json:"wickets"`
	Runs    int `firestore:"runs" json:"runs"`
}

type FieldingStats struct {
	Catches   int `firestore:"catches" json:"catches"`
	RunOuts   int `firestore:"runOuts" json:"runOuts"`
	Stumpings int `firestore:"stumpings" json:"stumpings"`
}

type OverallStats struct {
	MatchesPlayed int `firestore:"matchesPlayed" json:"matchesPlayed"`
}

// Achievement is one entry in a player's append-only milestone log.
type Achievement struct {
	Type    string    `firestore:"type" json:"type"`
	MatchID string    `firestore:"matchId,omitempty" json:"matchId,omitempty"`
	Value   int       `firestore:"value,omitempty" json:"value,omitempty"`
	Detail  string    `firestore:"detail,omitempty" json:"detail,omitempty"`
	Date    time.Time `firestore:"date" json:"date"`
}

// MatchRef is a lightweight pointer to a match for recent-activity lists.
type MatchRef struct {
	MatchID string    `firestore:"matchId" json:"matchId"`
	TeamID  string    `firestore:"teamId,omitempty" json:"teamId,omitempty"`
	Date    time.Time `firestore:"date" json:"date"`
}

// PlayerSummary is the denormalized snapshot of a player embedded in other
// documents so historical display never needs a join.
type PlayerSummary struct {
	PlayerID string     `firestore:"playerId" json:"playerId"`
	Name     string     `firestore:"name" json:"name"`
	Role     PlayerRole `firestore:"role,omitempty" json:"role,omitempty"`
}

// Team is a long-lived aggregate root, deduplicated by name, never deleted.
type Team struct {
	TeamID    string `firestore:"teamId" json:"teamId" validate:"required,numeric"`
	DisplayID int64  `firestore:"displayId" json:"displayId" validate:"gte=0"`
	Name      string `firestore:"name" json:"name" validate:"required"`
	ShortName string `firestore:"shortName,omitempty" json:"shortName,omitempty"`

	// Players is the roster rebuilt by replaying all matches referencing this team.
	Players []TeamPlayer `firestore:"players,omitempty" json:"players,omitempty"`

	CaptainID string         `firestore:"captainId,omitempty" json:"captainId,omitempty"`
	Captain   *PlayerSummary `firestore:"captain,omitempty" json:"captain,omitempty"`

	TeamStats     TeamStats  `firestore:"teamStats" json:"teamStats"`
	RecentMatches []MatchRef `firestore:"recentMatches,omitempty" json:"recentMatches,omitempty"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// TeamPlayer is one roster entry: a player snapshot plus per-team tallies.
type TeamPlayer struct {
	PlayerSummary
	MatchesPlayed int `firestore:"matchesPlayed" json:"matchesPlayed"`
	Runs          int `firestore:"runs" json:"runs"`
	Wickets       int `firestore:"wickets" json:"wickets"`
}

type TeamStats struct {
	MatchesPlayed int     `firestore:"matchesPlayed" json:"matchesPlayed"`
	Wins          int     `firestore:"wins" json:"wins"`
	Losses        int     `firestore:"losses" json:"losses"`
	Draws         int     `firestore:"draws" json:"draws"`
	WinPercentage float64 `firestore:"winPercentage" json:"winPercentage" validate:"gte=0,lte=100"`
}

// Match is a derived event record. It references teams and players by ID and
// embeds point-in-time snapshots of their display fields. External identity
// (ExternalRef) is stable across migration passes that rewrite its nested shape.
type Match struct {
	MatchID     string `firestore:"matchId" json:"matchId" validate:"required,numeric"`
	DisplayID   int64  `firestore:"displayId" json:"displayId" validate:"gte=0"`
	ExternalRef string `firestore:"externalRef" json:"externalRef" validate:"required"`

	Date       time.Time `firestore:"date" json:"date"`
	Ground     string    `firestore:"ground,omitempty" json:"ground,omitempty"`
	Tournament string    `firestore:"tournament,omitempty" json:"tournament,omitempty"`

	Team1 MatchTeam `firestore:"team1" json:"team1" validate:"required"`
	Team2 MatchTeam `firestore:"team2" json:"team2" validate:"required"`

	Toss   *Toss  `firestore:"toss,omitempty" json:"toss,omitempty"`
	Result Result `firestore:"result" json:"result"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// MatchTeam is one side of a match: squad snapshot, score, per-player
// performances and, in the v2 schema, the full embedded innings record.
type MatchTeam struct {
	TeamID    string `firestore:"id" json:"id" validate:"required"`
	Name      string `firestore:"name" json:"name" validate:"required"`
	ShortName string `firestore:"shortName,omitempty" json:"shortName,omitempty"`

	CaptainID   string `firestore:"captainId,omitempty" json:"captainId,omitempty"`
	CaptainName string `firestore:"captainName,omitempty" json:"captainName,omitempty"`

	Squad   []SquadPlayer       `firestore:"squad,omitempty" json:"squad,omitempty"`
	Score   Score               `firestore:"score" json:"score"`
	Players []PlayerPerformance `firestore:"players,omitempty" json:"players,omitempty"`
	Innings *Innings            `firestore:"innings,omitempty" json:"innings,omitempty"`
}

// SquadPlayer is one member of the side fielded for this specific match.
type SquadPlayer struct {
	PlayerID       string `firestore:"playerId" json:"playerId"`
	Name           string `firestore:"name" json:"name"`
	IsCaptain      bool   `firestore:"isCaptain" json:"isCaptain"`
	IsWicketKeeper bool   `firestore:"isWicketKeeper" json:"isWicketKeeper"`
}

type Score struct {
	Runs     int     `firestore:"runs" json:"runs" validate:"gte=0"`
	Wickets  int     `firestore:"wickets" json:"wickets" validate:"gte=0,lte=10"`
	Overs    float64 `firestore:"overs" json:"overs"`
	Declared bool    `firestore:"declared" json:"declared"`
}

// PlayerPerformance merges a player's batting and bowling contributions for
// one match into a single per-team record.
type PlayerPerformance struct {
	PlayerID  string        `firestore:"playerId" json:"playerId"`
	Name      string        `firestore:"name" json:"name"`
	Batting   *BattingEntry `firestore:"batting,omitempty" json:"batting,omitempty"`
	Bowling   *BowlingEntry `firestore:"bowling,omitempty" json:"bowling,omitempty"`
	Catches   int           `firestore:"catches" json:"catches"`
	RunOuts   int           `firestore:"runOuts" json:"runOuts"`
	Stumpings int           `firestore:"stumpings" json:"stumpings"`
}

type Innings struct {
	InningsID     string         `firestore:"inningsId" json:"inningsId"`
	Batting       []BattingEntry `firestore:"batting,omitempty" json:"batting,omitempty"`
	Bowling       []BowlingEntry `firestore:"bowling,omitempty" json:"bowling,omitempty"`
	FallOfWickets []FallOfWicket `firestore:"fallOfWickets,omitempty" json:"fallOfWickets,omitempty"`
	Extras        int            `firestore:"extras" json:"extras"`
}

type BattingEntry struct {
	PlayerID  string     `firestore:"playerId,omitempty" json:"playerId,omitempty"`
	Name      string     `firestore:"name" json:"name"`
	Runs      int        `firestore:"runs" json:"runs"`
	Balls     int        `firestore:"balls" json:"balls"`
	Fours     int        `firestore:"fours" json:"fours"`
	Sixes     int        `firestore:"sixes" json:"sixes"`
	Dismissed bool       `firestore:"dismissed" json:"dismissed"`
	Dismissal *Dismissal `firestore:"dismissal,omitempty" json:"dismissal,omitempty"`
}

// Dismissal links a batting entry to the bowler and fielder(s) credited.
// IDs stay nil when a name could not be resolved; never fabricated.
type Dismissal struct {
	Type       string   `firestore:"type" json:"type"`
	BowlerID   *string  `firestore:"bowlerId" json:"bowlerId"`
	FielderIDs []string `firestore:"fielderIds,omitempty" json:"fielderIds,omitempty"`
	Text       string   `firestore:"text,omitempty" json:"text,omitempty"`
}

type BowlingEntry struct {
	PlayerID string  `firestore:"playerId,omitempty" json:"playerId,omitempty"`
	Name     string  `firestore:"name" json:"name"`
	Overs    float64 `firestore:"overs" json:"overs"`
	Maidens  int     `firestore:"maidens" json:"maidens"`
	Runs     int     `firestore:"runs" json:"runs"`
	Wickets  int     `firestore:"wickets" json:"wickets"`
}

// FallOfWicket is one entry in the ordered dismissal log of an innings.
type FallOfWicket struct {
	Wicket     int      `firestore:"wicket" json:"wicket"`
	Score      int      `firestore:"score" json:"score"`
	Over       float64  `firestore:"over" json:"over"`
	PlayerID   *string  `firestore:"playerId" json:"playerId"`
	PlayerName string   `firestore:"playerName,omitempty" json:"playerName,omitempty"`
	BowlerID   *string  `firestore:"bowlerId" json:"bowlerId"`
	FielderIDs []string `firestore:"fielderIds,omitempty" json:"fielderIds,omitempty"`
}

type Toss struct {
	WinnerTeamID string `firestore:"winnerTeamId,omitempty" json:"winnerTeamId,omitempty"`
	WinnerName   string `firestore:"winnerName,omitempty" json:"winnerName,omitempty"`
	Decision     string `firestore:"decision,omitempty" json:"decision,omitempty"`
}

// Result records the outcome. When ResultType is "normal" the winner must be
// one of the two participating teams; a nil WinnerTeamID on a normal result
// means the source's winner text could not be matched and was flagged.
type Result struct {
	ResultType   ResultType `firestore:"resultType" json:"resultType" validate:"required,oneof=normal tie abandoned"`
	WinnerTeamID *string    `firestore:"winnerTeamId" json:"winnerTeamId"`
	WinnerName   string     `firestore:"winnerName,omitempty" json:"winnerName,omitempty"`
	Margin       string     `firestore:"margin,omitempty" json:"margin,omitempty"`
}

// Tournament groups matches by competition name, deduplicated exactly.
type Tournament struct {
	TournamentID string    `firestore:"tournamentId" json:"tournamentId" validate:"required,numeric"`
	DisplayID    int64     `firestore:"displayId" json:"displayId"`
	Name         string    `firestore:"name" json:"name" validate:"required"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
}

// SequenceCounter is the per-entity-type counter document. It is the only
// entity with a strict single-writer-per-increment invariant and must only
// be updated inside the store's transactional read-modify-write.
type SequenceCounter struct {
	CurrentValue int64 `firestore:"currentValue" json:"currentValue"`
}
