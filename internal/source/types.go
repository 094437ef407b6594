package source

// RawMatch is one record of the heterogeneous raw export format: a JSON array
// of match objects produced by the legacy scorer. Everything downstream works
// against this shape after a single validation pass at ingestion, so the
// folding code never re-checks optional chains.
type RawMatch struct {
	MatchID    string      `json:"match_id"`
	Teams      RawTeams    `json:"teams"`
	Date       string      `json:"date"`
	Ground     string      `json:"ground"`
	Tournament string      `json:"tournament"`
	Toss       *RawToss    `json:"toss"`
	Result     *RawResult  `json:"result"`
	Innings    []RawInning `json:"innings"`
}

type RawTeams struct {
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
}

type RawToss struct {
	Winner   string `json:"winner"`
	Decision string `json:"decision"`
}

type RawResult struct {
	Winner string `json:"winner"`
	Margin string `json:"margin"`
}

type RawInning struct {
	Team          string       `json:"team"`
	Score         string       `json:"score"`
	Overs         float64      `json:"overs"`
	Extras        int          `json:"extras"`
	Batting       []RawBatting `json:"batting"`
	Bowling       []RawBowling `json:"bowling"`
	FallOfWickets []RawFOW     `json:"fall_of_wickets"`
}

type RawBatting struct {
	Name           string        `json:"name"`
	Runs           int           `json:"runs"`
	Balls          int           `json:"balls"`
	Fours          int           `json:"fours"`
	Sixes          int           `json:"sixes"`
	IsCaptain      bool          `json:"is_captain"`
	IsWicketKeeper bool          `json:"is_wicket_keeper"`
	HowOut         *RawDismissal `json:"how_out"`
}

// RawDismissal may name a single fielder or several (run outs can credit
// more than one). Text carries the scorer's free-form description.
type RawDismissal struct {
	Type     string   `json:"type"`
	Bowler   string   `json:"bowler"`
	Fielder  string   `json:"fielder"`
	Fielders []string `json:"fielders"`
	Text     string   `json:"text"`
}

type RawBowling struct {
	Name    string  `json:"name"`
	Overs   float64 `json:"overs"`
	Maidens int     `json:"maidens"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
}

type RawFOW struct {
	Score  int     `json:"score"`
	Wicket int     `json:"wicket"`
	Player string  `json:"player"`
	Over   float64 `json:"over"`
}

// DismissalTypeNotOut is the scorer's marker for an undismissed batter.
const DismissalTypeNotOut = "not out"

// Dismissed reports whether this batting entry ended in a wicket.
func (b RawBatting) Dismissed() bool {
	return b.HowOut != nil && b.HowOut.Type != "" && b.HowOut.Type != DismissalTypeNotOut
}

// FielderNames returns every fielder credited on the dismissal, preferring
// the plural field when the scorer filled it in.
func (d *RawDismissal) FielderNames() []string {
	if d == nil {
		return nil
	}
	if len(d.Fielders) > 0 {
		return d.Fielders
	}
	if d.Fielder != "" {
		return []string{d.Fielder}
	}
	return nil
}
