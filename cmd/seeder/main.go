// Command seeder generates a synthetic raw-corpus JSON file for local
// migration runs: a handful of teams, a shared player pool with the usual
// name-spelling drift, and fully scored innings.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/wagonwheel/crickstats/internal/source"
)

var teamNames = []string{
	"Falcons CC",
	"Eagles",
	"Northside Strikers",
	"Harbour XI",
	"Riverside CC",
	"Old Town Wanderers",
}

var firstNames = []string{"A", "R", "S", "V", "M", "K", "J", "D", "P", "N"}
var lastNames = []string{"Kumar", "Sharma", "Patel", "Singh", "Iyer", "Khan", "Das", "Rao", "Mehta", "Nair"}

var dismissalTypes = []string{"bowled", "caught", "lbw", "run out", "stumped", "caught and bowled"}

func main() {
	out := flag.String("out", "./data/matches.json", "Output path for the corpus file")
	matches := flag.Int("matches", 50, "Number of matches to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	log.Info("Generating synthetic corpus", "matches", *matches, "seed", *seed, "out", *out)

	// One shared pool so names repeat across matches and exercise the
	// resolver. A few entries get the "A. Kumar" style dot variant.
	pool := make([][]string, len(teamNames))
	for t := range teamNames {
		for i := 0; i < 13; i++ {
			name := firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
			pool[t] = append(pool[t], name)
		}
	}

	corpus := make([]source.RawMatch, 0, *matches)
	date := time.Date(2019, 4, 6, 0, 0, 0, 0, time.UTC)
	for i := 0; i < *matches; i++ {
		t1 := rng.Intn(len(teamNames))
		t2 := (t1 + 1 + rng.Intn(len(teamNames)-1)) % len(teamNames)
		corpus = append(corpus, generateMatch(rng, t1, t2, pool, date))
		date = date.AddDate(0, 0, 1+rng.Intn(13))
	}

	body, err := sonic.MarshalIndent(corpus, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal corpus: %s", err)
	}
	if err := os.WriteFile(*out, body, 0o644); err != nil {
		log.Fatalf("Failed to write corpus: %s", err)
	}
	log.Info("Corpus written", "path", *out, "matches", len(corpus))
}

func generateMatch(rng *rand.Rand, t1, t2 int, pool [][]string, date time.Time) source.RawMatch {
	m := source.RawMatch{
		MatchID: uuid.NewString(),
		Teams: source.RawTeams{
			Team1: teamNames[t1],
			Team2: teamNames[t2],
		},
		Date:       date.Format("2006-01-02"),
		Ground:     fmt.Sprintf("Ground %d", 1+rng.Intn(4)),
		Tournament: fmt.Sprintf("Season %d League", date.Year()),
	}

	if rng.Intn(10) > 0 {
		tossWinner := m.Teams.Team1
		if rng.Intn(2) == 1 {
			tossWinner = m.Teams.Team2
		}
		decision := "bat"
		if rng.Intn(2) == 1 {
			decision = "bowl"
		}
		m.Toss = &source.RawToss{Winner: tossWinner, Decision: decision}
	}

	in1 := generateInnings(rng, m.Teams.Team1, pool[t1], pool[t2])
	in2 := generateInnings(rng, m.Teams.Team2, pool[t2], pool[t1])
	m.Innings = []source.RawInning{in1, in2}

	score1, _ := source.ParseScore(in1.Score)
	score2, _ := source.ParseScore(in2.Score)
	switch {
	case rng.Intn(25) == 0:
		m.Result = &source.RawResult{Winner: "abandoned"}
	case score1.Runs == score2.Runs:
		m.Result = &source.RawResult{Winner: "tie"}
	case score1.Runs > score2.Runs:
		m.Result = &source.RawResult{
			Winner: m.Teams.Team1,
			Margin: fmt.Sprintf("%d runs", score1.Runs-score2.Runs),
		}
	default:
		m.Result = &source.RawResult{
			Winner: m.Teams.Team2,
			Margin: fmt.Sprintf("%d wickets", 10-score2.Wickets),
		}
	}
	return m
}

func generateInnings(rng *rand.Rand, team string, batters, fielders []string) source.RawInning {
	inning := source.RawInning{
		Team:   team,
		Overs:  20,
		Extras: rng.Intn(15),
	}

	total := 0
	wickets := 0
	for i := 0; i < 11 && wickets < 10; i++ {
		name := variant(rng, batters[i%len(batters)])
		runs := rng.Intn(60)
		balls := runs + rng.Intn(20)
		entry := source.RawBatting{
			Name:           name,
			Runs:           runs,
			Balls:          balls,
			Fours:          runs / 8,
			Sixes:          runs / 20,
			IsCaptain:      i == 0,
			IsWicketKeeper: i == 1,
		}
		if rng.Intn(4) > 0 {
			wickets++
			entry.HowOut = dismissal(rng, fielders)
		} else {
			entry.HowOut = &source.RawDismissal{Type: source.DismissalTypeNotOut}
		}
		total += runs
		inning.Batting = append(inning.Batting, entry)

		if entry.Dismissed() {
			inning.FallOfWickets = append(inning.FallOfWickets, source.RawFOW{
				Score:  total,
				Wicket: wickets,
				Player: name,
				Over:   float64(1+rng.Intn(19)) + float64(rng.Intn(6))/10,
			})
		}
	}
	total += inning.Extras

	conceded := 0
	for i := 0; i < 5; i++ {
		runs := rng.Intn(40)
		if i == 4 {
			runs = max(total-conceded, 0)
		}
		conceded += runs
		inning.Bowling = append(inning.Bowling, source.RawBowling{
			Name:    variant(rng, fielders[i%len(fielders)]),
			Overs:   4,
			Maidens: rng.Intn(2),
			Runs:    runs,
			Wickets: rng.Intn(4),
		})
	}

	inning.Score = source.FormatScore(source.ParsedScore{Runs: total, Wickets: wickets})
	return inning
}

// variant occasionally rewrites "A Kumar" as "A. Kumar" so the corpus carries
// the spelling drift the resolver exists for.
func variant(rng *rand.Rand, name string) string {
	if rng.Intn(5) == 0 && len(name) > 2 && name[1] == ' ' {
		return name[:1] + ". " + name[2:]
	}
	return name
}

func dismissal(rng *rand.Rand, fielders []string) *source.RawDismissal {
	kind := dismissalTypes[rng.Intn(len(dismissalTypes))]
	d := &source.RawDismissal{Type: kind}
	switch kind {
	case "bowled", "lbw", "caught and bowled":
		d.Bowler = fielders[rng.Intn(len(fielders))]
	case "caught", "stumped":
		d.Bowler = fielders[rng.Intn(len(fielders))]
		d.Fielder = fielders[rng.Intn(len(fielders))]
	case "run out":
		d.Fielders = []string{fielders[rng.Intn(len(fielders))]}
	}
	return d
}
