package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/docstore"
	"github.com/wagonwheel/crickstats/internal/migration"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// writeJSON marshals v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		log.Error("Failed to marshal response", "error", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// listCollection decodes every document in a collection into a slice of T.
func listCollection[T any](r *http.Request, s *Server, collection string, filters ...docstore.Filter) ([]T, error) {
	docs, err := s.Store.GetAll(r.Context(), collection, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, crerr.Wrapf(err, "decode %s/%s", collection, doc.ID())
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters []docstore.Filter
		if active := r.URL.Query().Get("active"); active != "" {
			filters = append(filters, docstore.Filter{Path: "isActive", Op: "==", Value: active == "true"})
		}
		players, err := listCollection[cricket.Player](r, s, cricket.CollectionPlayers, filters...)
		if err != nil {
			log.Error("Failed to list players", "error", err)
			http.Error(w, "Failed to list players", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var player cricket.Player
		err := s.Store.Get(r.Context(), cricket.CollectionPlayers, r.PathValue("id"), &player)
		if crerr.Is(err, docstore.ErrNotFound) {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("Failed to get player", "id", r.PathValue("id"), "error", err)
			http.Error(w, "Failed to get player", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, player)
	}
}

func (s *Server) ListTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := listCollection[cricket.Team](r, s, cricket.CollectionTeams)
		if err != nil {
			log.Error("Failed to list teams", "error", err)
			http.Error(w, "Failed to list teams", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func (s *Server) GetTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var team cricket.Team
		err := s.Store.Get(r.Context(), cricket.CollectionTeams, r.PathValue("id"), &team)
		if crerr.Is(err, docstore.ErrNotFound) {
			http.Error(w, "Team not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("Failed to get team", "id", r.PathValue("id"), "error", err)
			http.Error(w, "Failed to get team", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filters []docstore.Filter
		if tournament := r.URL.Query().Get("tournament"); tournament != "" {
			filters = append(filters, docstore.Filter{Path: "tournament", Op: "==", Value: tournament})
		}
		matches, err := listCollection[cricket.Match](r, s, cricket.CollectionMatches, filters...)
		if err != nil {
			log.Error("Failed to list matches", "error", err)
			http.Error(w, "Failed to list matches", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var match cricket.Match
		err := s.Store.Get(r.Context(), cricket.CollectionMatches, r.PathValue("id"), &match)
		if crerr.Is(err, docstore.ErrNotFound) {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("Failed to get match", "id", r.PathValue("id"), "error", err)
			http.Error(w, "Failed to get match", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, match)
	}
}

// LeaderboardEntry is one row of the career leaderboard response.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Matches  int    `json:"matches"`
	Runs     int    `json:"runs"`
	Wickets  int    `json:"wickets"`
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := listCollection[cricket.Player](r, s, cricket.CollectionPlayers)
		if err != nil {
			log.Error("Failed to build leaderboard", "error", err)
			http.Error(w, "Failed to build leaderboard", http.StatusInternalServerError)
			return
		}

		entries := make([]LeaderboardEntry, 0, len(players))
		for _, p := range players {
			if !p.IsActive {
				continue
			}
			entries = append(entries, LeaderboardEntry{
				PlayerID: p.PlayerID,
				Name:     p.Name,
				Matches:  p.CareerStats.Overall.MatchesPlayed,
				Runs:     p.CareerStats.Batting.Runs,
				Wickets:  p.CareerStats.Bowling.Wickets,
			})
		}

		by := r.URL.Query().Get("by")
		sort.SliceStable(entries, func(i, j int) bool {
			if by == "wickets" {
				return entries[i].Wickets > entries[j].Wickets
			}
			return entries[i].Runs > entries[j].Runs
		})
		writeJSON(w, http.StatusOK, entries)
	}
}

// MigrateHandler kicks off a migration run in the background and returns its
// run ID immediately; progress is followed via the journal and pubsub events.
func (s *Server) MigrateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := migration.Options{
			RunID:      uuid.NewString(),
			CorpusPath: s.Cfg.CorpusPath,
			Wipe:       r.URL.Query().Get("wipe") == "true",
			DryRun:     isDryRunFromContext(r),
		}
		if path := r.URL.Query().Get("corpus"); path != "" {
			opts.CorpusPath = path
		}
		log.Info("Received migration trigger", "runId", opts.RunID, "wipe", opts.Wipe, "dryRun", opts.DryRun)

		go func() {
			// Detached from the request context: a run outlives the exchange.
			if _, err := s.Migrator.Run(context.Background(), opts); err != nil {
				log.Error("Migration run failed", "runId", opts.RunID, "error", err)
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{"runId": opts.RunID})
	}
}

type mergeRequest struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

func (s *Server) MergePlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mergeRequest
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.SourceID == "" || req.TargetID == "" {
			http.Error(w, "sourceId and targetId are required", http.StatusBadRequest)
			return
		}
		if err := s.Migrator.MergePlayers(r.Context(), req.SourceID, req.TargetID); err != nil {
			log.Error("Failed to merge players", "sourceId", req.SourceID, "targetId", req.TargetID, "error", err)
			http.Error(w, "Failed to merge players", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Merged %s into %s", req.SourceID, req.TargetID)
	}
}
