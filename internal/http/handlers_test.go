package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagonwheel/crickstats/internal/config"
	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/docstore"
	"github.com/wagonwheel/crickstats/internal/metrics"
	"github.com/wagonwheel/crickstats/internal/migration"
)

func newTestServer(t *testing.T) (*Server, *docstore.Memory, *migration.Mock) {
	t.Helper()
	store := docstore.NewMemory()
	migrator := migration.NewMock()
	srv := NewServer(store, metrics.NewMock(), http.NotFoundHandler(), config.Config{CorpusPath: "./testdata/corpus.json"}, migrator, nil)
	return srv, store, migrator
}

func seedPlayer(t *testing.T, store *docstore.Memory, id, name string, runs, wickets int, active bool) {
	t.Helper()
	p := cricket.Player{
		PlayerID: id,
		Name:     name,
		Role:     cricket.RoleBatsman,
		IsActive: active,
	}
	p.CareerStats.Batting.Runs = runs
	p.CareerStats.Bowling.Wickets = wickets
	p.CareerStats.Overall.MatchesPlayed = 1
	require.NoError(t, store.Set(context.Background(), cricket.CollectionPlayers, id, &p))
}

func TestHealthCheckHandler(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK!", rec.Body.String())
}

func TestListPlayersHandler(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedPlayer(t, store, "1", "A Kumar", 120, 3, true)
	seedPlayer(t, store, "2", "R Sharma", 80, 0, false)

	t.Run("lists all players", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/players", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var players []cricket.Player
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &players))
		assert.Len(t, players, 2)
	})

	t.Run("filters by active", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/players?active=true", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var players []cricket.Player
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &players))
		require.Len(t, players, 1)
		assert.Equal(t, "A Kumar", players[0].Name)
	})
}

func TestGetPlayerHandler(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedPlayer(t, store, "1", "A Kumar", 120, 3, true)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/players/1", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var player cricket.Player
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &player))
		assert.Equal(t, "A Kumar", player.Name)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/players/999", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestLeaderboardHandler(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedPlayer(t, store, "1", "A Kumar", 120, 3, true)
	seedPlayer(t, store, "2", "R Sharma", 200, 1, true)
	seedPlayer(t, store, "3", "Retired Guy", 500, 50, false)

	t.Run("by runs by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var entries []LeaderboardEntry
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 2, "inactive players are excluded")
		assert.Equal(t, "R Sharma", entries[0].Name)
	})

	t.Run("by wickets", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/leaderboard?by=wickets", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var entries []LeaderboardEntry
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "A Kumar", entries[0].Name)
	})
}

func TestMigrateHandler(t *testing.T) {
	srv, _, migrator := newTestServer(t)

	done := make(chan migration.Options, 1)
	migrator.RunFunc = func(ctx context.Context, opts migration.Options) (*migration.Report, error) {
		done <- opts
		return &migration.Report{RunID: opts.RunID}, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/migrate?wipe=true&dry_run=true", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["runId"])

	opts := <-done
	assert.True(t, opts.Wipe)
	assert.True(t, opts.DryRun)
	assert.Equal(t, "./testdata/corpus.json", opts.CorpusPath)
}

func TestMergePlayersHandler(t *testing.T) {
	srv, _, migrator := newTestServer(t)

	t.Run("merges", func(t *testing.T) {
		body := strings.NewReader(`{"sourceId":"2","targetId":"1"}`)
		req := httptest.NewRequest(http.MethodPost, "/players/merge", body)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, migrator.MergePlayersCalls, 1)
		assert.Equal(t, "2", migrator.MergePlayersCalls[0].SourceID)
		assert.Equal(t, "1", migrator.MergePlayersCalls[0].TargetID)
	})

	t.Run("rejects missing IDs", func(t *testing.T) {
		body := strings.NewReader(`{"sourceId":""}`)
		req := httptest.NewRequest(http.MethodPost, "/players/merge", body)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
