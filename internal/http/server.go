package http

import (
	"net/http"

	"github.com/wagonwheel/crickstats/internal/config"
	"github.com/wagonwheel/crickstats/internal/docstore"
	"github.com/wagonwheel/crickstats/internal/metrics"
	"github.com/wagonwheel/crickstats/internal/migration"
	"github.com/wagonwheel/crickstats/internal/pubsub"
)

func NewServer(store docstore.Store, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, migrator migration.Migrator, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Migrator:       migrator,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{id}", Chain(s.GetPlayerHandler(), paramsMiddleware))
	s.Router.Handle("GET /teams", Chain(s.ListTeamsHandler(), paramsMiddleware))
	s.Router.Handle("GET /teams/{id}", Chain(s.GetTeamHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("POST /migrate", Chain(s.MigrateHandler(), paramsMiddleware))
	s.Router.Handle("POST /players/merge", Chain(s.MergePlayersHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
