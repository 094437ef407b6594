package http

import (
	"net/http"

	"github.com/wagonwheel/crickstats/internal/config"
	"github.com/wagonwheel/crickstats/internal/docstore"
	"github.com/wagonwheel/crickstats/internal/metrics"
	"github.com/wagonwheel/crickstats/internal/migration"
	"github.com/wagonwheel/crickstats/internal/pubsub"
)

type Server struct {
	Store          docstore.Store
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Migrator       migration.Migrator
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
