package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/mafia-stats/internal/config"
	"github.com/mauv0809/mafia-stats/internal/metrics"
	"github.com/mauv0809/mafia-stats/internal/notifier"
	"github.com/mauv0809/mafia-stats/internal/processor"
	"github.com/mauv0809/mafia-stats/internal/pubsub"
	"github.com/mauv0809/mafia-stats/internal/rules"
	"github.com/mauv0809/mafia-stats/internal/session"
)

type Server struct {
	Session        *session.Session
	Rules          rules.RuleStore
	MetricsHandler http.Handler
	Counters       metrics.MetricsStore
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         chi.Router
	pubsub         pubsub.PubSubClient
}
