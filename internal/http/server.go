package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mauv0809/mafia-stats/internal/config"
	"github.com/mauv0809/mafia-stats/internal/http/handlers"
	"github.com/mauv0809/mafia-stats/internal/metrics"
	"github.com/mauv0809/mafia-stats/internal/notifier"
	"github.com/mauv0809/mafia-stats/internal/processor"
	"github.com/mauv0809/mafia-stats/internal/pubsub"
	"github.com/mauv0809/mafia-stats/internal/rules"
	"github.com/mauv0809/mafia-stats/internal/session"
)

func NewServer(sess *session.Session, ruleStore rules.RuleStore, metricsHandler http.Handler, counters metrics.MetricsStore, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Session:        sess,
		Rules:          ruleStore,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Router:         chi.NewRouter(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.Cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.Router.Use(paramsMiddleware)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Get("/health", handlers.HealthCheckHandler())
	s.Router.Post("/clear", handlers.ClearStoreHandler(s.Session))

	s.Router.Route("/api", func(r chi.Router) {
		r.Get("/players", handlers.ListPlayersHandler(s.Session))
		r.Post("/players", handlers.AddPlayerHandler(s.Session))
		r.Get("/players/{id}", handlers.GetPlayerHandler(s.Session))
		r.Patch("/players/{id}", handlers.RenamePlayerHandler(s.Session))
		r.Get("/leaderboard", handlers.LeaderboardHandler(s.Session))
		r.Post("/leaderboard/share", handlers.ShareLeaderboardHandler(s.Session, s.Notifier))
		r.Get("/summary", handlers.SummaryHandler(s.Session))
		r.Get("/games", handlers.ListGamesHandler(s.Session))
		r.Post("/games", handlers.SubmitGameHandler(s.Session))
		r.Get("/games/{id}/extras", handlers.ListExtraPointsHandler(s.Session))
		r.Post("/games/{id}/extras", handlers.AddExtraPointsHandler(s.Session))
		r.Delete("/extras/{extraID}", handlers.DeleteExtraPointsHandler(s.Session))
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", handlers.ListRuleSetsHandler(s.Rules))
			r.Post("/", handlers.CreateRuleSetHandler(s.Rules))
			r.Get("/active", handlers.ActiveRuleSetHandler(s.Rules))
			r.Get("/{id}", handlers.GetRuleSetHandler(s.Rules))
			r.Patch("/{id}", handlers.UpdateRuleSetHandler(s.Rules))
			r.Delete("/{id}", handlers.DeleteRuleSetHandler(s.Rules))
			r.Post("/{id}/items", handlers.AddRuleItemHandler(s.Rules))
			r.Patch("/items/{itemID}", handlers.UpdateRuleItemHandler(s.Rules))
			r.Delete("/items/{itemID}", handlers.DeleteRuleItemHandler(s.Rules))
		})
		r.Get("/view", handlers.ViewHandler(s.Session))
		r.Put("/view/{tab}", handlers.SelectTabHandler(s.Session))
		r.Put("/add-player-form", handlers.SetAddPlayerFormHandler(s.Session))
		r.Post("/add-player-form/submit", handlers.SubmitAddPlayerFormHandler(s.Session))
		r.Get("/counters", handlers.CountersHandler(s.Counters))
	})

	s.Router.Post("/pubsub/notify-result", handlers.NotifyResultHandler(s.Processor, s.pubsub))

	s.Router.Group(func(r chi.Router) {
		r.Use(slackVerificationMiddleware(s.Cfg.Slack.SigningSecret))
		r.Post("/slack/events", handlers.SlackEventsHandler(s.Session, s.Notifier, s.Cfg))
		r.Post("/slack/command/leaderboard", handlers.LeaderboardCommandHandler(s.Session, s.Notifier))
		r.Post("/slack/command/player-stats", handlers.PlayerStatsCommandHandler(s.Session, s.Notifier))
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
