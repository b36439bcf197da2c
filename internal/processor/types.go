package processor

import (
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/metrics"
	"github.com/mauv0809/mafia-stats/internal/pubsub"
)

// Processor handles the business logic of recording games.
type Processor struct {
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics

	rules        club.RuleSet
	ruleSource   RuleSource
	notifyInline bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithRuleSet replaces the default scoring table. A rule source, if any,
// still takes precedence.
func WithRuleSet(rules club.RuleSet) Option {
	return func(p *Processor) {
		p.rules = rules
	}
}

// WithRuleSource scores each game with the source's active set. The
// static rule set is the fallback when the source has none.
func WithRuleSource(src RuleSource) Option {
	return func(p *Processor) {
		p.ruleSource = src
	}
}

// WithInlineNotifications posts the result to Slack as part of RecordGame
// instead of waiting for the Pub/Sub push delivery. Used when Pub/Sub is
// not configured.
func WithInlineNotifications() Option {
	return func(p *Processor) {
		p.notifyInline = true
	}
}
