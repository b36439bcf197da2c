package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/metrics"
	"github.com/mauv0809/mafia-stats/internal/pubsub"
	"github.com/mauv0809/mafia-stats/internal/rules"
)

// New creates a new Processor.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, opts ...Option) *Processor {
	p := &Processor{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
		rules:    club.DefaultRuleSet(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rules returns the scoring table a game recorded now would use.
func (p *Processor) Rules() club.RuleSet {
	if p.ruleSource == nil {
		return p.rules
	}
	rs, err := p.ruleSource.Active()
	switch {
	case errors.Is(err, rules.ErrNoActiveRuleSet):
		log.Warn("No active rule set, using fallback", "rules", p.rules.Name)
		return p.rules
	case err != nil:
		log.Error("Failed to load active rule set, using fallback", "error", err, "rules", p.rules.Name)
		return p.rules
	}
	return rs
}

// RecordGame appends a validated game, applies its score to every
// participant and announces it. A failure to publish or notify is logged;
// the game stays recorded.
func (p *Processor) RecordGame(ctx context.Context, game club.Game, dryRun bool) ([]club.StatsDelta, error) {
	startTime := time.Now()
	log.Info("Recording game", "gameID", game.ID, "winner", game.Outcome, "participants", len(game.Participants))

	ruleSet := p.Rules()
	deltas := club.ScoreGame(game, ruleSet)
	for _, d := range deltas {
		log.Debug("Scored participant", "gameID", game.ID, "playerID", d.PlayerID, "role", d.Role, "score", d.Score, "won", d.Won, "lost", d.Lost)
	}

	if dryRun {
		log.Info("[Dry Run] Would record game and apply stats", "gameID", game.ID, "rules", ruleSet.Name)
		return deltas, nil
	}

	if err := p.store.RecordGame(game, deltas); err != nil {
		return nil, fmt.Errorf("recording game %s: %w", game.ID, err)
	}

	if err := p.pubsub.SendMessage(ctx, pubsub.EventGameRecorded, game); err != nil {
		log.Error("Failed to publish game event", "error", err, "gameID", game.ID)
	}
	if p.notifyInline {
		if err := p.NotifyResult(game, dryRun); err != nil {
			log.Error("Failed to notify result", "error", err, "gameID", game.ID)
		}
	}

	p.metrics.IncGamesRecorded()
	p.metrics.ObserveProcessingDuration(time.Since(startTime).Seconds())
	log.Info("Game recorded", "gameID", game.ID, "duration_ms", time.Since(startTime).Milliseconds())
	return deltas, nil
}

// AnnouncePlayer publishes a player-added event. A publish failure is
// logged and not returned; the player is already stored.
func (p *Processor) AnnouncePlayer(ctx context.Context, player club.Player, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would publish player event", "playerID", player.ID)
		return
	}
	if err := p.pubsub.SendMessage(ctx, pubsub.EventPlayerAdded, player); err != nil {
		log.Error("Failed to publish player event", "error", err, "playerID", player.ID)
	}
}

// NotifyResult posts the outcome of a recorded game to Slack.
func (p *Processor) NotifyResult(game club.Game, dryRun bool) error {
	players, err := p.store.GetAllPlayers()
	if err != nil {
		return fmt.Errorf("loading players for game %s: %w", game.ID, err)
	}
	if err := p.notifier.SendResultNotification(game, players, dryRun); err != nil {
		return fmt.Errorf("sending result for game %s: %w", game.ID, err)
	}
	log.Info("Result notification sent", "gameID", game.ID, "dryRun", dryRun)
	return nil
}
