package processor

import (
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	RecordGame(game club.Game, deltas []club.StatsDelta) error
	GetAllPlayers() ([]club.Player, error)
}

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}

// RuleSource provides the scoring table in force when a game is recorded.
type RuleSource interface {
	Active() (club.RuleSet, error)
}
