package notifier

import (
	"github.com/mauv0809/mafia-stats/internal/club"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For recorded games. Players resolve participant ids to names.
	SendResultNotification(game club.Game, players []club.Player, dryRun bool) error
	// For sharing the current standings
	SendLeaderboard(entries []club.LeaderboardEntry, summary club.Summary, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(entries []club.LeaderboardEntry, summary club.Summary) (any, error)
	FormatPlayerStatsResponse(entry club.LeaderboardEntry, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
