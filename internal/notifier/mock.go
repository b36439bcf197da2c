package notifier

import (
	"sync"

	"github.com/mauv0809/mafia-stats/internal/club"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for send functions
	SendResultNotificationFunc func(game club.Game, players []club.Player, dryRun bool) error
	SendLeaderboardFunc        func(entries []club.LeaderboardEntry, summary club.Summary, dryRun bool) error

	// Call records
	SendResultNotificationCalls []struct {
		Game   club.Game
		DryRun bool
	}
	SendLeaderboardCalls [][]club.LeaderboardEntry

	// Spies for format functions
	FormatLeaderboardResponseFunc    func(entries []club.LeaderboardEntry, summary club.Summary) (any, error)
	FormatPlayerStatsResponseFunc    func(entry club.LeaderboardEntry, query string) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)

	// Call records for format functions
	LastLeaderboardResponse    any
	LastPlayerStatsResponse    any
	LastPlayerNotFoundResponse any
	LastPlayerStatsEntry       *club.LeaderboardEntry
	LastPlayerNotFoundQuery    string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
	m.LastPlayerStatsResponse = nil
	m.LastPlayerNotFoundResponse = nil
	m.LastPlayerStatsEntry = nil
	m.LastPlayerNotFoundQuery = ""
}

func (m *Mock) SendResultNotification(game club.Game, players []club.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct {
		Game   club.Game
		DryRun bool
	}{game, dryRun})
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(game, players, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(entries []club.LeaderboardEntry, summary club.Summary, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, entries)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(entries, summary, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(entries []club.LeaderboardEntry, summary club.Summary) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(entries, summary)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatPlayerStatsResponse(entry club.LeaderboardEntry, query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastPlayerStatsEntry = &entry
	if m.FormatPlayerStatsResponseFunc != nil {
		resp, err := m.FormatPlayerStatsResponseFunc(entry, query)
		m.LastPlayerStatsResponse = resp
		return resp, err
	}
	return "formatted_player_stats", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastPlayerNotFoundQuery = query
	if m.FormatPlayerNotFoundResponseFunc != nil {
		resp, err := m.FormatPlayerNotFoundResponseFunc(query)
		m.LastPlayerNotFoundResponse = resp
		return resp, err
	}
	return "formatted_player_not_found", nil
}
