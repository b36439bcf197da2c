package club

import (
	"sync"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc     func(player Player) error
	RenamePlayerFunc  func(playerID, name string) error
	GetPlayerFunc     func(playerID string) (*Player, error)
	GetAllPlayersFunc func() ([]Player, error)
	AddGameFunc       func(game Game) error
	RecordGameFunc    func(game Game, deltas []StatsDelta) error
	GetGameFunc       func(gameID string) (*Game, error)
	GetAllGamesFunc   func() ([]Game, error)
	ApplyStatsFunc    func(deltas []StatsDelta) error
	IsEmptyFunc       func() (bool, error)
	ClearFunc         func()

	AddExtraPointsFunc    func(extra ExtraPoints) (*ExtraPoints, error)
	ListExtraPointsFunc   func(gameID string) ([]ExtraPoints, error)
	GetExtraPointsFunc    func(extraID int64) (*ExtraPoints, error)
	DeleteExtraPointsFunc func(extraID int64) (*ExtraPoints, error)

	// Call records
	AddPlayerCalls    []Player
	RenamePlayerCalls []struct {
		PlayerID string
		Name     string
	}
	AddGameCalls    []Game
	RecordGameCalls []RecordGameCall
	ApplyStatsCalls [][]StatsDelta
	ClearCalls      int

	AddExtraPointsCalls    []ExtraPoints
	DeleteExtraPointsCalls []int64
}

// RecordGameCall holds the arguments for a call to RecordGame.
type RecordGameCall struct {
	Game   Game
	Deltas []StatsDelta
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = nil
	m.RenamePlayerCalls = nil
	m.AddGameCalls = nil
	m.RecordGameCalls = nil
	m.ApplyStatsCalls = nil
	m.ClearCalls = 0
	m.AddExtraPointsCalls = nil
	m.DeleteExtraPointsCalls = nil
}

func (m *MockStore) AddPlayer(player Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, player)
	if m.AddPlayerFunc != nil {
		return m.AddPlayerFunc(player)
	}
	return nil
}

func (m *MockStore) RenamePlayer(playerID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RenamePlayerCalls = append(m.RenamePlayerCalls, struct {
		PlayerID string
		Name     string
	}{playerID, name})
	if m.RenamePlayerFunc != nil {
		return m.RenamePlayerFunc(playerID, name)
	}
	return nil
}

func (m *MockStore) GetPlayer(playerID string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(playerID)
	}
	return nil, ErrPlayerNotFound
}

func (m *MockStore) GetAllPlayers() ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return []Player{}, nil
}

func (m *MockStore) AddGame(game Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddGameCalls = append(m.AddGameCalls, game)
	if m.AddGameFunc != nil {
		return m.AddGameFunc(game)
	}
	return nil
}

func (m *MockStore) RecordGame(game Game, deltas []StatsDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordGameCalls = append(m.RecordGameCalls, RecordGameCall{Game: game, Deltas: deltas})
	if m.RecordGameFunc != nil {
		return m.RecordGameFunc(game, deltas)
	}
	return nil
}

func (m *MockStore) GetGame(gameID string) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetGameFunc != nil {
		return m.GetGameFunc(gameID)
	}
	return nil, ErrGameNotFound
}

func (m *MockStore) GetAllGames() ([]Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllGamesFunc != nil {
		return m.GetAllGamesFunc()
	}
	return []Game{}, nil
}

func (m *MockStore) ApplyStats(deltas []StatsDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyStatsCalls = append(m.ApplyStatsCalls, deltas)
	if m.ApplyStatsFunc != nil {
		return m.ApplyStatsFunc(deltas)
	}
	return nil
}

func (m *MockStore) IsEmpty() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsEmptyFunc != nil {
		return m.IsEmptyFunc()
	}
	return true, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}

func (m *MockStore) AddExtraPoints(extra ExtraPoints) (*ExtraPoints, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddExtraPointsCalls = append(m.AddExtraPointsCalls, extra)
	if m.AddExtraPointsFunc != nil {
		return m.AddExtraPointsFunc(extra)
	}
	extra.ID = int64(len(m.AddExtraPointsCalls))
	return &extra, nil
}

func (m *MockStore) ListExtraPoints(gameID string) ([]ExtraPoints, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListExtraPointsFunc != nil {
		return m.ListExtraPointsFunc(gameID)
	}
	return []ExtraPoints{}, nil
}

func (m *MockStore) GetExtraPoints(extraID int64) (*ExtraPoints, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetExtraPointsFunc != nil {
		return m.GetExtraPointsFunc(extraID)
	}
	return nil, ErrExtraPointsNotFound
}

func (m *MockStore) DeleteExtraPoints(extraID int64) (*ExtraPoints, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteExtraPointsCalls = append(m.DeleteExtraPointsCalls, extraID)
	if m.DeleteExtraPointsFunc != nil {
		return m.DeleteExtraPointsFunc(extraID)
	}
	return nil, ErrExtraPointsNotFound
}
