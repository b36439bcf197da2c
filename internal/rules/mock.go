package rules

import (
	"sync"

	"github.com/mauv0809/mafia-stats/internal/club"
)

// MockRuleStore is a mock implementation of RuleStore for testing.
// Without an ActiveFunc it serves the default rule set.
type MockRuleStore struct {
	mu sync.Mutex

	ActiveFunc func() (club.RuleSet, error)
	CreateFunc func(rs club.RuleSet) (*club.RuleSet, error)

	ActiveCalls int
	CreateCalls []club.RuleSet
}

func NewMock() *MockRuleStore {
	return &MockRuleStore{}
}

func (m *MockRuleStore) List() ([]club.RuleSet, error) {
	rs, err := m.Active()
	if err != nil {
		return []club.RuleSet{}, nil
	}
	return []club.RuleSet{rs}, nil
}

func (m *MockRuleStore) Get(id int64) (*club.RuleSet, error) {
	rs, err := m.Active()
	if err != nil || rs.ID != id {
		return nil, ErrRuleSetNotFound
	}
	return &rs, nil
}

func (m *MockRuleStore) Active() (club.RuleSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActiveCalls++
	if m.ActiveFunc != nil {
		return m.ActiveFunc()
	}
	rs := club.DefaultRuleSet()
	rs.ID, rs.Active = 1, true
	return rs, nil
}

func (m *MockRuleStore) Create(rs club.RuleSet) (*club.RuleSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, rs)
	if m.CreateFunc != nil {
		return m.CreateFunc(rs)
	}
	rs.ID = int64(len(m.CreateCalls)) + 1
	return &rs, nil
}

func (m *MockRuleStore) Update(id int64, upd RuleSetUpdate) (*club.RuleSet, error) {
	return nil, ErrRuleSetNotFound
}

func (m *MockRuleStore) Delete(id int64) error {
	return ErrRuleSetNotFound
}

func (m *MockRuleStore) AddItem(setID int64, item club.RuleItem) (*club.RuleItem, error) {
	return nil, ErrRuleSetNotFound
}

func (m *MockRuleStore) UpdateItem(itemID int64, upd RuleItemUpdate) (*club.RuleItem, error) {
	return nil, ErrRuleItemNotFound
}

func (m *MockRuleStore) DeleteItem(itemID int64) error {
	return ErrRuleItemNotFound
}

func (m *MockRuleStore) EnsureDefault() error {
	return nil
}
