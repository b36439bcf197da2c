package rules

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/mauv0809/mafia-stats/internal/club"
)

var (
	ErrRuleSetNotFound   = errors.New("rule set not found")
	ErrRuleItemNotFound  = errors.New("rule item not found")
	ErrNoActiveRuleSet   = errors.New("no active rule set")
	ErrDuplicateRuleSet  = errors.New("a rule set with this name already exists")
	ErrDuplicateRuleItem = errors.New("the rule set already has an item for this condition and role")
)

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// RuleSetUpdate changes the name or the active flag of a set. Nil fields
// are left as they are.
type RuleSetUpdate struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"is_active,omitempty"`
}

// RuleItemUpdate changes a single item. Nil fields are left as they are.
type RuleItemUpdate struct {
	Condition  *club.Condition `json:"condition,omitempty"`
	RoleFilter *club.Role      `json:"role_filter,omitempty"`
	Delta      *int            `json:"delta,omitempty"`
}

// Apply returns the item with the update applied.
func (u RuleItemUpdate) Apply(item club.RuleItem) club.RuleItem {
	if u.Condition != nil {
		item.Condition = *u.Condition
	}
	if u.RoleFilter != nil {
		item.RoleFilter = *u.RoleFilter
	}
	if u.Delta != nil {
		item.Delta = *u.Delta
	}
	return item
}
