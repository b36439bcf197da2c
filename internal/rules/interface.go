package rules

import "github.com/mauv0809/mafia-stats/internal/club"

// RuleStore manages the stored scoring tables. At most one set is active;
// activating a set deactivates the others.
type RuleStore interface {
	List() ([]club.RuleSet, error)
	Get(id int64) (*club.RuleSet, error)
	Active() (club.RuleSet, error)
	Create(rs club.RuleSet) (*club.RuleSet, error)
	Update(id int64, upd RuleSetUpdate) (*club.RuleSet, error)
	Delete(id int64) error
	AddItem(setID int64, item club.RuleItem) (*club.RuleItem, error)
	UpdateItem(itemID int64, upd RuleItemUpdate) (*club.RuleItem, error)
	DeleteItem(itemID int64) error
	EnsureDefault() error
}
