package rules

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mafia-stats/internal/club"
)

// New creates a new RuleStore.
func New(db *sql.DB) RuleStore {
	return &store{
		db: db,
	}
}

func (s *store) List() ([]club.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.setsLocked("")
}

func (s *store) Get(id int64) (*club.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sets, err := s.setsLocked("WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("rule set %d: %w", id, ErrRuleSetNotFound)
	}
	return &sets[0], nil
}

// Active returns the active set with its items.
func (s *store) Active() (club.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sets, err := s.setsLocked("WHERE is_active = 1")
	if err != nil {
		return club.RuleSet{}, err
	}
	if len(sets) == 0 {
		return club.RuleSet{}, ErrNoActiveRuleSet
	}
	return sets[0], nil
}

// setsLocked loads the sets matching the where clause together with their
// items. The caller must hold the lock.
func (s *store) setsLocked(where string, args ...any) ([]club.RuleSet, error) {
	rows, err := s.db.Query(`SELECT id, name, is_active, created_at FROM rule_sets `+where+` ORDER BY id`, args...)
	if err != nil {
		log.Error("Failed to query rule sets", "error", err)
		return nil, err
	}
	defer rows.Close()

	sets := []club.RuleSet{}
	index := make(map[int64]int)
	for rows.Next() {
		var rs club.RuleSet
		var createdAt string
		if err := rows.Scan(&rs.ID, &rs.Name, &rs.Active, &createdAt); err != nil {
			return nil, err
		}
		if rs.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			log.Error("Failed to parse created_at", "error", err, "ruleSetID", rs.ID, "value", createdAt)
		}
		rs.Items = []club.RuleItem{}
		index[rs.ID] = len(sets)
		sets = append(sets, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return sets, nil
	}

	irows, err := s.db.Query(`SELECT id, rule_set_id, condition, role_filter, delta FROM rule_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying rule items: %w", err)
	}
	defer irows.Close()

	for irows.Next() {
		var item club.RuleItem
		var setID int64
		if err := irows.Scan(&item.ID, &setID, &item.Condition, &item.RoleFilter, &item.Delta); err != nil {
			return nil, err
		}
		if i, ok := index[setID]; ok {
			sets[i].Items = append(sets[i].Items, item)
		}
	}
	return sets, irows.Err()
}

// Create stores a validated set with its items. Creating an active set
// deactivates every other set.
func (s *store) Create(rs club.RuleSet) (*club.RuleSet, error) {
	rs.Name = strings.TrimSpace(rs.Name)
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	if err := uniqueNameTx(tx, rs.Name, 0); err != nil {
		tx.Rollback()
		return nil, err
	}

	rs.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := tx.Exec(`INSERT INTO rule_sets (name, is_active, created_at) VALUES (?, ?, ?)`,
		rs.Name, rs.Active, rs.CreatedAt.Format(time.RFC3339))
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("inserting rule set %q: %w", rs.Name, err)
	}
	if rs.ID, err = res.LastInsertId(); err != nil {
		tx.Rollback()
		return nil, err
	}
	if rs.Active {
		if err := deactivateOthersTx(tx, rs.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	for i := range rs.Items {
		id, err := insertItemTx(tx, rs.ID, rs.Items[i])
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		rs.Items[i].ID = id
	}
	if rs.Items == nil {
		rs.Items = []club.RuleItem{}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Created rule set", "ruleSetID", rs.ID, "name", rs.Name, "active", rs.Active, "items", len(rs.Items))
	return &rs, nil
}

// Update renames a set or changes its active flag.
func (s *store) Update(id int64, upd RuleSetUpdate) (*club.RuleSet, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if err := (club.RuleSet{Name: name}).Validate(); err != nil {
			return nil, err
		}
		upd.Name = &name
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	if err := s.updateTx(tx, id, upd); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Updated rule set", "ruleSetID", id)

	sets, err := s.setsLocked("WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &sets[0], nil
}

func (s *store) updateTx(tx *sql.Tx, id int64, upd RuleSetUpdate) error {
	if err := setExistsTx(tx, id); err != nil {
		return err
	}
	if upd.Name != nil {
		if err := uniqueNameTx(tx, *upd.Name, id); err != nil {
			return err
		}
		if _, err := tx.Exec("UPDATE rule_sets SET name = ? WHERE id = ?", *upd.Name, id); err != nil {
			return fmt.Errorf("renaming rule set %d: %w", id, err)
		}
	}
	if upd.Active != nil {
		if _, err := tx.Exec("UPDATE rule_sets SET is_active = ? WHERE id = ?", *upd.Active, id); err != nil {
			return fmt.Errorf("updating rule set %d: %w", id, err)
		}
		if *upd.Active {
			return deactivateOthersTx(tx, id)
		}
	}
	return nil
}

func (s *store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM rule_items WHERE rule_set_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting items of rule set %d: %w", id, err)
	}
	res, err := tx.Exec("DELETE FROM rule_sets WHERE id = ?", id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("deleting rule set %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if n == 0 {
		tx.Rollback()
		return fmt.Errorf("rule set %d: %w", id, ErrRuleSetNotFound)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Deleted rule set", "ruleSetID", id)
	return nil
}

func (s *store) AddItem(setID int64, item club.RuleItem) (*club.RuleItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	if err := setExistsTx(tx, setID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if item.ID, err = insertItemTx(tx, setID, item); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Added rule item", "ruleSetID", setID, "itemID", item.ID, "condition", item.Condition, "delta", item.Delta)
	return &item, nil
}

func (s *store) UpdateItem(itemID int64, upd RuleItemUpdate) (*club.RuleItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	var item club.RuleItem
	var setID int64
	err = tx.QueryRow(`SELECT id, rule_set_id, condition, role_filter, delta FROM rule_items WHERE id = ?`, itemID).
		Scan(&item.ID, &setID, &item.Condition, &item.RoleFilter, &item.Delta)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return nil, fmt.Errorf("rule item %d: %w", itemID, ErrRuleItemNotFound)
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	item = upd.Apply(item)
	if err := item.Validate(); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := uniqueItemTx(tx, setID, item); err != nil {
		tx.Rollback()
		return nil, err
	}
	_, err = tx.Exec(`UPDATE rule_items SET condition = ?, role_filter = ?, delta = ? WHERE id = ?`,
		item.Condition, item.RoleFilter, item.Delta, itemID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("updating rule item %d: %w", itemID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Updated rule item", "itemID", itemID, "condition", item.Condition, "delta", item.Delta)
	return &item, nil
}

func (s *store) DeleteItem(itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM rule_items WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("deleting rule item %d: %w", itemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("rule item %d: %w", itemID, ErrRuleItemNotFound)
	}
	log.Info("Deleted rule item", "itemID", itemID)
	return nil
}

// EnsureDefault stores the classic scoring table as the active set when no
// set exists yet.
func (s *store) EnsureDefault() error {
	s.mu.RLock()
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM rule_sets)").Scan(&exists)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("checking rule sets: %w", err)
	}
	if exists {
		return nil
	}

	rs := club.DefaultRuleSet()
	rs.Active = true
	if _, err := s.Create(rs); err != nil {
		return fmt.Errorf("storing default rule set: %w", err)
	}
	return nil
}

func setExistsTx(tx *sql.Tx, id int64) error {
	var exists bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM rule_sets WHERE id = ?)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("rule set %d: %w", id, ErrRuleSetNotFound)
	}
	return nil
}

// uniqueNameTx fails when another set than exceptID already uses name.
func uniqueNameTx(tx *sql.Tx, name string, exceptID int64) error {
	var taken bool
	err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM rule_sets WHERE name = ? AND id <> ?)", name, exceptID).Scan(&taken)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("rule set %q: %w", name, ErrDuplicateRuleSet)
	}
	return nil
}

// uniqueItemTx fails when another item of the set covers the same
// condition and role filter.
func uniqueItemTx(tx *sql.Tx, setID int64, item club.RuleItem) error {
	var taken bool
	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM rule_items
		WHERE rule_set_id = ? AND condition = ? AND role_filter = ? AND id <> ?)`,
		setID, item.Condition, item.RoleFilter, item.ID,
	).Scan(&taken)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%s/%s: %w", item.Condition, item.RoleFilter, ErrDuplicateRuleItem)
	}
	return nil
}

func insertItemTx(tx *sql.Tx, setID int64, item club.RuleItem) (int64, error) {
	item.ID = 0
	if err := uniqueItemTx(tx, setID, item); err != nil {
		return 0, err
	}
	res, err := tx.Exec(`INSERT INTO rule_items (rule_set_id, condition, role_filter, delta) VALUES (?, ?, ?, ?)`,
		setID, item.Condition, item.RoleFilter, item.Delta)
	if err != nil {
		return 0, fmt.Errorf("inserting rule item %s: %w", item.Condition, err)
	}
	return res.LastInsertId()
}

func deactivateOthersTx(tx *sql.Tx, id int64) error {
	if _, err := tx.Exec("UPDATE rule_sets SET is_active = 0 WHERE id <> ? AND is_active = 1", id); err != nil {
		return fmt.Errorf("deactivating other rule sets: %w", err)
	}
	return nil
}
