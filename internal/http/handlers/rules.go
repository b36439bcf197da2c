package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/rules"
)

// urlID parses a numeric path parameter, answering 400 when it is not one.
func urlID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

func respondRulesError(w http.ResponseWriter, err error, action string) {
	var verr *club.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Invalid " + verr.Subject, Fields: verr.Fields})
	case errors.Is(err, rules.ErrRuleSetNotFound), errors.Is(err, rules.ErrRuleItemNotFound), errors.Is(err, rules.ErrNoActiveRuleSet):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rules.ErrDuplicateRuleSet), errors.Is(err, rules.ErrDuplicateRuleItem):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Error("Rule set operation failed", "error", err, "action", action)
		respondError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func ListRuleSetsHandler(store rules.RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sets, err := store.List()
		if err != nil {
			respondRulesError(w, err, "list rule sets")
			return
		}
		respondJSON(w, http.StatusOK, sets)
	}
}

func GetRuleSetHandler(store rules.RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		rs, err := store.Get(id)
		if err != nil {
			respondRulesError(w, err, "get rule set")
			return
		}
		respondJSON(w, http.StatusOK, rs)
	}
}

func ActiveRuleSetHandler(store rules.RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs, err := store.Active()
		if err != nil {
			respondRulesError(w, err, "get active rule set")
			return
		}
		respondJSON(w, http.StatusOK, rs)
	}
}

// CreateRuleSetHandler stores a new scoring table. Sending is_active makes
// it the table used for the next recorded game.
func CreateRuleSetHandler(store rules.RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rs club.RuleSet
		if !decodeJSON(w, r, &rs) {
			return
		}
		if IsDryRunFromContext(r) {
			rs.Name = strings.TrimSpace(rs.Name)
			if err := rs.Validate(); err != nil {
				respondRulesError(w, err, "create rule set")
				return
			}
			if err := nameFree(store, rs.Name, 0); err != nil {
				respondRulesError(w, err, "create rule set")
				return
			}
			log.Info("[Dry Run] Would create rule set", "name", rs.Name, "active", rs.Active)
			respondJSON(w, http.StatusOK, rs)
			return
		}

		created, err := store.Create(rs)
		if err != nil {
			respondRulesError(w, err, "create rule set")
			return
		}
		respondJSON(w, http.StatusCreated, created)
	}
}

func UpdateRuleSetHandler(store rules.RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		var upd rules.RuleSetUpdate
		if !decodeJSON(w, r, &upd) {
			return
		}
		if IsDryRunFromContext(r) {
			rs, err := store.Get(id)
			if err != nil {
				respondRulesError(w, err, "update rule set")
				return
			}
			if upd.Name != nil {
				rs.Name = strings.TrimSpace(*upd.Name)
				if err := rs.Validate(); err != nil {
					respondRulesError(w, err, "update rule set")
					return
				}
				if err := nameFree(store, rs.Name, id); err != nil {
					respondRulesError(w, err, "update rule set")
					return
				}
			}
			if upd.Active != nil {
				rs.Active = *upd.Active
			}
			log.Info("[Dry Run] Would update rule set", "ruleSetID", id)
			respondJSON(w, http.StatusOK, rs)
			return
		}

		rs, err := store.Update(id, upd)
		if err != nil {
			respondRulesError(w, err, "update rule set")
			return
		}
		respondJSON(w, http.StatusOK, rs)
	}
}

func DeleteRuleSetHandler(store rules.RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		if IsDryRunFromContext(r) {
			rs, err := store.Get(id)
			if err != nil {
				respondRulesError(w, err, "delete rule set")
				return
			}
			log.Info("[Dry Run] Would delete rule set", "ruleSetID", id, "name", rs.Name)
			respondJSON(w, http.StatusOK, rs)
			return
		}
		if err := store.Delete(id); err != nil {
			respondRulesError(w, err, "delete rule set")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AddRuleItemHandler(store rules.RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setID, ok := urlID(w, r, "id")
		if !ok {
			return
		}
		var item club.RuleItem
		if !decodeJSON(w, r, &item) {
			return
		}
		if IsDryRunFromContext(r) {
			rs, err := store.Get(setID)
			if err != nil {
				respondRulesError(w, err, "add rule item")
				return
			}
			item.ID = 0
			if err := checkItem(*rs, item); err != nil {
				respondRulesError(w, err, "add rule item")
				return
			}
			log.Info("[Dry Run] Would add rule item", "ruleSetID", setID, "condition", item.Condition, "delta", item.Delta)
			respondJSON(w, http.StatusOK, item)
			return
		}

		added, err := store.AddItem(setID, item)
		if err != nil {
			respondRulesError(w, err, "add rule item")
			return
		}
		respondJSON(w, http.StatusCreated, added)
	}
}

func UpdateRuleItemHandler(store rules.RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := urlID(w, r, "itemID")
		if !ok {
			return
		}
		var upd rules.RuleItemUpdate
		if !decodeJSON(w, r, &upd) {
			return
		}
		if IsDryRunFromContext(r) {
			rs, item, err := findRuleItem(store, itemID)
			if err != nil {
				respondRulesError(w, err, "update rule item")
				return
			}
			item = upd.Apply(item)
			if err := checkItem(rs, item); err != nil {
				respondRulesError(w, err, "update rule item")
				return
			}
			log.Info("[Dry Run] Would update rule item", "itemID", itemID)
			respondJSON(w, http.StatusOK, item)
			return
		}

		item, err := store.UpdateItem(itemID, upd)
		if err != nil {
			respondRulesError(w, err, "update rule item")
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

func DeleteRuleItemHandler(store rules.RuleStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, ok := urlID(w, r, "itemID")
		if !ok {
			return
		}
		if IsDryRunFromContext(r) {
			_, item, err := findRuleItem(store, itemID)
			if err != nil {
				respondRulesError(w, err, "delete rule item")
				return
			}
			log.Info("[Dry Run] Would delete rule item", "itemID", itemID)
			respondJSON(w, http.StatusOK, item)
			return
		}
		if err := store.DeleteItem(itemID); err != nil {
			respondRulesError(w, err, "delete rule item")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func nameFree(store rules.RuleStore, name string, exceptID int64) error {
	sets, err := store.List()
	if err != nil {
		return err
	}
	for _, rs := range sets {
		if rs.Name == name && rs.ID != exceptID {
			return fmt.Errorf("rule set %q: %w", name, rules.ErrDuplicateRuleSet)
		}
	}
	return nil
}

// checkItem validates item as a member of rs, ignoring the stored item with
// the same ID.
func checkItem(rs club.RuleSet, item club.RuleItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	for _, other := range rs.Items {
		if other.ID != item.ID && other.Condition == item.Condition && other.RoleFilter == item.RoleFilter {
			return fmt.Errorf("%s/%s: %w", item.Condition, item.RoleFilter, rules.ErrDuplicateRuleItem)
		}
	}
	return nil
}

func findRuleItem(store rules.RuleStore, itemID int64) (club.RuleSet, club.RuleItem, error) {
	sets, err := store.List()
	if err != nil {
		return club.RuleSet{}, club.RuleItem{}, err
	}
	for _, rs := range sets {
		for _, item := range rs.Items {
			if item.ID == itemID {
				return rs, item, nil
			}
		}
	}
	return club.RuleSet{}, club.RuleItem{}, fmt.Errorf("rule item %d: %w", itemID, rules.ErrRuleItemNotFound)
}
