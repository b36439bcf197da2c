package club

import (
	"fmt"
	"time"
)

// Condition is a game situation that earns or costs points.
type Condition string

const (
	ConditionCityWin  Condition = "CITY_WIN"
	ConditionMafiaWin Condition = "MAFIA_WIN"
	ConditionDraw     Condition = "DRAW"
	ConditionLoss     Condition = "LOSS"
	ConditionMVP      Condition = "MVP"
)

// RuleItem awards Delta points when Condition applies. An empty RoleFilter
// matches every role; an item with a matching RoleFilter takes precedence
// over the catch-all item for the same condition.
type RuleItem struct {
	ID         int64     `json:"id,omitempty"`
	Condition  Condition `json:"condition" validate:"required,oneof=CITY_WIN MAFIA_WIN DRAW LOSS MVP"`
	RoleFilter Role      `json:"role_filter,omitempty"`
	Delta      int       `json:"delta" validate:"min=0,max=1000"`
}

func (c Condition) Valid() bool {
	switch c {
	case ConditionCityWin, ConditionMafiaWin, ConditionDraw, ConditionLoss, ConditionMVP:
		return true
	}
	return false
}

// RuleSet is a named scoring table. At most one stored set is active.
type RuleSet struct {
	ID        int64      `json:"id,omitempty"`
	Name      string     `json:"name" validate:"required,max=64"`
	Active    bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at,omitzero"`
	Items     []RuleItem `json:"items" validate:"dive"`
}

// Validate checks the set and every item. An item may appear only once per
// condition and role filter.
func (rs RuleSet) Validate() error {
	verr := &ValidationError{Fields: map[string]string{}, Subject: "rule set"}
	collectFieldErrors(verr, validate.Struct(rs))

	seen := make(map[RuleItem]bool, len(rs.Items))
	for i, item := range rs.Items {
		key := fmt.Sprintf("items[%d].role_filter", i)
		if item.RoleFilter != "" && !item.RoleFilter.Valid() {
			verr.Fields[key] = "unknown role"
		}
		k := RuleItem{Condition: item.Condition, RoleFilter: item.RoleFilter}
		if seen[k] {
			verr.Fields[fmt.Sprintf("items[%d]", i)] = "duplicate condition and role filter"
		}
		seen[k] = true
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Validate checks a single rule item.
func (item RuleItem) Validate() error {
	verr := &ValidationError{Fields: map[string]string{}, Subject: "rule item"}
	collectFieldErrors(verr, validate.Struct(item))
	if item.RoleFilter != "" && !item.RoleFilter.Valid() {
		verr.Fields["role_filter"] = "unknown role"
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// DefaultRuleSet is the club's standard scoring table.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Name: "classic",
		Items: []RuleItem{
			{Condition: ConditionCityWin, Delta: 80},
			{Condition: ConditionMafiaWin, Delta: 100},
			{Condition: ConditionDraw, Delta: 40},
			{Condition: ConditionLoss, Delta: 20},
			{Condition: ConditionMVP, Delta: 30},
		},
	}
}

func (rs RuleSet) points(cond Condition, role Role) int {
	delta, found := 0, false
	for _, item := range rs.Items {
		if item.Condition != cond {
			continue
		}
		if item.RoleFilter != "" && item.RoleFilter == role {
			return item.Delta
		}
		if item.RoleFilter == "" && !found {
			delta, found = item.Delta, true
		}
	}
	return delta
}

// StatsDelta is the change a single game makes to one player's statistics.
type StatsDelta struct {
	PlayerID string
	Role     Role
	Played   int
	Won      int
	Lost     int
	Score    int
	Date     time.Time
}

// ScoreGame computes the per-participant statistics changes for a game.
// Participants without a known role on a decided game count as played only.
func ScoreGame(game Game, rules RuleSet) []StatsDelta {
	deltas := make([]StatsDelta, 0, len(game.Participants))
	for _, p := range game.Participants {
		d := StatsDelta{
			PlayerID: p.PlayerID,
			Role:     p.Role,
			Played:   1,
			Date:     game.Date,
		}
		side := p.Role.Side()
		switch {
		case game.Outcome == OutcomeNeutral:
			d.Score += rules.points(ConditionDraw, p.Role)
		case side == "":
		case side == game.Outcome:
			d.Won = 1
			cond := ConditionCityWin
			if game.Outcome == OutcomeMafia {
				cond = ConditionMafiaWin
			}
			d.Score += rules.points(cond, p.Role)
		default:
			d.Lost = 1
			d.Score += rules.points(ConditionLoss, p.Role)
		}
		if game.MVP != "" && game.MVP == p.PlayerID {
			d.Score += rules.points(ConditionMVP, p.Role)
		}
		deltas = append(deltas, d)
	}
	return deltas
}
