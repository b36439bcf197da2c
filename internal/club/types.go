package club

import (
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var (
	ErrEmptyName      = errors.New("player name must not be empty")
	ErrPlayerNotFound = errors.New("player not found")
	ErrGameNotFound   = errors.New("game not found")

	ErrNotParticipant      = errors.New("player did not take part in the game")
	ErrExtraPointsNotFound = errors.New("extra points not found")
)

const (
	// Unset is shown in place of a best role or last played date that does not exist yet.
	Unset         = "-"
	DefaultAvatar = "👤"
	DateLayout    = "2006-01-02"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Outcome is the faction that won a game. Neutral means a draw.
type Outcome string

const (
	OutcomeMafia     Outcome = "mafia"
	OutcomeCivilians Outcome = "civilians"
	OutcomeNeutral   Outcome = "neutral"
)

// Outcomes lists the closed set of game outcomes in display order.
var Outcomes = []Outcome{OutcomeMafia, OutcomeCivilians, OutcomeNeutral}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeMafia, OutcomeCivilians, OutcomeNeutral:
		return true
	}
	return false
}

// Role is a player's in-game character.
type Role string

const (
	RoleCivilian Role = "Мирный"
	RoleSheriff  Role = "Комиссар"
	RoleDoctor   Role = "Доктор"
	RoleMafia    Role = "Мафия"
	RoleDon      Role = "Дон"
)

// Roles lists every known role. The order breaks ties when deriving a best role.
var Roles = []Role{RoleSheriff, RoleDoctor, RoleCivilian, RoleDon, RoleMafia}

func (r Role) Valid() bool {
	return r.Side() != ""
}

// Side returns the faction a role plays for, or "" for an unknown role.
func (r Role) Side() Outcome {
	switch r {
	case RoleCivilian, RoleSheriff, RoleDoctor:
		return OutcomeCivilians
	case RoleMafia, RoleDon:
		return OutcomeMafia
	}
	return ""
}

// RoleStats holds a player's results for a single role.
type RoleStats struct {
	Role  Role `json:"role"`
	Games int  `json:"games"`
	Wins  int  `json:"wins"`
}

// Player is a club member together with their accumulated statistics.
// Win rate and draws are derived from the counters and never stored.
type Player struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	GamesPlayed int         `json:"total_games"`
	Wins        int         `json:"wins"`
	Losses      int         `json:"losses"`
	TotalScore  int         `json:"total_score"`
	BestRole    string      `json:"best_role"`
	LastPlayed  time.Time   `json:"-"`
	Avatar      string      `json:"avatar,omitempty"`
	RoleStats   []RoleStats `json:"role_stats,omitempty"`
}

// WinRate returns the percentage of games won, 0 for a player without games.
func (p Player) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.GamesPlayed) * 100
}

func (p Player) Draws() int {
	return p.GamesPlayed - p.Wins - p.Losses
}

func (p Player) LastPlayedLabel() string {
	if p.LastPlayed.IsZero() {
		return Unset
	}
	return p.LastPlayed.Format(DateLayout)
}

// EffectiveBestRole returns the role with the most recorded wins. Players
// without per-role results keep the stored best role.
func (p Player) EffectiveBestRole() string {
	var best *RoleStats
	for _, role := range Roles {
		for i := range p.RoleStats {
			rs := &p.RoleStats[i]
			if rs.Role != role || rs.Games == 0 {
				continue
			}
			if best == nil || rs.Wins > best.Wins || (rs.Wins == best.Wins && rs.Games > best.Games) {
				best = rs
			}
		}
	}
	if best != nil {
		return string(best.Role)
	}
	if p.BestRole == "" {
		return Unset
	}
	return p.BestRole
}

func (p Player) MarshalJSON() ([]byte, error) {
	type alias Player
	return json.Marshal(struct {
		alias
		BestRole   string  `json:"best_role"`
		WinRate    float64 `json:"win_rate"`
		Draws      int     `json:"draws"`
		LastPlayed string  `json:"last_played"`
	}{
		alias:      alias(p),
		BestRole:   p.EffectiveBestRole(),
		WinRate:    Round1(p.WinRate()),
		Draws:      p.Draws(),
		LastPlayed: p.LastPlayedLabel(),
	})
}

// Participant is a player's seat in a game. Role is optional.
type Participant struct {
	PlayerID string `json:"player_id" msgpack:"player_id" validate:"required"`
	Role     Role   `json:"role,omitempty" msgpack:"role"`
}

// Game is a single recorded game. Participants and MVP reference players by id.
type Game struct {
	ID              string        `json:"id" msgpack:"id"`
	Date            time.Time     `json:"date" msgpack:"date"`
	Participants    []Participant `json:"participants" msgpack:"participants"`
	Outcome         Outcome       `json:"winner" msgpack:"winner"`
	DurationMinutes int           `json:"duration" msgpack:"duration"`
	MVP             string        `json:"mvp,omitempty" msgpack:"mvp"`
}

// PlayerIDs returns the participants' ids in seat order.
func (g Game) PlayerIDs() []string {
	ids := make([]string, 0, len(g.Participants))
	for _, p := range g.Participants {
		ids = append(ids, p.PlayerID)
	}
	return ids
}
