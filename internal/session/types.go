package session

import (
	"context"
	"errors"
	"sync"

	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/metrics"
)

var ErrUnknownTab = errors.New("unknown tab")

// Tab is one of the three views of the club page.
type Tab string

const (
	TabLeaderboard Tab = "leaderboard"
	TabGames       Tab = "games"
	TabAddGame     Tab = "add-game"
)

// Tabs lists the views in display order.
var Tabs = []Tab{TabLeaderboard, TabGames, TabAddGame}

func (t Tab) Valid() bool {
	switch t {
	case TabLeaderboard, TabGames, TabAddGame:
		return true
	}
	return false
}

// AddPlayerForm is the state of the collapsible add-player form.
type AddPlayerForm struct {
	Open bool   `json:"open"`
	Name string `json:"name"`
}

// Recorder appends validated games and announces roster changes.
type Recorder interface {
	RecordGame(ctx context.Context, game club.Game, dryRun bool) ([]club.StatsDelta, error)
	AnnouncePlayer(ctx context.Context, player club.Player, dryRun bool)
}

// Options configures a Session.
type Options struct {
	// RecordGames makes SubmitGame append games instead of discarding them.
	RecordGames bool
	// Counters receives durable usage counters. Optional.
	Counters metrics.MetricsStore
	// NewID generates player and game ids. Defaults to random UUIDs.
	NewID func() string
}

// Session owns the state of one club page: the store contents, the
// selected tab and the add-player form. All commands are serialized.
type Session struct {
	mu sync.Mutex

	store    club.ClubStore
	recorder Recorder
	metrics  metrics.Metrics
	counters metrics.MetricsStore

	recordGames bool
	newID       func() string

	tab  Tab
	form AddPlayerForm
}

// GameResult reports what SubmitGame did with a form.
type GameResult struct {
	Recorded bool              `json:"recorded"`
	Game     *club.Game        `json:"game,omitempty"`
	Deltas   []club.StatsDelta `json:"-"`
}

// View is what the client renders for the selected tab. Exactly one of
// Leaderboard, Games and AddGame is set.
type View struct {
	Tab           Tab              `json:"tab"`
	Summary       club.Summary     `json:"summary"`
	AddPlayerForm AddPlayerForm    `json:"add_player_form"`
	Leaderboard   *LeaderboardView `json:"leaderboard,omitempty"`
	Games         *GamesView       `json:"games,omitempty"`
	AddGame       *AddGameView     `json:"add_game,omitempty"`
}

type LeaderboardView struct {
	Entries []club.LeaderboardEntry `json:"entries"`
}

type GamesView struct {
	Games []club.GameRow `json:"games"`
}

// AddGameView carries the choices offered by the add-game form.
type AddGameView struct {
	Players          []Option `json:"players"`
	Roles            []Option `json:"roles"`
	Outcomes         []Option `json:"outcomes"`
	RecordingEnabled bool     `json:"recording_enabled"`
}

// Option is a value/label pair for a form select.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Style string `json:"style,omitempty"`
}
