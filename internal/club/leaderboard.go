package club

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// LeaderboardEntry is a player at a position in the leaderboard.
type LeaderboardEntry struct {
	Rank      int     `json:"rank"`
	Player    Player  `json:"player"`
	WinRate   float64 `json:"win_rate"`
	RoleStyle string  `json:"role_style"`
}

// Summary holds the club-wide aggregates shown above the leaderboard.
type Summary struct {
	TotalGames     int     `json:"total_games"`
	TotalPlayers   int     `json:"total_players"`
	AverageWinRate float64 `json:"average_win_rate"`
	// HasData is false when there are no players to average over.
	HasData bool `json:"has_data"`
}

// AverageWinRateLabel renders the average with one decimal, or a dash when
// there is nothing to average.
func (s Summary) AverageWinRateLabel() string {
	if !s.HasData {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", s.AverageWinRate)
}

// GameRow is a game prepared for display, with player names resolved.
type GameRow struct {
	ID              string   `json:"id"`
	Date            string   `json:"date"`
	Players         []string `json:"players"`
	Outcome         Outcome  `json:"winner"`
	OutcomeLabel    string   `json:"winner_label"`
	OutcomeStyle    string   `json:"winner_style"`
	DurationMinutes int      `json:"duration"`
	MVP             string   `json:"mvp,omitempty"`
}

// Leaderboard orders players by descending total score. Players with equal
// scores keep their relative order. The input is not modified.
func Leaderboard(players []Player) []LeaderboardEntry {
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b Player) int {
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})

	entries := make([]LeaderboardEntry, 0, len(sorted))
	for i, p := range sorted {
		entries = append(entries, LeaderboardEntry{
			Rank:      i + 1,
			Player:    p,
			WinRate:   Round1(p.WinRate()),
			RoleStyle: RoleStyle(p.EffectiveBestRole()),
		})
	}
	return entries
}

// Summarize computes the aggregates over the current lists.
func Summarize(players []Player, games []Game) Summary {
	s := Summary{
		TotalGames:   len(games),
		TotalPlayers: len(players),
	}
	if len(players) == 0 {
		return s
	}

	var total float64
	for _, p := range players {
		total += p.WinRate()
	}
	s.AverageWinRate = Round1(total / float64(len(players)))
	s.HasData = true
	return s
}

// ResolveGames turns games into display rows. A participant whose player no
// longer exists is shown as Unset.
func ResolveGames(games []Game, players []Player) []GameRow {
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	nameOf := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return Unset
	}

	rows := make([]GameRow, 0, len(games))
	for _, g := range games {
		row := GameRow{
			ID:              g.ID,
			Date:            g.Date.Format(DateLayout),
			Outcome:         g.Outcome,
			OutcomeLabel:    OutcomeLabel(g.Outcome),
			OutcomeStyle:    OutcomeStyle(g.Outcome),
			DurationMinutes: g.DurationMinutes,
		}
		for _, id := range g.PlayerIDs() {
			row.Players = append(row.Players, nameOf(id))
		}
		if g.MVP != "" {
			row.MVP = nameOf(g.MVP)
		}
		rows = append(rows, row)
	}
	return rows
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
