package club

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard_SortsByScoreNotWinRate(t *testing.T) {
	entries := Leaderboard(SamplePlayers())
	require.Len(t, entries, 5)

	assert.Equal(t, "Дмитрий Козлов", entries[0].Player.Name)
	assert.Equal(t, 2920, entries[0].Player.TotalScore)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, styleGreen, entries[0].RoleStyle)

	// The best win rate belongs to someone further down.
	assert.Equal(t, "Мария Петрова", entries[2].Player.Name)
	assert.Equal(t, 65.8, entries[2].WinRate)

	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Player.TotalScore, entries[i].Player.TotalScore)
		assert.Equal(t, i+1, entries[i].Rank)
	}
}

func TestLeaderboard_TiesKeepInsertionOrder(t *testing.T) {
	players := []Player{
		{ID: "a", Name: "A", TotalScore: 100},
		{ID: "b", Name: "B", TotalScore: 0},
		{ID: "c", Name: "C", TotalScore: 100},
		{ID: "d", Name: "D", TotalScore: 0},
	}
	entries := Leaderboard(players)

	var ids []string
	for _, e := range entries {
		ids = append(ids, e.Player.ID)
	}
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids)
	assert.Equal(t, "a", players[0].ID)
	assert.Equal(t, "b", players[1].ID, "input is not reordered")
}

func TestLeaderboard_NewPlayerRanksLast(t *testing.T) {
	players := append(SamplePlayers(), Player{ID: "new", Name: "Новичок", BestRole: Unset})
	entries := Leaderboard(players)

	last := entries[len(entries)-1]
	assert.Equal(t, "new", last.Player.ID)
	assert.Equal(t, 6, last.Rank)
	assert.Equal(t, 0.0, last.WinRate)
	assert.Equal(t, styleGray, last.RoleStyle)
}

func TestSummarize(t *testing.T) {
	s := Summarize(SamplePlayers(), SampleGames())
	assert.Equal(t, 2, s.TotalGames)
	assert.Equal(t, 5, s.TotalPlayers)
	assert.True(t, s.HasData)
	assert.Equal(t, 60.3, s.AverageWinRate)
	assert.Equal(t, "60.3%", s.AverageWinRateLabel())
}

func TestSummarize_NoPlayers(t *testing.T) {
	s := Summarize(nil, nil)
	assert.False(t, s.HasData)
	assert.Equal(t, 0.0, s.AverageWinRate)
	assert.Equal(t, "—", s.AverageWinRateLabel())
}

func TestResolveGames(t *testing.T) {
	rows := ResolveGames(SampleGames(), SamplePlayers())
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-12-15", rows[0].Date)
	assert.Equal(t, []string{"Алексей Волков", "Мария Петрова", "Дмитрий Козлов"}, rows[0].Players)
	assert.Equal(t, "Мирные", rows[0].OutcomeLabel)
	assert.Equal(t, styleBlue, rows[0].OutcomeStyle)
	assert.Equal(t, "Алексей Волков", rows[0].MVP)
	assert.Equal(t, 45, rows[0].DurationMinutes)

	assert.Equal(t, "Мафия", rows[1].OutcomeLabel)
	assert.Equal(t, styleRed, rows[1].OutcomeStyle)
}

func TestResolveGames_MissingPlayer(t *testing.T) {
	rows := ResolveGames(SampleGames()[:1], SamplePlayers()[1:])
	assert.Equal(t, Unset, rows[0].Players[0])
	assert.Equal(t, Unset, rows[0].MVP)
}

func TestPlayerDerivedFields(t *testing.T) {
	p := Player{GamesPlayed: 10, Wins: 5, Losses: 3}
	assert.Equal(t, 50.0, p.WinRate())
	assert.Equal(t, 2, p.Draws())
	assert.Equal(t, Unset, p.LastPlayedLabel())
	assert.Equal(t, Unset, p.EffectiveBestRole())

	assert.Equal(t, 0.0, Player{}.WinRate())
}

func TestEffectiveBestRole(t *testing.T) {
	p := Player{
		BestRole: string(RoleMafia),
		RoleStats: []RoleStats{
			{Role: RoleDoctor, Games: 4, Wins: 2},
			{Role: RoleDon, Games: 3, Wins: 2},
			{Role: RoleCivilian, Games: 6, Wins: 1},
		},
	}
	assert.Equal(t, string(RoleDoctor), p.EffectiveBestRole(), "equal wins fall to more games played")

	assert.Equal(t, string(RoleMafia), Player{BestRole: string(RoleMafia)}.EffectiveBestRole())
}

func TestPlayerMarshalJSON(t *testing.T) {
	b, err := SamplePlayers()[1].MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "2",
		"name": "Мария Петрова",
		"total_games": 38,
		"wins": 25,
		"losses": 13,
		"draws": 0,
		"total_score": 2650,
		"best_role": "Мафия",
		"win_rate": 65.8,
		"last_played": "2024-12-14",
		"avatar": "👑"
	}`, string(b))
}
