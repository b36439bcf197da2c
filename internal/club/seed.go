package club

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

func seedDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SamplePlayers returns the club's sample roster.
func SamplePlayers() []Player {
	return []Player{
		{ID: "1", Name: "Алексей Волков", GamesPlayed: 45, Wins: 28, Losses: 17, TotalScore: 2840, BestRole: string(RoleSheriff), LastPlayed: seedDate("2024-12-15"), Avatar: "🕵️"},
		{ID: "2", Name: "Мария Петрова", GamesPlayed: 38, Wins: 25, Losses: 13, TotalScore: 2650, BestRole: string(RoleMafia), LastPlayed: seedDate("2024-12-14"), Avatar: "👑"},
		{ID: "3", Name: "Дмитрий Козлов", GamesPlayed: 52, Wins: 30, Losses: 22, TotalScore: 2920, BestRole: string(RoleDoctor), LastPlayed: seedDate("2024-12-13"), Avatar: "🏥"},
		{ID: "4", Name: "Анна Сидорова", GamesPlayed: 29, Wins: 18, Losses: 11, TotalScore: 1890, BestRole: string(RoleCivilian), LastPlayed: seedDate("2024-12-12"), Avatar: "🌟"},
		{ID: "5", Name: "Игорь Морозов", GamesPlayed: 41, Wins: 22, Losses: 19, TotalScore: 2110, BestRole: string(RoleMafia), LastPlayed: seedDate("2024-12-11"), Avatar: "🎭"},
	}
}

// SampleGames returns the club's sample game history. The games are
// already reflected in the sample players' totals.
func SampleGames() []Game {
	return []Game{
		{
			ID:              "1",
			Date:            seedDate("2024-12-15"),
			Participants:    []Participant{{PlayerID: "1"}, {PlayerID: "2"}, {PlayerID: "3"}},
			Outcome:         OutcomeCivilians,
			DurationMinutes: 45,
			MVP:             "1",
		},
		{
			ID:              "2",
			Date:            seedDate("2024-12-14"),
			Participants:    []Participant{{PlayerID: "2"}, {PlayerID: "4"}, {PlayerID: "5"}},
			Outcome:         OutcomeMafia,
			DurationMinutes: 38,
			MVP:             "2",
		},
	}
}

// Seed loads the sample roster and games into an empty store. A store that
// already holds data is left untouched.
func Seed(s ClubStore) error {
	empty, err := s.IsEmpty()
	if err != nil {
		return fmt.Errorf("checking store before seeding: %w", err)
	}
	if !empty {
		log.Info("Store already has data, skipping seed")
		return nil
	}

	players := SamplePlayers()
	for _, p := range players {
		if err := s.AddPlayer(p); err != nil {
			return fmt.Errorf("seeding player %s: %w", p.ID, err)
		}
	}
	games := SampleGames()
	for _, g := range games {
		if err := s.AddGame(g); err != nil {
			return fmt.Errorf("seeding game %s: %w", g.ID, err)
		}
	}
	log.Info("Seeded sample data", "players", len(players), "games", len(games))
	return nil
}
