package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/config"
	"github.com/mauv0809/mafia-stats/internal/database"
	"github.com/mauv0809/mafia-stats/internal/rules"
	"github.com/spf13/cobra"
)

var (
	numGames int
	reset    bool
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Seed the club database with sample players and random games",
	Long: `Loads the sample roster into the configured database (DB_NAME or
TURSO_PRIMARY_URL) and optionally plays a number of random games on top of it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().IntVar(&numGames, "games", 0, "Number of random games to record after seeding")
	rootCmd.Flags().BoolVar(&reset, "reset", false, "Clear the database before seeding")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	log.Info("Starting database seeder...")
	cfg := config.Load()

	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer teardown()

	store := club.New(db)
	if reset {
		log.Warn("Clearing all club data")
		store.Clear()
	}
	if err := club.Seed(store); err != nil {
		return err
	}

	players, err := store.GetAllPlayers()
	if err != nil {
		return fmt.Errorf("loading players: %w", err)
	}
	if numGames > 0 && len(players) == 0 {
		return fmt.Errorf("no players to play games with")
	}

	ruleStore := rules.New(db)
	if err := ruleStore.EnsureDefault(); err != nil {
		return err
	}
	ruleSet, err := ruleStore.Active()
	if errors.Is(err, rules.ErrNoActiveRuleSet) {
		log.Warn("No active rule set, scoring with the classic table")
		ruleSet, err = club.DefaultRuleSet(), nil
	}
	if err != nil {
		return fmt.Errorf("loading active rule set: %w", err)
	}

	log.Info("Preparing to record random games...", "total", numGames, "rules", ruleSet.Name)
	startTime := time.Now()
	for i := 0; i < numGames; i++ {
		game := randomGame(players)
		if err := store.RecordGame(game, club.ScoreGame(game, ruleSet)); err != nil {
			return fmt.Errorf("recording game %d: %w", i+1, err)
		}
		if (i+1)%100 == 0 {
			log.Info("Recorded batch", "completed", i+1, "total", numGames)
		}
	}

	log.Info("Seeding complete", "games", numGames, "duration", time.Since(startTime))
	return nil
}

// randomGame seats a random subset of the roster with random roles.
func randomGame(players []club.Player) club.Game {
	seats := rand.Perm(len(players))
	n := min(len(players), 3+rand.IntN(8))

	game := club.Game{
		ID:              uuid.NewString(),
		Date:            time.Now().AddDate(0, 0, -rand.IntN(365)).Truncate(24 * time.Hour),
		Outcome:         club.Outcomes[rand.IntN(len(club.Outcomes))],
		DurationMinutes: 20 + rand.IntN(70),
	}
	for _, idx := range seats[:n] {
		game.Participants = append(game.Participants, club.Participant{
			PlayerID: players[idx].ID,
			Role:     club.Roles[rand.IntN(len(club.Roles))],
		})
	}
	if rand.IntN(4) > 0 {
		game.MVP = game.Participants[rand.IntN(n)].PlayerID
	}
	return game
}
