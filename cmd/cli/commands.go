package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/spf13/cobra"
)

var (
	gameDate     string
	gameWinner   string
	gameDuration int
	gameMVP      string
	gamePlayers  []string

	extraPlayer string
	extraPoints int
	extraReason string
)

func init() {
	submitGameCmd.Flags().StringVar(&gameDate, "date", "", "Game date (YYYY-MM-DD)")
	submitGameCmd.Flags().StringVar(&gameWinner, "winner", "", "Winning side: mafia, civilians or neutral")
	submitGameCmd.Flags().IntVar(&gameDuration, "duration", 0, "Duration in minutes")
	submitGameCmd.Flags().StringVar(&gameMVP, "mvp", "", "Player id of the MVP")
	submitGameCmd.Flags().StringArrayVar(&gamePlayers, "player", nil, "Participant as id or id:role, repeatable")

	addExtraCmd.Flags().StringVar(&extraPlayer, "player", "", "Player id of the participant")
	addExtraCmd.Flags().IntVar(&extraPoints, "points", 0, "Points to award, negative for a penalty")
	addExtraCmd.Flags().StringVar(&extraReason, "reason", "", "Why the points were given")
	addExtraCmd.MarkFlagRequired("player")
	addExtraCmd.MarkFlagRequired("points")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(addPlayerCmd)
	rootCmd.AddCommand(renamePlayerCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(shareLeaderboardCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(submitGameCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(tabCmd)
	rootCmd.AddCommand(extrasCmd)
	rootCmd.AddCommand(addExtraCmd)
	rootCmd.AddCommand(deleteExtraCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(activeRulesCmd)
	rootCmd.AddCommand(activateRulesCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the club",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players")
	},
}

var addPlayerCmd = &cobra.Command{
	Use:   "add-player <name>",
	Short: "Add a player to the club",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/api/players", map[string]string{"name": strings.Join(args, " ")})
	},
}

var renamePlayerCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a player",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPatch, "/api/players/"+url.PathEscape(args[0]), map[string]string{"name": strings.Join(args[1:], " ")})
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard and club summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/leaderboard")
	},
}

var shareLeaderboardCmd = &cobra.Command{
	Use:   "share-leaderboard",
	Short: "Post the leaderboard to the Slack channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/api/leaderboard/share", nil)
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the game history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/games")
	},
}

var submitGameCmd = &cobra.Command{
	Use:   "submit-game",
	Short: "Submit the add-game form",
	Example: `  mafia-cli submit-game --date 2024-12-20 --winner civilians --duration 45 \
    --player 1:Комиссар --player 2:Дон --player 3 --mvp 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := club.GameForm{
			Date:            gameDate,
			Outcome:         club.Outcome(gameWinner),
			DurationMinutes: gameDuration,
			MVP:             gameMVP,
		}
		for _, p := range gamePlayers {
			id, role, _ := strings.Cut(p, ":")
			form.Participants = append(form.Participants, club.Participant{PlayerID: id, Role: club.Role(role)})
		}
		return performRequest(http.MethodPost, "/api/games", form)
	},
}

var extrasCmd = &cobra.Command{
	Use:   "extras <game-id>",
	Short: "List the extra points awarded in a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/games/" + url.PathEscape(args[0]) + "/extras")
	},
}

var addExtraCmd = &cobra.Command{
	Use:     "add-extra <game-id>",
	Short:   "Award bonus or penalty points to a participant",
	Example: `  mafia-cli add-extra 1 --player 3 --points 15 --reason "лучшая речь"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form := club.ExtraPointsForm{PlayerID: extraPlayer, Points: extraPoints, Reason: extraReason}
		return performRequest(http.MethodPost, "/api/games/"+url.PathEscape(args[0])+"/extras", form)
	},
}

var deleteExtraCmd = &cobra.Command{
	Use:   "delete-extra <extra-id>",
	Short: "Withdraw awarded extra points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/api/extras/"+url.PathEscape(args[0]), nil)
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the stored scoring tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/rules")
	},
}

var activeRulesCmd = &cobra.Command{
	Use:   "active-rules",
	Short: "Show the scoring table used for new games",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/rules/active")
	},
}

var activateRulesCmd = &cobra.Command{
	Use:   "activate-rules <id>",
	Short: "Make a stored scoring table the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPatch, "/api/rules/"+url.PathEscape(args[0]), map[string]bool{"is_active": true})
	},
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the current view",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/view")
	},
}

var tabCmd = &cobra.Command{
	Use:       "tab <leaderboard|games|add-game>",
	Short:     "Select the active tab",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"leaderboard", "games", "add-game"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPut, "/api/view/"+url.PathEscape(args[0]), nil)
	},
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Show the persisted usage counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/counters")
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the club to the sample data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/clear", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func requestURL(endpoint string) string {
	u := host + endpoint
	if dryRun {
		u += "?dry_run=true"
	}
	return u
}

func performGetRequest(endpoint string) error {
	return performRequest(http.MethodGet, endpoint, nil)
}

func performRequest(method, endpoint string, payload any) error {
	target := requestURL(endpoint)
	fmt.Printf("Making %s request to %s\n", method, target)

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
