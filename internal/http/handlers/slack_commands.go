package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/notifier"
	"github.com/mauv0809/mafia-stats/internal/session"
	"github.com/slack-go/slack"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func respondWithFormatted(w http.ResponseWriter, msg any, err error) {
	if err != nil {
		http.Error(w, "Failed to format response", http.StatusInternalServerError)
		log.Error("Failed to format slack response", "error", err)
		return
	}
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}
	respondWithSlackMsg(w, slackMsg)
}

func LeaderboardCommandHandler(sess *session.Session, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, summary, err := sess.Leaderboard(r.Context())
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to build leaderboard", "error", err)
			return
		}

		msg, err := notifier.FormatLeaderboardResponse(entries, summary)
		respondWithFormatted(w, msg, err)
	}
}

// PlayerStatsCommandHandler answers `/player-stats <name>` with the best
// fuzzy match from the roster.
func PlayerStatsCommandHandler(sess *session.Session, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}

		query := strings.TrimSpace(r.FormValue("text"))
		if query == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", query)
		entries, _, err := sess.Leaderboard(r.Context())
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to build leaderboard", "error", err)
			return
		}

		players := make([]club.Player, 0, len(entries))
		for _, e := range entries {
			players = append(players, e.Player)
		}

		match := club.FindPlayer(players, query)
		if match == nil {
			log.Warn("Could not find player", "player", query)
			msg, err := notifier.FormatPlayerNotFoundResponse(query)
			respondWithFormatted(w, msg, err)
			return
		}

		log.Debug("Matched player", "query", query, "player", match.Player.Name, "confidence", match.Confidence)
		var entry club.LeaderboardEntry
		for _, e := range entries {
			if e.Player.ID == match.Player.ID {
				entry = e
				break
			}
		}
		msg, err := notifier.FormatPlayerStatsResponse(entry, query)
		respondWithFormatted(w, msg, err)
	}
}
