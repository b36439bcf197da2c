package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mafia-stats/internal/config"
	"github.com/mauv0809/mafia-stats/internal/notifier"
	"github.com/mauv0809/mafia-stats/internal/session"
	"github.com/slack-go/slack/slackevents"
)

// SlackEventsHandler serves the Slack Events API. It answers the URL
// verification challenge and posts the leaderboard when the bot is
// mentioned with "leaderboard" in the configured channel.
func SlackEventsHandler(sess *session.Session, notifier notifier.Notifier, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}

		event, err := slackevents.ParseEvent(json.RawMessage(bodyBytes), slackevents.OptionNoVerifyToken())
		if err != nil {
			log.Error("Failed to parse event payload", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		// Handle challenge verification (for initial webhook setup)
		if event.Type == slackevents.URLVerification {
			var challenge slackevents.ChallengeResponse
			if err := json.Unmarshal(bodyBytes, &challenge); err != nil {
				http.Error(w, "Invalid challenge", http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(challenge.Challenge))
			return
		}

		log.Info("Received slack event", "type", event.Type)
		if event.Type == slackevents.CallbackEvent {
			if mention, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent); ok {
				handleMention(r, mention, sess, notifier, cfg)
			}
		}

		// Slack retries on anything but 200, so failures are only logged.
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

func handleMention(r *http.Request, mention *slackevents.AppMentionEvent, sess *session.Session, notifier notifier.Notifier, cfg config.Config) {
	if mention.Channel != cfg.Slack.ChannelID {
		log.Info("Ignoring mention from different channel", "channel", mention.Channel)
		return
	}
	if !strings.Contains(strings.ToLower(mention.Text), "leaderboard") {
		log.Debug("Ignoring mention without a known command", "text", mention.Text)
		return
	}

	entries, summary, err := sess.Leaderboard(r.Context())
	if err != nil {
		log.Error("Failed to build leaderboard", "error", err)
		return
	}
	if err := notifier.SendLeaderboard(entries, summary, IsDryRunFromContext(r)); err != nil {
		log.Error("Failed to post leaderboard", "error", err, "user", mention.User)
	}
}
