package handlers

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/processor"
	"github.com/mauv0809/mafia-stats/internal/pubsub"
)

// NotifyResultHandler receives game-recorded events pushed by Pub/Sub and
// posts the result to Slack.
func NotifyResultHandler(processor *processor.Processor, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received notify result message", "body", string(bodyBytes))

		rawData, err := pubsub.DecodePush(bodyBytes)
		if err != nil {
			log.Error("Failed to decode push message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}

		var game club.Game
		if err := pubsubClient.ProcessMessage(rawData, &game); err != nil {
			log.Error("Failed to decode game event", "error", err)
			http.Error(w, "Invalid game event", http.StatusBadRequest)
			return
		}

		isDryRun := IsDryRunFromContext(r)
		if err := processor.NotifyResult(game, isDryRun); err != nil {
			log.Error("Failed to notify result", "error", err, "gameID", game.ID)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
