package handlers

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mafia-stats/internal/session"
)

func HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// ClearStoreHandler wipes the club and restores the sample data.
func ClearStoreHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to reset the store")
		if IsDryRunFromContext(r) {
			log.Info("[Dry Run] Would reset the store to sample data")
			fmt.Fprint(w, "Dry run: store not cleared")
			return
		}
		if err := sess.Reset(); err != nil {
			log.Error("Failed to reset store", "error", err)
			http.Error(w, "Failed to reset store", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store reset successfully")
	}
}
