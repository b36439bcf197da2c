package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/session"
)

func respondExtrasError(w http.ResponseWriter, err error, action string) {
	var verr *club.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Invalid extra points", Fields: verr.Fields})
	case errors.Is(err, club.ErrNotParticipant):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "Invalid extra points",
			Fields: map[string]string{"player_id": "must be one of the participants"},
		})
	case errors.Is(err, club.ErrGameNotFound):
		respondError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, club.ErrExtraPointsNotFound):
		respondError(w, http.StatusNotFound, "Extra points not found")
	default:
		log.Error("Extra points operation failed", "error", err, "action", action)
		respondError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func ListExtraPointsHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		extras, err := sess.ExtraPoints(chi.URLParam(r, "id"))
		if err != nil {
			respondExtrasError(w, err, "list extra points")
			return
		}
		respondJSON(w, http.StatusOK, extras)
	}
}

// AddExtraPointsHandler awards bonus or penalty points to a participant of
// a recorded game. Only the player's total score changes.
func AddExtraPointsHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form club.ExtraPointsForm
		if !decodeJSON(w, r, &form) {
			return
		}
		dryRun := IsDryRunFromContext(r)
		extra, err := sess.AddExtraPoints(chi.URLParam(r, "id"), form, dryRun)
		if err != nil {
			respondExtrasError(w, err, "add extra points")
			return
		}
		respondJSON(w, createdStatus(dryRun), extra)
	}
}

func DeleteExtraPointsHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "extraID")
		if !ok {
			return
		}
		extra, err := sess.DeleteExtraPoints(id, IsDryRunFromContext(r))
		if err != nil {
			respondExtrasError(w, err, "delete extra points")
			return
		}
		respondJSON(w, http.StatusOK, extra)
	}
}
