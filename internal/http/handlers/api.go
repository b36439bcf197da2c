package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/metrics"
	"github.com/mauv0809/mafia-stats/internal/notifier"
	"github.com/mauv0809/mafia-stats/internal/session"
)

type nameRequest struct {
	Name string `json:"name"`
}

type leaderboardResponse struct {
	Entries []club.LeaderboardEntry `json:"entries"`
	Summary club.Summary            `json:"summary"`
}

func ListPlayersHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := sess.Players()
		if err != nil {
			log.Error("Failed to get players from store", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to get players")
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func GetPlayerHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		player, err := sess.Player(id)
		if errors.Is(err, club.ErrPlayerNotFound) {
			respondError(w, http.StatusNotFound, "Player not found")
			return
		}
		if err != nil {
			log.Error("Failed to get player", "error", err, "playerID", id)
			respondError(w, http.StatusInternalServerError, "Failed to get player")
			return
		}
		respondJSON(w, http.StatusOK, player)
	}
}

func AddPlayerHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		dryRun := IsDryRunFromContext(r)
		player, err := sess.AddPlayer(r.Context(), req.Name, dryRun)
		if errors.Is(err, club.ErrEmptyName) {
			respondError(w, http.StatusBadRequest, "Player name is required.")
			return
		}
		if err != nil {
			log.Error("Failed to add player", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to add player")
			return
		}
		respondJSON(w, createdStatus(dryRun), player)
	}
}

func RenamePlayerHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req nameRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		player, err := sess.RenamePlayer(id, req.Name, IsDryRunFromContext(r))
		switch {
		case errors.Is(err, club.ErrEmptyName):
			respondError(w, http.StatusBadRequest, "Player name is required.")
		case errors.Is(err, club.ErrPlayerNotFound):
			respondError(w, http.StatusNotFound, "Player not found")
		case err != nil:
			log.Error("Failed to rename player", "error", err, "playerID", id)
			respondError(w, http.StatusInternalServerError, "Failed to rename player")
		default:
			log.Info("Player renamed", "playerID", id, "name", player.Name)
			respondJSON(w, http.StatusOK, player)
		}
	}
}

func LeaderboardHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, summary, err := sess.Leaderboard(r.Context())
		if err != nil {
			log.Error("Failed to build leaderboard", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to get leaderboard")
			return
		}
		respondJSON(w, http.StatusOK, leaderboardResponse{Entries: entries, Summary: summary})
	}
}

func SummaryHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, summary, err := sess.Leaderboard(r.Context())
		if err != nil {
			log.Error("Failed to build summary", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to get summary")
			return
		}
		respondJSON(w, http.StatusOK, summary)
	}
}

// ShareLeaderboardHandler posts the current leaderboard to the Slack channel.
func ShareLeaderboardHandler(sess *session.Session, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, summary, err := sess.Leaderboard(r.Context())
		if err != nil {
			log.Error("Failed to build leaderboard", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to get leaderboard")
			return
		}
		if err := notifier.SendLeaderboard(entries, summary, IsDryRunFromContext(r)); err != nil {
			log.Error("Failed to share leaderboard", "error", err)
			respondError(w, http.StatusBadGateway, "Failed to share leaderboard")
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"shared": true})
	}
}

func ListGamesHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := sess.Games(r.Context())
		if err != nil {
			log.Error("Failed to get games from store", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to get games")
			return
		}
		respondJSON(w, http.StatusOK, games)
	}
}

// SubmitGameHandler accepts the add-game form. It answers 201 for a recorded
// game, 202 when recording is disabled and the form was discarded, 200 for a
// dry run and 422 for an invalid form.
func SubmitGameHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form club.GameForm
		if !decodeJSON(w, r, &form) {
			return
		}
		result, err := sess.SubmitGame(r.Context(), form, IsDryRunFromContext(r))
		var verr *club.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Invalid game", Fields: verr.Fields})
			return
		}
		if err != nil {
			log.Error("Failed to record game", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to record game")
			return
		}

		status := http.StatusOK
		switch {
		case result.Recorded:
			status = http.StatusCreated
		case !sess.RecordingEnabled():
			status = http.StatusAccepted
		}
		respondJSON(w, status, result)
	}
}

func ViewHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := sess.View(r.Context())
		if err != nil {
			log.Error("Failed to render view", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to render view")
			return
		}
		respondJSON(w, http.StatusOK, view)
	}
}

// SelectTabHandler switches the view and renders it. A dry run renders the
// tab without selecting it.
func SelectTabHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := chi.URLParam(r, "tab")
		dryRun := IsDryRunFromContext(r)
		if err := sess.SelectTab(tab, dryRun); err != nil {
			log.Warn("Rejected tab selection", "tab", tab, "error", err)
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		var view session.View
		var err error
		if dryRun {
			view, err = sess.Preview(r.Context(), tab)
		} else {
			view, err = sess.View(r.Context())
		}
		if err != nil {
			log.Error("Failed to render view", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to render view")
			return
		}
		respondJSON(w, http.StatusOK, view)
	}
}

func SetAddPlayerFormHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form session.AddPlayerForm
		if !decodeJSON(w, r, &form) {
			return
		}
		respondJSON(w, http.StatusOK, sess.SetAddPlayerForm(form, IsDryRunFromContext(r)))
	}
}

// SubmitAddPlayerFormHandler submits the add-player form. A blank name is
// not an error: the response carries no player and the form stays open.
func SubmitAddPlayerFormHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dryRun := IsDryRunFromContext(r)
		player, err := sess.SubmitAddPlayer(r.Context(), dryRun)
		if err != nil {
			log.Error("Failed to add player from form", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to add player")
			return
		}
		status := http.StatusOK
		if player != nil {
			status = createdStatus(dryRun)
		}
		respondJSON(w, status, struct {
			Player *club.Player          `json:"player"`
			Form   session.AddPlayerForm `json:"form"`
		}{player, sess.AddPlayerForm()})
	}
}

// CountersHandler returns the durable usage counters.
func CountersHandler(counters metrics.MetricsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := counters.GetAll()
		if err != nil {
			log.Error("Failed to get counters", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to get counters")
			return
		}
		respondJSON(w, http.StatusOK, all)
	}
}
