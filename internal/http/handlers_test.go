package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/mafia-stats/internal/club"
	"github.com/mauv0809/mafia-stats/internal/config"
	"github.com/mauv0809/mafia-stats/internal/database"
	"github.com/mauv0809/mafia-stats/internal/metrics"
	"github.com/mauv0809/mafia-stats/internal/notifier"
	"github.com/mauv0809/mafia-stats/internal/processor"
	"github.com/mauv0809/mafia-stats/internal/pubsub"
	"github.com/mauv0809/mafia-stats/internal/rules"
	"github.com/mauv0809/mafia-stats/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSlackSigningSecret = "test-signing-secret"

type serverOptions struct {
	signingSecret string
	recordGames   bool
}

// setupTestServer initializes a new server over a seeded in-memory database and mock clients.
func setupTestServer(t *testing.T, notifier notifier.Notifier, opts serverOptions) (*Server, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	clubStore := club.New(db)
	require.NoError(t, club.Seed(clubStore))

	cfg := config.Config{
		Slack:          config.SlackConfig{SigningSecret: opts.signingSecret, ChannelID: "C123"},
		AllowedOrigins: []string{"http://localhost:5173"},
		Features:       config.FeatureConfig{GameRecording: opts.recordGames},
	}

	ruleStore := rules.New(db)
	require.NoError(t, ruleStore.EnsureDefault())

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	counters := metrics.New(db)
	ps := pubsub.NewMock()
	proc := processor.New(clubStore, notifier, metricsSvc, ps, processor.WithRuleSource(ruleStore))
	sess := session.New(clubStore, proc, metricsSvc, session.Options{
		RecordGames: opts.recordGames,
		Counters:    counters,
	})
	server := NewServer(sess, ruleStore, metricsHandler, counters, cfg, notifier, proc, ps)

	return server, dbTeardown
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()
	req := signedSlackRequest(t, targetURL, []byte(form.Encode()), signingSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func signedSlackRequest(t *testing.T, targetURL string, body []byte, signingSecret string) *http.Request {
	t.Helper()

	req, err := http.NewRequest("POST", targetURL, bytes.NewReader(body))
	require.NoError(t, err)

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(body))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))

	return req
}

func doJSON(t *testing.T, server *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func gameForm() club.GameForm {
	return club.GameForm{
		Date: "2024-12-20",
		Participants: []club.Participant{
			{PlayerID: "1", Role: club.RoleSheriff},
			{PlayerID: "2", Role: club.RoleDon},
			{PlayerID: "4", Role: club.RoleCivilian},
		},
		Outcome:         club.OutcomeCivilians,
		DurationMinutes: 40,
		MVP:             "1",
	}
}

func TestHealthCheckHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	rr := doJSON(t, server, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestCORS(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	req, err := http.NewRequest("OPTIONS", "/api/players", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestPlayersHandlers(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	t.Run("lists players in insertion order", func(t *testing.T) {
		rr := doJSON(t, server, "GET", "/api/players", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var players []map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
		require.Len(t, players, 5)
		assert.Equal(t, "Алексей Волков", players[0]["name"])
	})

	t.Run("adds a player", func(t *testing.T) {
		rr := doJSON(t, server, "POST", "/api/players", map[string]string{"name": " Новый Игрок "})

		require.Equal(t, http.StatusCreated, rr.Code)
		var player map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &player))
		assert.Equal(t, "Новый Игрок", player["name"])
		assert.EqualValues(t, 0, player["total_score"])
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		rr := doJSON(t, server, "POST", "/api/players", map[string]string{"name": "   "})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		players, err := server.Session.Players()
		require.NoError(t, err)
		assert.Len(t, players, 6)
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/api/players", strings.NewReader("{"))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("gets and renames a player", func(t *testing.T) {
		rr := doJSON(t, server, "PATCH", "/api/players/2", map[string]string{"name": "Мария П."})
		require.Equal(t, http.StatusOK, rr.Code)

		rr = doJSON(t, server, "GET", "/api/players/2", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Мария П.")
	})

	t.Run("unknown player is 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, doJSON(t, server, "GET", "/api/players/nope", nil).Code)
		assert.Equal(t, http.StatusNotFound, doJSON(t, server, "PATCH", "/api/players/nope", map[string]string{"name": "x"}).Code)
	})
}

func TestLeaderboardHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	rr := doJSON(t, server, "GET", "/api/leaderboard", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Entries []struct {
			Rank   int `json:"rank"`
			Player struct {
				Name       string `json:"name"`
				TotalScore int    `json:"total_score"`
			} `json:"player"`
		} `json:"entries"`
		Summary club.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 5)
	assert.Equal(t, "Дмитрий Козлов", resp.Entries[0].Player.Name, "sorted by score, not win rate")
	assert.Equal(t, 2920, resp.Entries[0].Player.TotalScore)
	assert.Equal(t, 2, resp.Summary.TotalGames)
	assert.Equal(t, 5, resp.Summary.TotalPlayers)
	assert.InDelta(t, 60.3, resp.Summary.AverageWinRate, 0.001)
}

func TestShareLeaderboardHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, teardown := setupTestServer(t, mockNotifier, serverOptions{})
	defer teardown()

	rr := doJSON(t, server, "POST", "/api/leaderboard/share", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, mockNotifier.SendLeaderboardCalls, 1)
	assert.Len(t, mockNotifier.SendLeaderboardCalls[0], 5)
}

func TestSubmitGameHandler(t *testing.T) {
	t.Run("discards the form when recording is disabled", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
		defer teardown()

		rr := doJSON(t, server, "POST", "/api/games", gameForm())

		require.Equal(t, http.StatusAccepted, rr.Code)
		assert.JSONEq(t, `{"recorded":false}`, rr.Body.String())

		rr = doJSON(t, server, "GET", "/api/summary", nil)
		var summary club.Summary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
		assert.Equal(t, 2, summary.TotalGames, "game count unchanged")
	})

	t.Run("records the game when enabled", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{recordGames: true})
		defer teardown()

		rr := doJSON(t, server, "POST", "/api/games", gameForm())
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = doJSON(t, server, "GET", "/api/games", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var rows []club.GameRow
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
		require.Len(t, rows, 3)
		assert.Equal(t, "2024-12-20", rows[2].Date)
		assert.Equal(t, "Алексей Волков", rows[2].MVP)

		counters, err := server.Counters.GetAll()
		require.NoError(t, err)
		assert.Equal(t, 1, counters[metrics.KeyGamesRecorded])
	})

	t.Run("dry run records nothing", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{recordGames: true})
		defer teardown()

		rr := doJSON(t, server, "POST", "/api/games?dry_run=true", gameForm())
		require.Equal(t, http.StatusOK, rr.Code)

		games, err := server.Session.Games(context.Background())
		require.NoError(t, err)
		assert.Len(t, games, 2)
	})

	t.Run("invalid form is 422 with field errors", func(t *testing.T) {
		server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{recordGames: true})
		defer teardown()

		form := gameForm()
		form.Outcome = "aliens"
		rr := doJSON(t, server, "POST", "/api/games", form)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Fields, "winner")
	})
}

func TestViewHandlers(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	rr := doJSON(t, server, "GET", "/api/view", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var view map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "leaderboard", view["tab"])
	assert.Contains(t, view, "leaderboard")

	rr = doJSON(t, server, "PUT", "/api/view/games", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view = nil
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "games", view["tab"])
	assert.Contains(t, view, "games")
	assert.NotContains(t, view, "leaderboard")
	assert.NotContains(t, view, "add_game")

	rr = doJSON(t, server, "PUT", "/api/view/settings", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, session.TabGames, server.Session.Tab())
}

func TestAddPlayerFormHandlers(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	rr := doJSON(t, server, "PUT", "/api/add-player-form", session.AddPlayerForm{Open: true, Name: "  "})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, server, "POST", "/api/add-player-form/submit", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"player":null,"form":{"open":true,"name":"  "}}`, rr.Body.String())

	doJSON(t, server, "PUT", "/api/add-player-form", session.AddPlayerForm{Open: true, Name: "Ольга"})
	rr = doJSON(t, server, "POST", "/api/add-player-form/submit", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "Ольга")
	assert.Equal(t, session.AddPlayerForm{}, server.Session.AddPlayerForm())
}

func TestClearStoreHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	doJSON(t, server, "POST", "/api/players", map[string]string{"name": "Временный"})

	rr := doJSON(t, server, "POST", "/clear", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	players, err := server.Session.Players()
	require.NoError(t, err)
	assert.Len(t, players, 5)
}

func TestCountersHandler(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	doJSON(t, server, "POST", "/api/players", map[string]string{"name": "Ольга"})
	doJSON(t, server, "POST", "/api/games", gameForm())

	rr := doJSON(t, server, "GET", "/api/counters", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var counters map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counters))
	assert.Equal(t, 1, counters[metrics.KeyPlayersAdded])
	assert.Equal(t, 1, counters[metrics.KeyGameSubmissionsIgnored])
}

func TestNotifyResultHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, teardown := setupTestServer(t, mockNotifier, serverOptions{})
	defer teardown()

	t.Run("posts the pushed game", func(t *testing.T) {
		body, err := pubsub.EncodePush("projects/p/subscriptions/notify-result", club.SampleGames()[0])
		require.NoError(t, err)

		req, err := http.NewRequest("POST", "/pubsub/notify-result?dry_run=true", bytes.NewReader(body))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, mockNotifier.SendResultNotificationCalls, 1)
		assert.Equal(t, "1", mockNotifier.SendResultNotificationCalls[0].Game.ID)
		assert.True(t, mockNotifier.SendResultNotificationCalls[0].DryRun)
	})

	t.Run("rejects a malformed envelope", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/pubsub/notify-result", strings.NewReader(`{"message":{"data":"%%%"}}`))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	doJSON(t, server, "POST", "/api/players", map[string]string{"name": "Ольга"})

	rr := doJSON(t, server, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "mafia_players_added_total 1")
}

func TestLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatLeaderboardResponseFunc = func(entries []club.LeaderboardEntry, summary club.Summary) (any, error) {
		return slack.Message{}, nil
	}
	server, teardown := setupTestServer(t, mockNotifier, serverOptions{signingSecret: testSlackSigningSecret})
	defer teardown()

	req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestPlayerStatsCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatPlayerStatsResponseFunc = func(entry club.LeaderboardEntry, query string) (any, error) {
		return slack.Message{}, nil
	}
	mockNotifier.FormatPlayerNotFoundResponseFunc = func(query string) (any, error) {
		return slack.Message{}, nil
	}
	server, teardown := setupTestServer(t, mockNotifier, serverOptions{signingSecret: testSlackSigningSecret})
	defer teardown()

	t.Run("handles found player", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "мария")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, mockNotifier.LastPlayerStatsEntry)
		assert.Equal(t, "Мария Петрова", mockNotifier.LastPlayerStatsEntry.Player.Name)
		assert.Equal(t, 3, mockNotifier.LastPlayerStatsEntry.Rank)
	})

	t.Run("handles not found player", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "Unknown")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Unknown", mockNotifier.LastPlayerNotFoundQuery)
	})

	t.Run("handles missing player name", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{}, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects request with invalid signature", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "мария")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)

		// Tamper with the signature to make it invalid
		req.Header.Set("X-Slack-Signature", "v0=invalid-signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with missing signature", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "мария")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		req.Header.Del("X-Slack-Signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with outdated timestamp", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "мария")

		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)

		// Set an outdated timestamp (e.g., 6 minutes ago)
		req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Add(-6*time.Minute).Unix(), 10))

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestSlackEventsHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, teardown := setupTestServer(t, mockNotifier, serverOptions{signingSecret: testSlackSigningSecret})
	defer teardown()

	t.Run("answers the url verification challenge", func(t *testing.T) {
		body := []byte(`{"type":"url_verification","challenge":"abc123","token":"t"}`)
		req := signedSlackRequest(t, "/slack/events", body, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "abc123", rr.Body.String())
	})

	t.Run("posts the leaderboard on mention", func(t *testing.T) {
		body := []byte(`{"type":"event_callback","token":"t","event":{"type":"app_mention","user":"U1","text":"<@B1> leaderboard","channel":"C123","ts":"1.0"}}`)
		req := signedSlackRequest(t, "/slack/events", body, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, mockNotifier.SendLeaderboardCalls, 1)
	})

	t.Run("ignores mentions in other channels", func(t *testing.T) {
		mockNotifier.Reset()
		body := []byte(`{"type":"event_callback","token":"t","event":{"type":"app_mention","user":"U1","text":"leaderboard","channel":"C999","ts":"1.0"}}`)
		req := signedSlackRequest(t, "/slack/events", body, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, mockNotifier.SendLeaderboardCalls)
	})
}

func TestDryRunLeavesSessionUntouched(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	t.Run("add player", func(t *testing.T) {
		rr := doJSON(t, server, "POST", "/api/players?dry_run=true", map[string]string{"name": " Гость "})

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Гость")
		players, err := server.Session.Players()
		require.NoError(t, err)
		assert.Len(t, players, 5)
	})

	t.Run("rename player", func(t *testing.T) {
		rr := doJSON(t, server, "PATCH", "/api/players/2?dry_run=true", map[string]string{"name": "Мария П."})

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Мария П.")
		player, err := server.Session.Player("2")
		require.NoError(t, err)
		assert.Equal(t, "Мария Петрова", player.Name)

		assert.Equal(t, http.StatusNotFound, doJSON(t, server, "PATCH", "/api/players/nope?dry_run=true", map[string]string{"name": "x"}).Code)
	})

	t.Run("select tab", func(t *testing.T) {
		rr := doJSON(t, server, "PUT", "/api/view/games?dry_run=true", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var view map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
		assert.Equal(t, "games", view["tab"])
		assert.Contains(t, view, "games")
		assert.Equal(t, session.TabLeaderboard, server.Session.Tab())

		assert.Equal(t, http.StatusBadRequest, doJSON(t, server, "PUT", "/api/view/settings?dry_run=true", nil).Code)
	})

	t.Run("add-player form", func(t *testing.T) {
		form := session.AddPlayerForm{Open: true, Name: "Ольга"}
		rr := doJSON(t, server, "PUT", "/api/add-player-form?dry_run=true", form)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"open":true,"name":"Ольга"}`, rr.Body.String())
		assert.Equal(t, session.AddPlayerForm{}, server.Session.AddPlayerForm())
	})

	t.Run("submit add-player form", func(t *testing.T) {
		form := session.AddPlayerForm{Open: true, Name: "Ольга"}
		doJSON(t, server, "PUT", "/api/add-player-form", form)

		rr := doJSON(t, server, "POST", "/api/add-player-form/submit?dry_run=true", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Ольга")
		assert.Equal(t, form, server.Session.AddPlayerForm())
		players, err := server.Session.Players()
		require.NoError(t, err)
		assert.Len(t, players, 5)
	})

	counters, err := server.Counters.GetAll()
	require.NoError(t, err)
	assert.Zero(t, counters[metrics.KeyPlayersAdded])
	assert.Zero(t, counters[metrics.KeyTabSwitches])
}

func TestExtraPointsHandlers(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{})
	defer teardown()

	award := club.ExtraPointsForm{PlayerID: "3", Points: 10, Reason: "лучшая речь"}

	listExtras := func(t *testing.T) []club.ExtraPoints {
		t.Helper()
		rr := doJSON(t, server, "GET", "/api/games/1/extras", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var extras []club.ExtraPoints
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &extras))
		return extras
	}

	rr := doJSON(t, server, "POST", "/api/games/1/extras?dry_run=true", award)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, listExtras(t))

	rr = doJSON(t, server, "POST", "/api/games/1/extras", award)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created club.ExtraPoints
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	require.Len(t, listExtras(t), 1)

	player, err := server.Session.Player("3")
	require.NoError(t, err)
	assert.Equal(t, 2930, player.TotalScore)

	t.Run("rejections", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, doJSON(t, server, "POST", "/api/games/nope/extras", award).Code)
		assert.Equal(t, http.StatusNotFound, doJSON(t, server, "GET", "/api/games/nope/extras", nil).Code)

		outsider := award
		outsider.PlayerID = "4"
		rr := doJSON(t, server, "POST", "/api/games/1/extras", outsider)
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Fields, "player_id")
	})

	t.Run("delete", func(t *testing.T) {
		target := fmt.Sprintf("/api/extras/%d", created.ID)

		require.Equal(t, http.StatusOK, doJSON(t, server, "DELETE", target+"?dry_run=true", nil).Code)
		assert.Len(t, listExtras(t), 1)

		require.Equal(t, http.StatusOK, doJSON(t, server, "DELETE", target, nil).Code)
		assert.Empty(t, listExtras(t))
		player, err := server.Session.Player("3")
		require.NoError(t, err)
		assert.Equal(t, 2920, player.TotalScore)

		assert.Equal(t, http.StatusNotFound, doJSON(t, server, "DELETE", target, nil).Code)
		assert.Equal(t, http.StatusBadRequest, doJSON(t, server, "DELETE", "/api/extras/abc", nil).Code)
	})
}

func TestRulesHandlers(t *testing.T) {
	server, teardown := setupTestServer(t, notifier.NewMock(), serverOptions{recordGames: true})
	defer teardown()

	listSets := func(t *testing.T) []club.RuleSet {
		t.Helper()
		rr := doJSON(t, server, "GET", "/api/rules", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var sets []club.RuleSet
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sets))
		return sets
	}
	activeSet := func(t *testing.T) club.RuleSet {
		t.Helper()
		rr := doJSON(t, server, "GET", "/api/rules/active", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var rs club.RuleSet
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rs))
		return rs
	}

	require.Len(t, listSets(t), 1)
	assert.Equal(t, "classic", activeSet(t).Name)

	league := club.RuleSet{
		Name:   "league",
		Active: true,
		Items:  []club.RuleItem{{Condition: club.ConditionCityWin, Delta: 10}},
	}

	t.Run("create", func(t *testing.T) {
		require.Equal(t, http.StatusOK, doJSON(t, server, "POST", "/api/rules?dry_run=true", league).Code)
		require.Len(t, listSets(t), 1)

		rr := doJSON(t, server, "POST", "/api/rules", league)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "league", activeSet(t).Name)

		assert.Equal(t, http.StatusConflict, doJSON(t, server, "POST", "/api/rules", league).Code)
		assert.Equal(t, http.StatusConflict, doJSON(t, server, "POST", "/api/rules?dry_run=true", league).Code)

		rr = doJSON(t, server, "POST", "/api/rules", club.RuleSet{Name: "broken", Items: []club.RuleItem{{Condition: "SURVIVE"}}})
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "items[0].condition")
	})

	t.Run("the active set scores new games", func(t *testing.T) {
		require.Equal(t, http.StatusCreated, doJSON(t, server, "POST", "/api/games", gameForm()).Code)

		player, err := server.Session.Player("1")
		require.NoError(t, err)
		assert.Equal(t, 2850, player.TotalScore, "city win worth 10, no MVP bonus")
	})

	leagueID := activeSet(t).ID

	t.Run("update", func(t *testing.T) {
		rr := doJSON(t, server, "PATCH", "/api/rules/1?dry_run=true", map[string]bool{"is_active": true})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"is_active":true`)
		assert.Equal(t, leagueID, activeSet(t).ID)

		rr = doJSON(t, server, "PATCH", fmt.Sprintf("/api/rules/%d", leagueID), map[string]string{"name": "classic"})
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, http.StatusNotFound, doJSON(t, server, "PATCH", "/api/rules/999", map[string]bool{"is_active": true}).Code)
		assert.Equal(t, http.StatusBadRequest, doJSON(t, server, "GET", "/api/rules/xyz", nil).Code)
	})

	t.Run("items", func(t *testing.T) {
		itemsURL := fmt.Sprintf("/api/rules/%d/items", leagueID)
		mvp := club.RuleItem{Condition: club.ConditionMVP, Delta: 5}

		require.Equal(t, http.StatusOK, doJSON(t, server, "POST", itemsURL+"?dry_run=true", mvp).Code)
		assert.Len(t, activeSet(t).Items, 1)

		rr := doJSON(t, server, "POST", itemsURL, mvp)
		require.Equal(t, http.StatusCreated, rr.Code)
		var item club.RuleItem
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &item))
		assert.Equal(t, http.StatusConflict, doJSON(t, server, "POST", itemsURL+"?dry_run=true", mvp).Code)

		itemURL := fmt.Sprintf("/api/rules/items/%d", item.ID)
		rr = doJSON(t, server, "PATCH", itemURL+"?dry_run=true", map[string]int{"delta": 7})
		require.Equal(t, http.StatusOK, rr.Code)
		rr = doJSON(t, server, "PATCH", itemURL, map[string]int{"delta": 9})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"delta":9`)

		require.Equal(t, http.StatusOK, doJSON(t, server, "DELETE", itemURL+"?dry_run=true", nil).Code)
		assert.Len(t, activeSet(t).Items, 2)
		require.Equal(t, http.StatusNoContent, doJSON(t, server, "DELETE", itemURL, nil).Code)
		assert.Equal(t, http.StatusNotFound, doJSON(t, server, "DELETE", itemURL, nil).Code)
	})

	t.Run("delete", func(t *testing.T) {
		target := fmt.Sprintf("/api/rules/%d", leagueID)

		require.Equal(t, http.StatusOK, doJSON(t, server, "DELETE", target+"?dry_run=true", nil).Code)
		assert.Len(t, listSets(t), 2)

		require.Equal(t, http.StatusNoContent, doJSON(t, server, "DELETE", target, nil).Code)
		assert.Len(t, listSets(t), 1)
		assert.Equal(t, http.StatusNotFound, doJSON(t, server, "GET", "/api/rules/active", nil).Code)
	})
}
