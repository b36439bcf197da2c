package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CountersAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.IncPlayersAdded()
	svc.IncGamesRecorded()
	svc.IncGamesRecorded()
	svc.IncGameSubmissionsIgnored()
	svc.ObserveProcessingDuration(0.02)
	svc.SetStartupTime(1.5)

	assert.Equal(t, 1.0, testutil.ToFloat64(svc.PlayersAdded))
	assert.Equal(t, 2.0, testutil.ToFloat64(svc.GamesRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.GameSubmissionsIgnored))
	assert.Equal(t, 1.5, testutil.ToFloat64(svc.StartupTimeSeconds))

	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mafia_games_recorded_total 2")
	assert.Contains(t, string(body), "mafia_game_processing_duration_seconds_count 1")
}
