package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncPlayersAdded()
	IncGamesRecorded()
	IncGameSubmissionsIgnored()
	ObserveProcessingDuration(duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore keeps named counters in the database so they survive
// restarts of a file-backed deployment.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}

// Counter keys kept in the MetricsStore.
const (
	KeyPlayersAdded           = "players_added"
	KeyGamesRecorded          = "games_recorded"
	KeyGameSubmissionsIgnored = "game_submissions_ignored"
	KeyTabSwitches            = "tab_switches"
)
