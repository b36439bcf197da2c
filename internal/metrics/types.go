package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	PlayersAdded           prometheus.Counter
	GamesRecorded          prometheus.Counter
	GameSubmissionsIgnored prometheus.Counter
	ProcessingDuration     prometheus.Histogram
	SlackNotifSent         prometheus.Counter
	SlackNotifFailed       prometheus.Counter
	StartupTimeSeconds     prometheus.Gauge
}
