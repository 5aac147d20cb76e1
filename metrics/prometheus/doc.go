// Package prometheus exports go-hashgate client metrics through
// prometheus/client_golang collectors.
//
// Wire it with core.WithMetricsRecorder(prometheus.NewRecorder(registry)).
package prometheus
