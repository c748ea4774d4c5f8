package integration

import "time"

// Outcome labels recorded by SyncMetrics
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDropped = "dropped"
	OutcomeSkipped = "skipped"
)

// SyncMetrics receives connector counters. The infrastructure layer backs it
// with Prometheus; services default to a no-op.
type SyncMetrics interface {
	WebhookReceived(topic, outcome string)
	QueueLineProcessed(kind, outcome string)
	AutomationStep(step, outcome string)
	UpsertDuration(kind string, d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) WebhookReceived(string, string) {}
func (nopMetrics) QueueLineProcessed(string, string) {}
func (nopMetrics) AutomationStep(string, string) {}
func (nopMetrics) UpsertDuration(string, time.Duration) {}

// NopMetrics returns a SyncMetrics that records nothing
func NopMetrics() SyncMetrics {
	return nopMetrics{}
}

func metricsOrNop(m SyncMetrics) SyncMetrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
