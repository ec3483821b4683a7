package dashboard

import "time"

// Stats summarizes the classification attempts made by this process. It is
// kept in memory only.
type Stats struct {
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	FailedRequests     int64   `json:"failed_requests"`
	DiscardedResponses int64   `json:"discarded_responses"`
	SuccessRate        float64 `json:"success_rate"`
	AverageLatencyMs   float64 `json:"average_latency_ms"`
}

type counters struct {
	total     int64
	success   int64
	discarded int64
	latency   time.Duration
}

func (c *counters) record(success bool, elapsed time.Duration) {
	c.total++
	if success {
		c.success++
	}
	c.latency += elapsed
}

// Stats returns the aggregated counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary := Stats{
		TotalRequests:      c.stats.total,
		SuccessfulRequests: c.stats.success,
		FailedRequests:     c.stats.total - c.stats.success,
		DiscardedResponses: c.stats.discarded,
	}
	if c.stats.total > 0 {
		summary.SuccessRate = float64(c.stats.success) / float64(c.stats.total)
		summary.AverageLatencyMs = float64(c.stats.latency.Milliseconds()) / float64(c.stats.total)
	}
	return summary
}
