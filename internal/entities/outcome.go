package entities

import "time"

// Outcome describes one completed request round trip. The client fills
// the transport fields, the scenario attaches the batch name.
type Outcome struct {
	Batch      string
	Method     string
	Path       string
	Status     int
	Body       string
	Duration   time.Duration
	OccurredAt time.Time
}

func (o Outcome) Success() bool {
	return o.Status >= 200 && o.Status < 300
}
