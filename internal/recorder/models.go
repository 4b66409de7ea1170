package recorder

import (
	"time"

	"github.com/avelins/restaurant-loadgen/internal/entities"
)

type Outcome struct {
	Batch      string    `db:"batch" json:"batch"`
	Method     string    `db:"method" json:"method"`
	Path       string    `db:"path" json:"path"`
	Status     int       `db:"status" json:"status"`
	Body       string    `db:"body" json:"body"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}

func OutcomeFromEntity(o entities.Outcome) Outcome {
	return Outcome{
		Batch:      o.Batch,
		Method:     o.Method,
		Path:       o.Path,
		Status:     o.Status,
		Body:       o.Body,
		DurationMS: o.Duration.Milliseconds(),
		OccurredAt: o.OccurredAt,
	}
}
