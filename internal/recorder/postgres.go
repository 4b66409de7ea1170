package recorder

import (
	"context"
	"fmt"

	"github.com/avelins/restaurant-loadgen/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type postgresRecorder struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRecorder(db *sqlx.DB) *postgresRecorder {
	return &postgresRecorder{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *postgresRecorder) Record(ctx context.Context, o entities.Outcome) error {
	row := OutcomeFromEntity(o)

	query, args := r.qb.Insert("request_outcomes").
		Columns("batch", "method", "path", "status", "body", "duration_ms", "occurred_at").
		Values(row.Batch, row.Method, row.Path, row.Status, row.Body, row.DurationMS, row.OccurredAt).
		MustSql()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

func (r *postgresRecorder) Close() error {
	return r.db.Close()
}
