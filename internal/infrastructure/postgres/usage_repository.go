package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

// UsageRepository implements lock.BatteryStats on the wifi_lock_usage table.
// One row is written per attributed uid.
type UsageRepository struct {
	pool *pgxpool.Pool
}

func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

func (r *UsageRepository) NoteLockAcquiredFromSource(ctx context.Context, ws lock.WorkSource, tag string, mode lock.Mode) error {
	return r.note(ctx, ws, tag, mode, "ACQUIRED")
}

func (r *UsageRepository) NoteLockReleasedFromSource(ctx context.Context, ws lock.WorkSource, tag string, mode lock.Mode) error {
	return r.note(ctx, ws, tag, mode, "RELEASED")
}

func (r *UsageRepository) note(ctx context.Context, ws lock.WorkSource, tag string, mode lock.Mode, what string) error {
	if ws.IsEmpty() {
		return nil
	}
	batch := &pgx.Batch{}
	const q = `INSERT INTO wifi_lock_usage (uid, tag, mode, event, chained) VALUES ($1, $2, $3, $4, $5)`
	for _, uid := range ws.UIDs {
		batch.Queue(q, uid, tag, mode.String(), what, false)
	}
	for _, c := range ws.Chains {
		if uid := c.AttributionUID(); uid >= 0 {
			batch.Queue(q, uid, tag, mode.String(), what, true)
		}
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("record lock %s: %w", what, err)
	}
	return nil
}

// UsageSummary is the number of acquisitions per uid and mode.
type UsageSummary struct {
	UID      int    `json:"uid"`
	Mode     string `json:"mode"`
	Acquired int    `json:"acquired"`
	Released int    `json:"released"`
}

// Summarize aggregates the usage table.
func (r *UsageRepository) Summarize(ctx context.Context) ([]UsageSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT uid, mode,
		       count(*) FILTER (WHERE event = 'ACQUIRED'),
		       count(*) FILTER (WHERE event = 'RELEASED')
		FROM wifi_lock_usage GROUP BY uid, mode ORDER BY uid, mode
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (UsageSummary, error) {
		var s UsageSummary
		err := row.Scan(&s.UID, &s.Mode, &s.Acquired, &s.Released)
		return s, err
	})
}
