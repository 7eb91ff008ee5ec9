package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

// TransitionRepository implements wifi.TransitionRepository.
type TransitionRepository struct {
	pool *pgxpool.Pool
}

func NewTransitionRepository(pool *pgxpool.Pool) *TransitionRepository {
	return &TransitionRepository{pool: pool}
}

func (r *TransitionRepository) Append(ctx context.Context, t wifi.Transition) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO controller_transitions (transition_id, from_state, to_state, event, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, string(t.From), string(t.To), t.Event, t.At)
	return err
}

// ListRecent returns the newest transitions first.
func (r *TransitionRepository) ListRecent(ctx context.Context, limit int) ([]wifi.Transition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT transition_id, from_state, to_state, event, occurred_at
		FROM controller_transitions ORDER BY occurred_at DESC, id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (wifi.Transition, error) {
		var t wifi.Transition
		var from, to string
		if err := row.Scan(&t.ID, &from, &to, &t.Event, &t.At); err != nil {
			return t, err
		}
		t.From = wifi.StateID(from)
		t.To = wifi.StateID(to)
		return t, nil
	})
}
