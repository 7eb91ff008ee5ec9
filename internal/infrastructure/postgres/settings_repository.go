package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/execution-hub/wifictl/internal/domain/settings"
)

const settingsChannel = "settings_changed"

// SettingsRepository implements settings.Repository. Changes are announced
// by a trigger on the settings table.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func (r *SettingsRepository) GetAll(ctx context.Context) (map[settings.Key]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	out := make(map[settings.Key]string)
	var key, value string
	_, err = pgx.ForEachRow(rows, []any{&key, &value}, func() error {
		out[settings.Key(key)] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key settings.Key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		WHERE settings.value IS DISTINCT FROM EXCLUDED.value
	`, string(key), value)
	return err
}

// Listen holds a dedicated connection on the settings channel until ctx is done.
func (r *SettingsRepository) Listen(ctx context.Context, fn func(key settings.Key)) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+settingsChannel); err != nil {
		return fmt.Errorf("listen %s: %w", settingsChannel, err)
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		fn(settings.Key(n.Payload))
	}
}
