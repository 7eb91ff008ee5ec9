package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

// PasspointRepository implements provisioning.ConfigRepository. A
// configuration is keyed by its FQDN; re-provisioning replaces it.
type PasspointRepository struct {
	pool *pgxpool.Pool
}

func NewPasspointRepository(pool *pgxpool.Pool) *PasspointRepository {
	return &PasspointRepository{pool: pool}
}

func (r *PasspointRepository) AddOrUpdate(ctx context.Context, uid int, cfg *provisioning.PasspointConfig) error {
	body, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO passpoint_configs (fqdn, uid, friendly_name, config, ca_certificates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (fqdn) DO UPDATE SET
			uid = EXCLUDED.uid,
			friendly_name = EXCLUDED.friendly_name,
			config = EXCLUDED.config,
			ca_certificates = EXCLUDED.ca_certificates,
			updated_at = now()
	`, cfg.FQDN, uid, cfg.FriendlyName, body, cfg.CACertificates)
	return err
}

func (r *PasspointRepository) List(ctx context.Context) ([]*provisioning.PasspointConfig, error) {
	rows, err := r.pool.Query(ctx, `SELECT config, ca_certificates FROM passpoint_configs ORDER BY fqdn`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanPasspoint)
}

func scanPasspoint(row pgx.CollectableRow) (*provisioning.PasspointConfig, error) {
	var body []byte
	var certs [][]byte
	if err := row.Scan(&body, &certs); err != nil {
		return nil, err
	}
	var cfg provisioning.PasspointConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, err
	}
	cfg.CACertificates = certs
	return &cfg, nil
}
