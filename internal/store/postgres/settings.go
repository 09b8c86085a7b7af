package postgres

import (
	"context"
)

// LoadProviderSettings returns the raw (possibly sealed) settings of a provider
func (r *Repo) LoadProviderSettings(ctx context.Context, alias string) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value FROM payment_provider_settings WHERE provider=$1`, alias)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *Repo) SaveProviderSetting(ctx context.Context, alias, key, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_provider_settings (provider, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, key) DO UPDATE
		  SET value      = EXCLUDED.value,
		      updated_at = now()
	`, alias, key, value)
	return err
}
