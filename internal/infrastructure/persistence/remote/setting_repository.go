package remote

import (
	"context"
	"database/sql"
	"time"

	"github.com/rajcreationz/livesite/internal/infrastructure/security"
)

type SettingRepository struct {
	base
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*string, error) {
	const query = `SELECT setting_value FROM settings WHERE setting_key = ?`
	defer r.track(query, time.Now())

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get setting", "settings", err)
	}
	return &value, nil
}

// Set upserts by key so concurrent saves never leave duplicates.
func (r *SettingRepository) Set(ctx context.Context, key, value, description string) error {
	const query = `INSERT INTO settings (id, setting_key, setting_value, setting_type, description, updated_at) VALUES (?, ?, ?, 'html', ?, ?)
		ON CONFLICT(setting_key) DO UPDATE SET setting_value = excluded.setting_value, description = excluded.description, updated_at = excluded.updated_at`
	defer r.track(query, time.Now())

	_, err := r.db.ExecContext(ctx, query, security.GenerateULID(), key, value, description, formatTime(time.Now()))
	return wrap("save setting", "settings", err)
}

func (r *SettingRepository) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM settings WHERE setting_key = ?`
	defer r.track(query, time.Now())

	_, err := r.db.ExecContext(ctx, query, key)
	return wrap("delete setting", "settings", err)
}
