package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/model"
)

// SettingRepository provides data access methods for the setting table.
type SettingRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSettingRepository creates a new SettingRepository with the provided database connection.
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// WithTx returns a new SettingRepository scoped to the provided transaction.
func (r *SettingRepository) WithTx(tx *sql.Tx) *SettingRepository {
	return &SettingRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *SettingRepository) getQuerier() interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetSetting retrieves a setting by key.
// Returns ErrSettingNotFound if the key has no stored value.
func (r *SettingRepository) GetSetting(ctx context.Context, key string) (model.Setting, error) {
	query := `
		SELECT "key", value, updated_at
		FROM setting
		WHERE "key" = ?
	`

	var setting model.Setting
	var updatedAtStr string

	err := r.getQuerier().QueryRowContext(ctx, query, key).Scan(
		&setting.Key,
		&setting.Value,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Setting{}, apperrors.ErrSettingNotFound
	}
	if err != nil {
		return model.Setting{}, fmt.Errorf("failed to scan setting table results: %w", err)
	}

	setting.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.Setting{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return setting, nil
}

// SetSetting stores a value under a key, creating or replacing it.
func (r *SettingRepository) SetSetting(ctx context.Context, key, value string) (model.Setting, error) {
	setting := model.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}

	result, err := r.getQuerier().ExecContext(ctx, `
		UPDATE setting
		SET value = ?, updated_at = ?
		WHERE "key" = ?
	`,
		setting.Value,
		setting.UpdatedAt.Format(time.RFC3339),
		setting.Key,
	)
	if err != nil {
		return model.Setting{}, fmt.Errorf("failed to update setting table: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return model.Setting{}, fmt.Errorf("failed to read setting update result: %w", err)
	}
	if affected > 0 {
		return setting, nil
	}

	_, err = r.getQuerier().ExecContext(ctx, `
		INSERT INTO setting ("key", value, updated_at)
		VALUES (?, ?, ?)
	`,
		setting.Key,
		setting.Value,
		setting.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return model.Setting{}, fmt.Errorf("failed to insert into setting table: %w", err)
	}

	return setting, nil
}
