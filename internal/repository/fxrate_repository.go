package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/model"
)

// FxRateRepository provides data access methods for the fx_rate table.
// The table holds the latest rate per currency pair; refreshes overwrite.
type FxRateRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewFxRateRepository creates a new FxRateRepository with the provided database connection.
func NewFxRateRepository(db *sql.DB) *FxRateRepository {
	return &FxRateRepository{db: db}
}

// WithTx returns a new FxRateRepository scoped to the provided transaction.
func (r *FxRateRepository) WithTx(tx *sql.Tx) *FxRateRepository {
	return &FxRateRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *FxRateRepository) getQuerier() interface {
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

// UpsertRate stores the latest rate for a pair, replacing any previous one.
func (r *FxRateRepository) UpsertRate(ctx context.Context, rate model.FxRate) error {
	result, err := r.getQuerier().ExecContext(ctx, `
		UPDATE fx_rate
		SET rate = ?, fetched_at = ?, source = ?
		WHERE base = ? AND quote = ?
	`,
		rate.Rate.String(),
		rate.FetchedAt.UTC().Format(time.RFC3339),
		rate.Source,
		rate.Base,
		rate.Quote,
	)
	if err != nil {
		return fmt.Errorf("failed to update fx_rate table: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read fx_rate update result: %w", err)
	}
	if affected > 0 {
		return nil
	}

	_, err = r.getQuerier().ExecContext(ctx, `
		INSERT INTO fx_rate (base, quote, rate, fetched_at, source)
		VALUES (?, ?, ?, ?, ?)
	`,
		rate.Base,
		rate.Quote,
		rate.Rate.String(),
		rate.FetchedAt.UTC().Format(time.RFC3339),
		rate.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert into fx_rate table: %w", err)
	}

	return nil
}

// GetRate retrieves the stored rate for a pair.
// Returns ErrFxRateNotFound if the pair has never been fetched.
func (r *FxRateRepository) GetRate(ctx context.Context, base, quote string) (model.FxRate, error) {
	query := `
		SELECT base, quote, rate, fetched_at, source
		FROM fx_rate
		WHERE base = ? AND quote = ?
	`

	rate, err := scanRate(r.getQuerier().QueryRowContext(ctx, query, base, quote))
	if errors.Is(err, sql.ErrNoRows) {
		return model.FxRate{}, apperrors.ErrFxRateNotFound
	}
	if err != nil {
		return model.FxRate{}, err
	}

	return rate, nil
}

// ListRates retrieves all stored rates sorted by pair.
func (r *FxRateRepository) ListRates(ctx context.Context) ([]model.FxRate, error) {
	query := `
		SELECT base, quote, rate, fetched_at, source
		FROM fx_rate
		ORDER BY base ASC, quote ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fx_rate table: %w", err)
	}
	defer rows.Close()

	rates := []model.FxRate{}

	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fx_rate table: %w", err)
	}

	return rates, nil
}

func scanRate(row scanner) (model.FxRate, error) {
	var rate model.FxRate
	var rateStr, fetchedAtStr string

	err := row.Scan(
		&rate.Base,
		&rate.Quote,
		&rateStr,
		&fetchedAtStr,
		&rate.Source,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.FxRate{}, err
		}
		return model.FxRate{}, fmt.Errorf("failed to scan fx_rate table results: %w", err)
	}

	rate.Rate, err = decimal.NewFromString(rateStr)
	if err != nil {
		return model.FxRate{}, fmt.Errorf("failed to parse stored rate: %w", err)
	}

	rate.FetchedAt, err = ParseTime(fetchedAtStr)
	if err != nil {
		return model.FxRate{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return rate, nil
}
