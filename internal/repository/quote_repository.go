package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/model"
)

// QuoteRepository provides data access methods for the market_quote table.
type QuoteRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewQuoteRepository creates a new QuoteRepository with the provided database connection.
func NewQuoteRepository(db *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// WithTx returns a new QuoteRepository scoped to the provided transaction.
func (r *QuoteRepository) WithTx(tx *sql.Tx) *QuoteRepository {
	return &QuoteRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *QuoteRepository) getQuerier() interface {
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

// SaveQuote stores one quote, replacing any earlier fetch for the same
// symbol, day and source.
func (r *QuoteRepository) SaveQuote(ctx context.Context, quote model.Quote) error {
	result, err := r.getQuerier().ExecContext(ctx, `
		UPDATE market_quote
		SET price = ?, currency = ?
		WHERE symbol = ? AND quoted_on = ? AND source = ?
	`,
		quote.Price.String(),
		quote.Currency,
		quote.Symbol,
		quote.QuotedOn.Format("2006-01-02"),
		quote.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to update market_quote table: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read market_quote update result: %w", err)
	}
	if affected > 0 {
		return nil
	}

	_, err = r.getQuerier().ExecContext(ctx, `
		INSERT INTO market_quote (symbol, quoted_on, price, currency, source)
		VALUES (?, ?, ?, ?, ?)
	`,
		quote.Symbol,
		quote.QuotedOn.Format("2006-01-02"),
		quote.Price.String(),
		quote.Currency,
		quote.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert into market_quote table: %w", err)
	}

	return nil
}

// ListQuotes retrieves recorded quotes for a symbol, newest first.
// Returns ErrQuoteNotFound when the symbol has never been quoted.
func (r *QuoteRepository) ListQuotes(ctx context.Context, symbol string) ([]model.Quote, error) {
	query := `
		SELECT symbol, quoted_on, price, currency, source
		FROM market_quote
		WHERE symbol = ?
		ORDER BY quoted_on DESC, source ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query market_quote table: %w", err)
	}
	defer rows.Close()

	quotes := []model.Quote{}

	for rows.Next() {
		var quote model.Quote
		var quotedOnStr, priceStr string

		err := rows.Scan(
			&quote.Symbol,
			&quotedOnStr,
			&priceStr,
			&quote.Currency,
			&quote.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market_quote table results: %w", err)
		}

		quote.QuotedOn, err = ParseTime(quotedOnStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		quote.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored price: %w", err)
		}

		quotes = append(quotes, quote)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating market_quote table: %w", err)
	}

	if len(quotes) == 0 {
		return nil, apperrors.ErrQuoteNotFound
	}

	return quotes, nil
}
