package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/model"
)

// RecordBuilder provides a fluent interface for creating stored transaction
// records.
//
// Example usage:
//
//	// Simple creation with defaults
//	record := testutil.NewRecord().Build(t, db)
//
//	// Customized record
//	record := testutil.NewRecord().
//	    WithAmount("-42.50").
//	    WithCurrency("EUR").
//	    WithOccurredOn(time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)).
//	    Build(t, db)
type RecordBuilder struct {
	NaturalKey  string
	OccurredOn  time.Time
	Description string
	Amount      decimal.Decimal
	Currency    string
	SourceSheet string
	TxnNumber   string
	Balance     *decimal.Decimal
	ImportedAt  time.Time
}

// NewRecord creates a RecordBuilder with sensible defaults.
func NewRecord() *RecordBuilder {
	return &RecordBuilder{
		NaturalKey:  MakeID(),
		OccurredOn:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Test movement",
		Amount:      decimal.RequireFromString("100.00"),
		Currency:    "CHF",
		SourceSheet: "stocks_transac",
		ImportedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

// WithNaturalKey sets a custom natural key.
func (b *RecordBuilder) WithNaturalKey(key string) *RecordBuilder {
	b.NaturalKey = key
	return b
}

// WithOccurredOn sets the movement date.
func (b *RecordBuilder) WithOccurredOn(date time.Time) *RecordBuilder {
	b.OccurredOn = date
	return b
}

// WithDescription sets the description.
func (b *RecordBuilder) WithDescription(description string) *RecordBuilder {
	b.Description = description
	return b
}

// WithAmount sets the amount from its exact decimal string.
func (b *RecordBuilder) WithAmount(amount string) *RecordBuilder {
	b.Amount = decimal.RequireFromString(amount)
	return b
}

// WithCurrency sets the currency code.
func (b *RecordBuilder) WithCurrency(currency string) *RecordBuilder {
	b.Currency = currency
	return b
}

// WithSourceSheet sets the originating sheet name.
func (b *RecordBuilder) WithSourceSheet(sheet string) *RecordBuilder {
	b.SourceSheet = sheet
	return b
}

// WithTxnNumber sets the bank transaction number.
func (b *RecordBuilder) WithTxnNumber(number string) *RecordBuilder {
	b.TxnNumber = number
	return b
}

// WithBalance sets the post-movement balance from its decimal string.
func (b *RecordBuilder) WithBalance(balance string) *RecordBuilder {
	value := decimal.RequireFromString(balance)
	b.Balance = &value
	return b
}

// Build creates the record in the database and returns it.
func (b *RecordBuilder) Build(t *testing.T, db *sql.DB) model.TransactionRecord {
	t.Helper()

	query := `
		INSERT INTO bank_transaction (natural_key, occurred_on, description, amount,
		                              currency, source_sheet, txn_number, balance, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var balance any
	if b.Balance != nil {
		balance = b.Balance.String()
	}

	_, err := db.Exec(query,
		b.NaturalKey,
		b.OccurredOn.Format("2006-01-02"),
		b.Description,
		b.Amount.String(),
		b.Currency,
		b.SourceSheet,
		b.TxnNumber,
		balance,
		b.ImportedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test record: %v", err)
	}

	return model.TransactionRecord{
		NaturalKey:  b.NaturalKey,
		OccurredOn:  b.OccurredOn,
		Description: b.Description,
		Amount:      b.Amount,
		Currency:    b.Currency,
		SourceSheet: b.SourceSheet,
		TxnNumber:   b.TxnNumber,
		Balance:     b.Balance,
		ImportedAt:  b.ImportedAt,
	}
}

// Convenience functions

// CreateRecord creates a record with the given amount and currency.
//
// Example usage:
//
//	record := testutil.CreateRecord(t, db, "250.00", "CHF")
func CreateRecord(t *testing.T, db *sql.DB, amount, currency string) model.TransactionRecord {
	t.Helper()
	return NewRecord().WithAmount(amount).WithCurrency(currency).Build(t, db)
}

// CreateRecords creates multiple records with unique keys in one currency.
func CreateRecords(t *testing.T, db *sql.DB, count int, currency string) []model.TransactionRecord {
	t.Helper()

	records := make([]model.TransactionRecord, count)
	for i := 0; i < count; i++ {
		records[i] = NewRecord().WithCurrency(currency).Build(t, db)
	}
	return records
}

// FxRateBuilder provides a fluent interface for creating cached exchange
// rates.
//
// Example usage:
//
//	rate := testutil.NewFxRate("USD", "CHF").
//	    WithRate("0.91").
//	    FetchedAgo(48 * time.Hour).
//	    Build(t, db)
type FxRateBuilder struct {
	Base      string
	Quote     string
	Rate      decimal.Decimal
	FetchedAt time.Time
	Source    string
}

// NewFxRate creates an FxRateBuilder for the given pair.
func NewFxRate(base, quote string) *FxRateBuilder {
	return &FxRateBuilder{
		Base:      base,
		Quote:     quote,
		Rate:      decimal.RequireFromString("1.1"),
		FetchedAt: time.Now().UTC().Truncate(time.Second),
		Source:    "alphavantage",
	}
}

// WithRate sets the rate from its decimal string.
func (b *FxRateBuilder) WithRate(rate string) *FxRateBuilder {
	b.Rate = decimal.RequireFromString(rate)
	return b
}

// FetchedAgo backdates the fetch timestamp by the given duration.
func (b *FxRateBuilder) FetchedAgo(age time.Duration) *FxRateBuilder {
	b.FetchedAt = time.Now().UTC().Add(-age).Truncate(time.Second)
	return b
}

// WithFetchedAt sets the fetch timestamp.
func (b *FxRateBuilder) WithFetchedAt(fetchedAt time.Time) *FxRateBuilder {
	b.FetchedAt = fetchedAt
	return b
}

// Build creates the rate in the database and returns it.
func (b *FxRateBuilder) Build(t *testing.T, db *sql.DB) model.FxRate {
	t.Helper()

	query := `
		INSERT INTO fx_rate (base, quote, rate, fetched_at, source)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.Base, b.Quote, b.Rate.String(), b.FetchedAt.UTC().Format(time.RFC3339), b.Source)
	if err != nil {
		t.Fatalf("Failed to create test fx rate: %v", err)
	}

	return model.FxRate{
		Base:      b.Base,
		Quote:     b.Quote,
		Rate:      b.Rate,
		FetchedAt: b.FetchedAt,
		Source:    b.Source,
	}
}

// QuoteBuilder provides a fluent interface for creating recorded market
// quotes.
type QuoteBuilder struct {
	Symbol   string
	QuotedOn time.Time
	Price    decimal.Decimal
	Currency string
	Source   string
}

// NewQuote creates a QuoteBuilder with sensible defaults.
func NewQuote(symbol string) *QuoteBuilder {
	return &QuoteBuilder{
		Symbol:   symbol,
		QuotedOn: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Price:    decimal.RequireFromString("123.45"),
		Currency: "USD",
		Source:   "alphavantage",
	}
}

// WithQuotedOn sets the quote date.
func (b *QuoteBuilder) WithQuotedOn(date time.Time) *QuoteBuilder {
	b.QuotedOn = date
	return b
}

// WithPrice sets the price from its decimal string.
func (b *QuoteBuilder) WithPrice(price string) *QuoteBuilder {
	b.Price = decimal.RequireFromString(price)
	return b
}

// WithSource sets the providing source.
func (b *QuoteBuilder) WithSource(source string) *QuoteBuilder {
	b.Source = source
	return b
}

// Build creates the quote in the database and returns it.
func (b *QuoteBuilder) Build(t *testing.T, db *sql.DB) model.Quote {
	t.Helper()

	query := `
		INSERT INTO market_quote (symbol, quoted_on, price, currency, source)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.Symbol, b.QuotedOn.Format("2006-01-02"), b.Price.String(), b.Currency, b.Source)
	if err != nil {
		t.Fatalf("Failed to create test quote: %v", err)
	}

	return model.Quote{
		Symbol:   b.Symbol,
		QuotedOn: b.QuotedOn,
		Price:    b.Price,
		Currency: b.Currency,
		Source:   b.Source,
	}
}

// CreateSetting stores a setting value directly.
//
// Example usage:
//
//	testutil.CreateSetting(t, db, "display_currency", "EUR")
func CreateSetting(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()

	query := `INSERT INTO setting ("key", value, updated_at) VALUES (?, ?, ?)`
	if _, err := db.Exec(query, key, value, time.Now().UTC().Format(time.RFC3339)); err != nil {
		t.Fatalf("Failed to create test setting: %v", err)
	}
}
