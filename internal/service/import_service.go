package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/config"
	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/normalize"
	"github.com/finance-dash/backend/internal/repository"
	"github.com/finance-dash/backend/internal/workbook"
)

// ImportService drives workbook import runs: it reads configured sheets,
// normalizes their rows and upserts the results keyed by natural key, so
// re-running an import never duplicates records.
//
// At most one run executes at a time; concurrent calls fail fast with
// ErrImportInProgress instead of queueing.
type ImportService struct {
	mu sync.Mutex

	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	reader          workbook.Reader
	normalizer      *normalize.Normalizer
	sheets          []config.SheetConfig

	now func() time.Time
}

// NewImportService creates a new ImportService over the configured sheets.
func NewImportService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	reader workbook.Reader,
	normalizer *normalize.Normalizer,
	sheets []config.SheetConfig,
) *ImportService {
	return &ImportService{
		db:              db,
		transactionRepo: transactionRepo,
		reader:          reader,
		normalizer:      normalizer,
		sheets:          sheets,
		now:             time.Now,
	}
}

// Run executes one import over the named sheets, or over all configured
// sheets when names is empty. Each sheet is written in its own transaction:
// a sheet that cannot be read or stored rolls back completely while sheets
// already committed stay committed. Row-level parse failures do not abort
// the run; they are collected in the result.
func (s *ImportService) Run(ctx context.Context, sheetNames []string) (model.ImportResult, error) {
	if !s.mu.TryLock() {
		return model.ImportResult{}, apperrors.ErrImportInProgress
	}
	defer s.mu.Unlock()

	sheets, err := s.selectSheets(sheetNames)
	if err != nil {
		return model.ImportResult{}, err
	}

	result := model.ImportResult{
		RowsFailed: []model.RowFailure{},
		StartedAt:  s.now().UTC(),
	}

	for _, sheet := range sheets {
		if err := s.importSheet(ctx, sheet, &result); err != nil {
			return model.ImportResult{}, err
		}
		result.SheetsProcessed++
	}

	result.FinishedAt = s.now().UTC()
	return result, nil
}

// selectSheets resolves requested sheet names against the configuration,
// preserving request order. Empty input means every configured sheet.
func (s *ImportService) selectSheets(names []string) ([]config.SheetConfig, error) {
	if len(names) == 0 {
		return s.sheets, nil
	}

	configured := make(map[string]config.SheetConfig, len(s.sheets))
	for _, sheet := range s.sheets {
		configured[sheet.Name] = sheet
	}

	sheets := make([]config.SheetConfig, 0, len(names))
	for _, name := range names {
		sheet, ok := configured[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrSheetNotConfigured, name)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// importSheet reads, normalizes and stores one sheet inside a single
// transaction, tallying outcomes into result.
func (s *ImportService) importSheet(ctx context.Context, sheet config.SheetConfig, result *model.ImportResult) error {
	rows, err := s.reader.Rows(sheet.Name)
	if err != nil {
		return &apperrors.SheetReadError{Sheet: sheet.Name, Reason: err.Error()}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for sheet %q: %w", sheet.Name, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	repo := s.transactionRepo.WithTx(tx)
	importedAt := s.now().UTC().Truncate(time.Second)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		if normalize.IsBlankRow(row) {
			continue
		}

		fields, err := s.normalizer.NormalizeRow(sheet, row)
		if err != nil {
			var parseErr *normalize.ParseError
			if !errors.As(err, &parseErr) {
				return err
			}
			result.RowsFailed = append(result.RowsFailed, model.RowFailure{
				Sheet:  parseErr.Sheet,
				Row:    parseErr.Row,
				Column: parseErr.Column,
				Reason: parseErr.Reason,
			})
			continue
		}

		record := normalize.BuildRecord(sheet, row, fields, importedAt)
		outcome, err := repo.Upsert(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to store row %d of sheet %q: %w", row.Position, sheet.Name, err)
		}

		result.RowsSucceeded++
		switch outcome {
		case repository.UpsertInserted:
			result.RecordsInserted++
		case repository.UpsertUpdated:
			result.RecordsUpdated++
		case repository.UpsertUnchanged:
			result.RecordsUnchanged++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sheet %q: %w", sheet.Name, err)
	}
	return nil
}
