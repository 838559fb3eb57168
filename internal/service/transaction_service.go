package service

import (
	"context"

	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/repository"
)

// TransactionService exposes read access to the imported transaction store.
// Writes happen only through import runs.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(transactionRepo *repository.TransactionRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
	}
}

// ListTransactions returns stored records, newest occurrence first. limit > 0
// caps the result.
func (s *TransactionService) ListTransactions(ctx context.Context, limit int) ([]model.TransactionRecordResponse, error) {
	records, err := s.transactionRepo.ListRecords(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]model.TransactionRecordResponse, len(records))
	for i, record := range records {
		responses[i] = record.ToResponse()
	}
	return responses, nil
}

// GetTransaction returns one record by its natural key.
func (s *TransactionService) GetTransaction(ctx context.Context, naturalKey string) (model.TransactionRecordResponse, error) {
	record, err := s.transactionRepo.GetRecord(ctx, naturalKey)
	if err != nil {
		return model.TransactionRecordResponse{}, err
	}
	return record.ToResponse(), nil
}

// Currencies returns the distinct currency codes present in the store.
func (s *TransactionService) Currencies(ctx context.Context) ([]string, error) {
	return s.transactionRepo.CurrencyCodes(ctx)
}
