package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/port"
)

// DateLayout is the wire format for transaction dates.
const DateLayout = "2006-01-02"

const exportPageSize = 500

// CreateTransactionInput is the DTO for manual transaction entry.
type CreateTransactionInput struct {
	UserID   uuid.UUID                `json:"-"`
	Type     domain.TransactionType   `json:"type" binding:"required"`
	Amount   decimal.Decimal          `json:"amount"`
	Category string                   `json:"category"`
	Date     string                   `json:"date"`
	Notes    string                   `json:"notes"`
	Source   domain.TransactionSource `json:"source"`
}

// TransactionService defines the transaction management contract.
type TransactionService interface {
	Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter, offset, limit int) ([]domain.Transaction, int, error)
	ListAll(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) ([]domain.Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type transactionService struct {
	txnRepo port.TransactionRepository
}

// NewTransactionService creates a new TransactionService implementation.
func NewTransactionService(txnRepo port.TransactionRepository) TransactionService {
	return &transactionService{txnRepo: txnRepo}
}

func (s *transactionService) Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if !input.Type.Valid() {
		return nil, domain.ErrInvalidTransactionType
	}
	source := input.Source
	if source == "" {
		source = domain.TransactionSourceManual
	}
	if !source.Valid() {
		return nil, domain.ErrInvalidTransactionSource
	}
	// Stored as NUMERIC(14,2); a value that rounds to zero would fail the CHECK.
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	date, err := ParseDate(input.Date)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	txn := &domain.Transaction{
		ID:       uuid.New(),
		UserID:   input.UserID,
		Type:     input.Type,
		Amount:   amount,
		Category: category,
		Date:     date,
		Notes:    strings.TrimSpace(input.Notes),
		Source:   source,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		log.Printf("transactionService.Create: failed for user %s: %v", input.UserID, err)
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	return txn, nil
}

func (s *transactionService) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	return s.txnRepo.GetByID(ctx, userID, id)
}

func (s *transactionService) List(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter, offset, limit int) ([]domain.Transaction, int, error) {
	return s.txnRepo.ListByUser(ctx, userID, filter, offset, limit)
}

// ListAll pages through every matching transaction, for exports.
func (s *transactionService) ListAll(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var all []domain.Transaction
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.txnRepo.ListByUser(ctx, userID, filter, offset, exportPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize || len(all) >= total {
			return all, nil
		}
	}
}

func (s *transactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.txnRepo.Delete(ctx, userID, id)
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domain.ErrMissingDate
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return t, nil
}
