package port

import (
	"context"

	"github.com/google/uuid"

	"pocketpilot/internal/domain"
)

// TransactionRepository defines the contract for transaction persistence.
// All query methods include userID so one user can never read another's data.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter, offset, limit int) ([]domain.Transaction, int, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// ReceiptRepository defines the contract for receipt persistence.
type ReceiptRepository interface {
	// Create stores the receipt and, when txn is non-nil, its linked expense
	// transaction in one unit of work. Both IDs are assigned on success.
	Create(ctx context.Context, receipt *domain.Receipt, txn *domain.Transaction) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Receipt, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Receipt, int, error)
}
