package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/port"
)

type receiptRepo struct {
	db *sqlx.DB
}

// NewReceiptRepo creates a new PostgreSQL-backed ReceiptRepository.
func NewReceiptRepo(db *sqlx.DB) port.ReceiptRepository {
	return &receiptRepo{db: db}
}

// Create inserts the receipt, then the linked transaction, then points the
// receipt back at it. Everything runs in one database transaction.
func (r *receiptRepo) Create(ctx context.Context, receipt *domain.Receipt, txn *domain.Transaction) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("receiptRepo.Create begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	receipt.UploadedAt = time.Now().UTC()
	receipt.TransactionID = nil

	_, err = tx.ExecContext(ctx, `INSERT INTO receipts (
		id, user_id, original_name, content_type, file_size, s3_bucket, s3_key,
		provider, amount, receipt_date, date_defaulted, merchant, category,
		line_items, missing_fields, confidence, is_valid, uploaded_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17, $18
	)`,
		receipt.ID, receipt.UserID, receipt.OriginalName, receipt.ContentType, receipt.FileSize, receipt.S3Bucket, receipt.S3Key,
		receipt.Provider, receipt.Amount, receipt.ReceiptDate, receipt.DateDefaulted, receipt.Merchant, receipt.Category,
		receipt.LineItems, receipt.MissingFields, receipt.Confidence, receipt.IsValid, receipt.UploadedAt)
	if err != nil {
		return fmt.Errorf("receiptRepo.Create receipt: %w", err)
	}

	if txn == nil {
		if err = tx.Commit(); err != nil {
			return fmt.Errorf("receiptRepo.Create commit: %w", err)
		}
		return nil
	}

	txn.ReceiptID = &receipt.ID
	if err = insertTransaction(ctx, tx, txn); err != nil {
		return fmt.Errorf("receiptRepo.Create transaction: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE receipts SET transaction_id = $1 WHERE id = $2", txn.ID, receipt.ID); err != nil {
		return fmt.Errorf("receiptRepo.Create link: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("receiptRepo.Create commit: %w", err)
	}
	receipt.TransactionID = &txn.ID
	return nil
}

func (r *receiptRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := r.db.GetContext(ctx, &receipt,
		"SELECT * FROM receipts WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("receiptRepo.GetByID: %w", err)
	}
	return &receipt, nil
}

func (r *receiptRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Receipt, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM receipts WHERE user_id = $1", userID); err != nil {
		return nil, 0, fmt.Errorf("receiptRepo.ListByUser count: %w", err)
	}

	var receipts []domain.Receipt
	if err := r.db.SelectContext(ctx, &receipts,
		`SELECT * FROM receipts WHERE user_id = $1
		 ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("receiptRepo.ListByUser: %w", err)
	}
	return receipts, total, nil
}
