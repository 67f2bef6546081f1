package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/port"
)

type transactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new PostgreSQL-backed TransactionRepository.
func NewTransactionRepo(db *sqlx.DB) port.TransactionRepository {
	return &transactionRepo{db: db}
}

const insertTransactionQuery = `INSERT INTO transactions (
	id, user_id, type, amount, category, txn_date, notes, source, receipt_id, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func insertTransaction(ctx context.Context, exec sqlx.ExecerContext, txn *domain.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.CreatedAt = time.Now().UTC()
	_, err := exec.ExecContext(ctx, insertTransactionQuery,
		txn.ID, txn.UserID, txn.Type, txn.Amount, txn.Category, txn.Date,
		txn.Notes, txn.Source, txn.ReceiptID, txn.CreatedAt)
	return err
}

func (r *transactionRepo) Create(ctx context.Context, txn *domain.Transaction) error {
	if err := insertTransaction(ctx, r.db, txn); err != nil {
		return fmt.Errorf("transactionRepo.Create: %w", err)
	}
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := r.db.GetContext(ctx, &txn,
		"SELECT * FROM transactions WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("transactionRepo.GetByID: %w", err)
	}
	return &txn, nil
}

// filterClause renders the WHERE clause for a listing. Placeholders start at $1
// with the user ID; the returned args match them in order.
func filterClause(userID uuid.UUID, filter domain.TransactionFilter) (string, []interface{}) {
	conds := []string{"user_id = $1"}
	args := []interface{}{userID}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Category != "" {
		add("LOWER(category) = LOWER($%d)", filter.Category)
	}
	if filter.From != nil {
		add("txn_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("txn_date <= $%d", *filter.To)
	}
	return strings.Join(conds, " AND "), args
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter, offset, limit int) ([]domain.Transaction, int, error) {
	where, args := filterClause(userID, filter)

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM transactions WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.ListByUser count: %w", err)
	}

	query := fmt.Sprintf(`SELECT * FROM transactions WHERE %s
		ORDER BY txn_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	var txns []domain.Transaction
	if err := r.db.SelectContext(ctx, &txns, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("transactionRepo.ListByUser: %w", err)
	}
	return txns, total, nil
}

func (r *transactionRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("transactionRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
