package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) TypeTotals(ctx context.Context, userID uuid.UUID) ([]domain.TypeTotal, error) {
	var totals []domain.TypeTotal
	if err := r.db.SelectContext(ctx, &totals,
		`SELECT type, COALESCE(SUM(amount), 0) AS total
		 FROM transactions WHERE user_id = $1
		 GROUP BY type`, userID); err != nil {
		return nil, fmt.Errorf("statsRepo.TypeTotals: %w", err)
	}
	return totals, nil
}

func (r *statsRepo) CategoryTotals(ctx context.Context, userID uuid.UUID) ([]domain.CategoryTotal, error) {
	var totals []domain.CategoryTotal
	if err := r.db.SelectContext(ctx, &totals,
		`SELECT category, SUM(amount) AS total
		 FROM transactions WHERE user_id = $1 AND type = $2
		 GROUP BY category
		 ORDER BY total DESC, category`, userID, domain.TransactionTypeExpense); err != nil {
		return nil, fmt.Errorf("statsRepo.CategoryTotals: %w", err)
	}
	return totals, nil
}

func (r *statsRepo) MonthlyTotals(ctx context.Context, userID uuid.UUID) ([]domain.MonthlyTotal, error) {
	var totals []domain.MonthlyTotal
	if err := r.db.SelectContext(ctx, &totals,
		`SELECT to_char(txn_date, 'YYYY-MM') AS month, SUM(amount) AS total
		 FROM transactions WHERE user_id = $1 AND type = $2
		 GROUP BY month
		 ORDER BY month`, userID, domain.TransactionTypeExpense); err != nil {
		return nil, fmt.Errorf("statsRepo.MonthlyTotals: %w", err)
	}
	return totals, nil
}
