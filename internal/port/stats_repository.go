package port

import (
	"context"

	"github.com/google/uuid"

	"pocketpilot/internal/domain"
)

// StatsRepository provides aggregate queries over a user's transactions.
type StatsRepository interface {
	TypeTotals(ctx context.Context, userID uuid.UUID) ([]domain.TypeTotal, error)
	CategoryTotals(ctx context.Context, userID uuid.UUID) ([]domain.CategoryTotal, error)
	MonthlyTotals(ctx context.Context, userID uuid.UUID) ([]domain.MonthlyTotal, error)
}
