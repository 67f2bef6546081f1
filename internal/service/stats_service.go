package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/port"
)

// StatsService provides aggregate statistics over a user's transactions.
type StatsService interface {
	Summary(ctx context.Context, userID uuid.UUID) (*domain.StatsSummary, error)
}

type statsService struct {
	statsRepo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) Summary(ctx context.Context, userID uuid.UUID) (*domain.StatsSummary, error) {
	typeTotals, err := s.statsRepo.TypeTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading type totals: %w", err)
	}
	categoryTotals, err := s.statsRepo.CategoryTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading category totals: %w", err)
	}
	monthlyTotals, err := s.statsRepo.MonthlyTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading monthly totals: %w", err)
	}

	summary := &domain.StatsSummary{
		TotalIncome:          decimal.Zero,
		TotalExpenses:        decimal.Zero,
		CategoryTotals:       categoryTotals,
		MonthlyTotals:        monthlyTotals,
		MonthOverMonthChange: monthOverMonth(monthlyTotals),
	}
	for _, t := range typeTotals {
		switch t.Type {
		case domain.TransactionTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(t.Total)
		case domain.TransactionTypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(t.Total)
		}
	}
	summary.NetBalance = summary.TotalIncome.Sub(summary.TotalExpenses)
	if summary.CategoryTotals == nil {
		summary.CategoryTotals = []domain.CategoryTotal{}
	}
	if summary.MonthlyTotals == nil {
		summary.MonthlyTotals = []domain.MonthlyTotal{}
	}
	return summary, nil
}

// monthOverMonth is the percent change from the second-to-last month to the
// last one. Zero when there is no previous month or it had no spending.
func monthOverMonth(months []domain.MonthlyTotal) decimal.Decimal {
	if len(months) < 2 {
		return decimal.Zero
	}
	prev := months[len(months)-2].Total
	last := months[len(months)-1].Total
	if prev.IsZero() {
		return decimal.Zero
	}
	return last.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
}
