package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/service"
	"pocketpilot/mocks"
)

func TestTransactionService_Create_Defaults(t *testing.T) {
	mockRepo := new(mocks.MockTransactionRepo)
	svc := service.NewTransactionService(mockRepo)
	userID := uuid.New()

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil)

	txn, err := svc.Create(context.Background(), service.CreateTransactionInput{
		UserID: userID,
		Type:   domain.TransactionTypeIncome,
		Amount: decimal.RequireFromString("1500.456"),
		Date:   "2025-03-01",
		Notes:  "  stipend  ",
	})

	require.NoError(t, err)
	assert.Equal(t, userID, txn.UserID)
	assert.Equal(t, domain.DefaultCategory, txn.Category)
	assert.Equal(t, domain.TransactionSourceManual, txn.Source)
	assert.Equal(t, "stipend", txn.Notes)
	assert.Equal(t, "1500.46", txn.Amount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), txn.Date)
	mockRepo.AssertExpectations(t)
}

func TestTransactionService_Create_Validation(t *testing.T) {
	valid := service.CreateTransactionInput{
		Type:   domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(10),
		Date:   "2025-03-01",
	}

	tests := []struct {
		name    string
		mutate  func(in *service.CreateTransactionInput)
		wantErr error
	}{
		{"bad type", func(in *service.CreateTransactionInput) { in.Type = "transfer" }, domain.ErrInvalidTransactionType},
		{"bad source", func(in *service.CreateTransactionInput) { in.Source = "import" }, domain.ErrInvalidTransactionSource},
		{"zero amount", func(in *service.CreateTransactionInput) { in.Amount = decimal.Zero }, domain.ErrInvalidAmount},
		{"negative amount", func(in *service.CreateTransactionInput) { in.Amount = decimal.NewFromInt(-5) }, domain.ErrInvalidAmount},
		{"rounds to zero", func(in *service.CreateTransactionInput) { in.Amount = decimal.RequireFromString("0.004") }, domain.ErrInvalidAmount},
		{"missing date", func(in *service.CreateTransactionInput) { in.Date = " " }, domain.ErrMissingDate},
		{"bad date", func(in *service.CreateTransactionInput) { in.Date = "01/03/2025" }, domain.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockTransactionRepo)
			svc := service.NewTransactionService(mockRepo)
			in := valid
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)

			assert.ErrorIs(t, err, tt.wantErr)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestTransactionService_Create_RepoError(t *testing.T) {
	mockRepo := new(mocks.MockTransactionRepo)
	svc := service.NewTransactionService(mockRepo)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.Create(context.Background(), service.CreateTransactionInput{
		Type:   domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(10),
		Date:   "2025-03-01",
	})

	assert.Error(t, err)
}

func TestTransactionService_ListAll_Pages(t *testing.T) {
	mockRepo := new(mocks.MockTransactionRepo)
	svc := service.NewTransactionService(mockRepo)
	userID := uuid.New()
	filter := domain.TransactionFilter{Type: domain.TransactionTypeExpense}

	first := make([]domain.Transaction, 500)
	second := make([]domain.Transaction, 20)
	mockRepo.On("ListByUser", mock.Anything, userID, filter, 0, 500).Return(first, 520, nil)
	mockRepo.On("ListByUser", mock.Anything, userID, filter, 500, 500).Return(second, 520, nil)

	all, err := svc.ListAll(context.Background(), userID, filter)

	require.NoError(t, err)
	assert.Len(t, all, 520)
	mockRepo.AssertExpectations(t)
}

func TestTransactionService_Delete_NotFound(t *testing.T) {
	mockRepo := new(mocks.MockTransactionRepo)
	svc := service.NewTransactionService(mockRepo)
	userID, id := uuid.New(), uuid.New()
	mockRepo.On("Delete", mock.Anything, userID, id).Return(domain.ErrNotFound)

	err := svc.Delete(context.Background(), userID, id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
