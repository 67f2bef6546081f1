package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/handler"
	"pocketpilot/internal/router"
	"pocketpilot/internal/service"
	"pocketpilot/mocks"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestRouter(tokens *mocks.MockTokenService, stats *mocks.MockStatsService, txns *mocks.MockTransactionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return router.Setup(
		tokens,
		[]string{"http://localhost:3000"},
		handler.NewReceiptHandler(new(mocks.MockReceiptService), 1024),
		handler.NewTransactionHandler(txns),
		handler.NewStatsHandler(stats),
		handler.NewHealthHandler(okPinger{}),
	)
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r := newTestRouter(new(mocks.MockTokenService), new(mocks.MockStatsService), new(mocks.MockTransactionService))

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_APIRequiresToken(t *testing.T) {
	r := newTestRouter(new(mocks.MockTokenService), new(mocks.MockStatsService), new(mocks.MockTransactionService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stats/summary", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	tokens := new(mocks.MockTokenService)
	stats := new(mocks.MockStatsService)
	userID := uuid.New()
	tokens.On("Validate", "good").Return(&service.Claims{UserID: userID}, nil)
	stats.On("Summary", mock.Anything, userID).Return(&domain.StatsSummary{}, nil)

	r := newTestRouter(tokens, stats, new(mocks.MockTransactionService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stats/summary", http.NoBody)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	stats.AssertExpectations(t)
}

func TestRouter_ExportIsNotShadowedByID(t *testing.T) {
	tokens := new(mocks.MockTokenService)
	txns := new(mocks.MockTransactionService)
	userID := uuid.New()
	tokens.On("Validate", "good").Return(&service.Claims{UserID: userID}, nil)
	txns.On("ListAll", mock.Anything, userID, domain.TransactionFilter{}).Return([]domain.Transaction{}, nil)

	r := newTestRouter(tokens, new(mocks.MockStatsService), txns)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/transactions/export", http.NoBody)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	txns.AssertExpectations(t)
}
