package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/extraction"
	"pocketpilot/internal/handler"
	"pocketpilot/internal/service"
	"pocketpilot/mocks"
)

func TestReceiptHandler_Upload_Success(t *testing.T) {
	mockSvc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(mockSvc, 1024*1024)
	userID := uuid.New()

	mockSvc.On("Process", mock.Anything, mock.MatchedBy(func(in service.ReceiptFileInput) bool {
		return in.UserID == userID && in.FileName == "lunch.jpg" && in.Category == "Food" && string(in.Data) == "jpeg-bytes"
	})).Return(&service.ProcessResult{Receipt: &domain.Receipt{ID: uuid.New(), IsValid: true}}, nil)

	body, contentType := multipartBody(t, "lunch.jpg", []byte("jpeg-bytes"), map[string]string{"category": "Food"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/receipts", body)
	c.Request.Header.Set("Content-Type", contentType)
	setAuthContext(c, userID)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
	mockSvc.AssertExpectations(t)
}

func TestReceiptHandler_Upload_MissingFile(t *testing.T) {
	mockSvc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(mockSvc, 1024)

	body, contentType := multipartBody(t, "", nil, map[string]string{"category": "Food"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/receipts", body)
	c.Request.Header.Set("Content-Type", contentType)
	setAuthContext(c, uuid.New())

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeResponse(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

func TestReceiptHandler_Upload_MalformedExtraction(t *testing.T) {
	mockSvc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(mockSvc, 1024)

	mockSvc.On("Process", mock.Anything, mock.Anything).Return(nil, extraction.ErrMalformedExtractionResult)

	body, contentType := multipartBody(t, "lunch.png", []byte("png"), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/receipts", body)
	c.Request.Header.Set("Content-Type", contentType)
	setAuthContext(c, uuid.New())

	h.Upload(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "EXTRACTION_FAILED", resp.Error.Code)
	assert.Equal(t, "processing failed, try again", resp.Error.Message)
}

func TestReceiptHandler_Upload_ReadsOneByteOverLimit(t *testing.T) {
	mockSvc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(mockSvc, 4)

	mockSvc.On("Process", mock.Anything, mock.MatchedBy(func(in service.ReceiptFileInput) bool {
		return len(in.Data) == 5
	})).Return(nil, domain.ErrFileTooLarge)

	body, contentType := multipartBody(t, "big.png", []byte("0123456789"), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/receipts", body)
	c.Request.Header.Set("Content-Type", contentType)
	setAuthContext(c, uuid.New())

	h.Upload(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestReceiptHandler_Extract(t *testing.T) {
	mockSvc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(mockSvc, 1024)

	merchant := "Campus Cafe"
	mockSvc.On("Preview", mock.Anything, mock.Anything).Return(&service.PreviewResult{
		Receipt:  &extraction.ExtractedReceipt{Merchant: &merchant, Category: "Food"},
		Provider: "demo",
	}, nil)

	body, contentType := multipartBody(t, "lunch.png", []byte("png"), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/receipts/extract", body)
	c.Request.Header.Set("Content-Type", contentType)
	setAuthContext(c, uuid.New())

	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"merchant":"Campus Cafe"`)
}

func TestReceiptHandler_GetByID(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		h := handler.NewReceiptHandler(new(mocks.MockReceiptService), 1024)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/receipts/nope", http.NoBody)
		c.Params = gin.Params{{Key: "id", Value: "nope"}}
		setAuthContext(c, uuid.New())

		h.GetByID(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(mocks.MockReceiptService)
		h := handler.NewReceiptHandler(mockSvc, 1024)
		userID, id := uuid.New(), uuid.New()
		mockSvc.On("GetByID", mock.Anything, userID, id).Return(nil, domain.ErrNotFound)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/receipts/"+id.String(), http.NoBody)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}
		setAuthContext(c, userID)

		h.GetByID(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReceiptHandler_List(t *testing.T) {
	mockSvc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(mockSvc, 1024)
	userID := uuid.New()

	mockSvc.On("List", mock.Anything, userID, 10, 5).Return([]domain.Receipt{{ID: uuid.New()}}, 11, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/receipts?offset=10&limit=5", http.NoBody)
	setAuthContext(c, userID)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 11, resp.Meta.Total)
	assert.Equal(t, 5, resp.Meta.Limit)
}

func TestReceiptHandler_FileURL(t *testing.T) {
	mockSvc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(mockSvc, 1024)
	userID, id := uuid.New(), uuid.New()
	mockSvc.On("GetFileURL", mock.Anything, userID, id).Return("https://signed.example/x", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/receipts/"+id.String()+"/file", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	setAuthContext(c, userID)

	h.FileURL(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://signed.example/x")
}

func TestReceiptHandler_NoUserContext(t *testing.T) {
	h := handler.NewReceiptHandler(new(mocks.MockReceiptService), 1024)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/receipts", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
