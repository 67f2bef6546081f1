package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketpilot/internal/service"
)

// ReceiptHandler handles receipt upload and retrieval endpoints.
type ReceiptHandler struct {
	receiptService service.ReceiptService
	maxBytes       int64
}

// NewReceiptHandler creates a new ReceiptHandler. Uploads are read up to
// maxBytes+1 so the service can reject oversize files.
func NewReceiptHandler(receiptService service.ReceiptService, maxBytes int64) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, maxBytes: maxBytes}
}

// readUpload reads the multipart "file" field. Returns false if the field is
// missing or unreadable (error response already written).
func (h *ReceiptHandler) readUpload(c *gin.Context) (service.ReceiptFileInput, bool) {
	userID, ok := extractUserID(c)
	if !ok {
		return service.ReceiptFileInput{}, false
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return service.ReceiptFileInput{}, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		HandleError(c, fmt.Errorf("reading upload: %w", err))
		return service.ReceiptFileInput{}, false
	}

	return service.ReceiptFileInput{
		UserID:   userID,
		FileName: header.Filename,
		Data:     data,
		Category: c.PostForm("category"),
	}, true
}

// Extract handles POST /api/v1/receipts/extract. Nothing is stored.
func (h *ReceiptHandler) Extract(c *gin.Context) {
	input, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.receiptService.Preview(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Upload handles POST /api/v1/receipts.
func (h *ReceiptHandler) Upload(c *gin.Context) {
	input, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.receiptService.Process(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, result)
}

// List handles GET /api/v1/receipts.
func (h *ReceiptHandler) List(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	receipts, total, err := h.receiptService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, receipts, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/receipts/:id.
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "receipt")
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, receipt)
}

// FileURL handles GET /api/v1/receipts/:id/file.
func (h *ReceiptHandler) FileURL(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "receipt")
	if !ok {
		return
	}

	url, err := h.receiptService.GetFileURL(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"url": url})
}
