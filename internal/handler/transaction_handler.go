package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pocketpilot/internal/domain"
	"pocketpilot/internal/export"
	"pocketpilot/internal/service"
)

// TransactionHandler handles transaction endpoints.
type TransactionHandler struct {
	txnService service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txnService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txnService: txnService}
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}

	var input service.CreateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	input.UserID = userID

	txn, err := h.txnService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, txn)
}

// parseFilter reads type, category, from and to query params. Returns false on
// a malformed value (error response already written).
func parseFilter(c *gin.Context) (domain.TransactionFilter, bool) {
	filter := domain.TransactionFilter{
		Type:     domain.TransactionType(strings.ToLower(c.Query("type"))),
		Category: strings.TrimSpace(c.Query("category")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		HandleError(c, domain.ErrInvalidTransactionType)
		return filter, false
	}
	for param, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		t, err := service.ParseDate(raw)
		if err != nil {
			HandleError(c, err)
			return filter, false
		}
		*dst = &t
	}
	return filter, true
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	txns, total, err := h.txnService.List(c.Request.Context(), userID, filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	RespondPaginated(c, txns, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) GetByID(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "transaction")
	if !ok {
		return
	}

	txn, err := h.txnService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, txn)
}

// Delete handles DELETE /api/v1/transactions/:id.
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "transaction")
	if !ok {
		return
	}

	if err := h.txnService.Delete(c.Request.Context(), userID, id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "transaction deleted"})
}

// Export handles GET /api/v1/transactions/export?format=csv|xlsx. The
// listing filters apply.
func (h *TransactionHandler) Export(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	if format != domain.ExportFormatCSV && format != domain.ExportFormatXLSX {
		HandleError(c, domain.ErrInvalidExportFormat)
		return
	}
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	txns, err := h.txnService.ListAll(c.Request.Context(), userID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, txns); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("transactions", format, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}
