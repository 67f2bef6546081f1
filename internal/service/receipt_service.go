package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pocketpilot/internal/config"
	"pocketpilot/internal/domain"
	"pocketpilot/internal/extraction"
	"pocketpilot/internal/extractor"
	"pocketpilot/internal/port"
)

// ReceiptFileInput is the DTO for receipt uploads.
type ReceiptFileInput struct {
	UserID   uuid.UUID
	FileName string
	Data     []byte
	// Category overrides the derived category when non-empty. Ignored by Preview.
	Category string
}

// PreviewResult is an extraction that was not persisted.
type PreviewResult struct {
	Receipt  *extraction.ExtractedReceipt `json:"receipt"`
	IsValid  bool                         `json:"is_valid"`
	Provider string                       `json:"provider"`
}

// ProcessResult is a persisted receipt and, for valid receipts, the expense
// transaction created from it.
type ProcessResult struct {
	Receipt     *domain.Receipt              `json:"receipt"`
	Transaction *domain.Transaction          `json:"transaction"`
	Extracted   *extraction.ExtractedReceipt `json:"extracted"`
}

// ReceiptService defines the receipt processing contract.
type ReceiptService interface {
	Preview(ctx context.Context, input ReceiptFileInput) (*PreviewResult, error)
	Process(ctx context.Context, input ReceiptFileInput) (*ProcessResult, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Receipt, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Receipt, int, error)
	GetFileURL(ctx context.Context, userID, id uuid.UUID) (string, error)
}

type receiptService struct {
	extractor   port.ReceiptExtractor
	pipeline    *extraction.Pipeline
	storage     port.ObjectStorage
	receiptRepo port.ReceiptRepository
	cfg         *config.S3Config
	now         func() time.Time
}

// NewReceiptService creates a new ReceiptService implementation.
func NewReceiptService(
	x port.ReceiptExtractor,
	pipeline *extraction.Pipeline,
	storage port.ObjectStorage,
	receiptRepo port.ReceiptRepository,
	cfg *config.S3Config,
) ReceiptService {
	return &receiptService{
		extractor:   x,
		pipeline:    pipeline,
		storage:     storage,
		receiptRepo: receiptRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

// validateFile checks the extension, size and sniffed content type, and
// returns the MIME type to send downstream.
func (s *receiptService) validateFile(input ReceiptFileInput) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return "", domain.ErrUnsupportedFileType
	}
	if int64(len(input.Data)) > s.cfg.MaxFileSizeMB*1024*1024 {
		return "", domain.ErrFileTooLarge
	}
	head := input.Data
	if len(head) > 512 {
		head = head[:512]
	}
	detected := http.DetectContentType(head)
	if _, ok := domain.AllowedContentTypes[detected]; !ok {
		return "", domain.ErrUnsupportedFileType
	}
	return detected, nil
}

// extract calls the extraction service and runs the pipeline over its result.
func (s *receiptService) extract(ctx context.Context, contentType string, data []byte) (*extraction.ExtractedReceipt, string, error) {
	out, err := s.extractor.Extract(ctx, port.ExtractInput{FileBytes: data, ContentType: contentType})
	if err != nil {
		var rlErr *extractor.RateLimitError
		switch {
		case errors.Is(err, extraction.ErrMalformedExtractionResult), errors.As(err, &rlErr):
			return nil, "", err
		case ctx.Err() != nil:
			return nil, "", ctx.Err()
		default:
			return nil, "", fmt.Errorf("%w: %v", domain.ErrExtractorUnavailable, err)
		}
	}
	receipt, err := s.pipeline.Run(out.Source)
	if err != nil {
		return nil, "", err
	}
	return receipt, out.Provider, nil
}

func (s *receiptService) Preview(ctx context.Context, input ReceiptFileInput) (*PreviewResult, error) {
	contentType, err := s.validateFile(input)
	if err != nil {
		return nil, err
	}
	receipt, provider, err := s.extract(ctx, contentType, input.Data)
	if err != nil {
		log.Printf("receiptService.Preview: extraction failed for user %s: %v", input.UserID, err)
		return nil, err
	}
	return &PreviewResult{Receipt: receipt, IsValid: receipt.IsValid(), Provider: provider}, nil
}

func (s *receiptService) Process(ctx context.Context, input ReceiptFileInput) (*ProcessResult, error) {
	contentType, err := s.validateFile(input)
	if err != nil {
		return nil, err
	}

	log.Printf("receiptService.Process: extracting %s (%s, %d bytes) for user %s",
		input.FileName, contentType, len(input.Data), input.UserID)

	extracted, provider, err := s.extract(ctx, contentType, input.Data)
	if err != nil {
		log.Printf("receiptService.Process: extraction failed for user %s: %v", input.UserID, err)
		return nil, err
	}

	receiptID := uuid.New()
	key := receiptKey(input.UserID, receiptID, input.FileName)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(input.Data),
		ContentType: contentType,
		Size:        int64(len(input.Data)),
	}); err != nil {
		log.Printf("receiptService.Process: S3 upload failed for %s: %v", key, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	receipt := s.buildReceipt(receiptID, input, contentType, key, provider, extracted)

	var txn *domain.Transaction
	if receipt.IsValid {
		txn = s.buildTransaction(receipt)
	}

	if err := s.receiptRepo.Create(ctx, receipt, txn); err != nil {
		log.Printf("receiptService.Process: persisting receipt %s failed: %v", receiptID, err)
		if delErr := s.storage.Delete(ctx, s.cfg.Bucket, key); delErr != nil {
			log.Printf("receiptService.Process: cleanup of %s failed: %v", key, delErr)
		}
		return nil, fmt.Errorf("saving receipt: %w", err)
	}

	log.Printf("receiptService.Process: receipt %s saved (valid=%t, confidence=%.2f)",
		receipt.ID, receipt.IsValid, receipt.Confidence)
	return &ProcessResult{Receipt: receipt, Transaction: txn, Extracted: extracted}, nil
}

func (s *receiptService) buildReceipt(
	id uuid.UUID,
	input ReceiptFileInput,
	contentType, key, provider string,
	extracted *extraction.ExtractedReceipt,
) *domain.Receipt {
	receipt := &domain.Receipt{
		ID:            id,
		UserID:        input.UserID,
		OriginalName:  input.FileName,
		ContentType:   contentType,
		FileSize:      int64(len(input.Data)),
		S3Bucket:      s.cfg.Bucket,
		S3Key:         key,
		Provider:      provider,
		ReceiptDate:   extracted.Date,
		DateDefaulted: extracted.DateDefaulted,
		Merchant:      extracted.Merchant,
		Category:      extracted.Category,
		LineItems:     domain.StringList(extracted.LineItems),
		MissingFields: make(domain.StringList, 0, len(extracted.MissingFields)),
		Confidence:    extracted.Confidence,
		IsValid:       extracted.IsValid(),
	}
	if extracted.Amount != nil {
		receipt.Amount = decimal.NewNullDecimal(*extracted.Amount)
	}
	for _, f := range extracted.MissingFields {
		receipt.MissingFields = append(receipt.MissingFields, string(f))
	}
	if override := strings.TrimSpace(input.Category); override != "" {
		if known, ok := s.pipeline.Categorizer().Known(override); ok {
			override = known
		}
		receipt.Category = override
	}
	return receipt
}

// buildTransaction creates the expense entry for a valid receipt. A receipt
// without a date is booked on the current day.
func (s *receiptService) buildTransaction(receipt *domain.Receipt) *domain.Transaction {
	date := today(s.now())
	if receipt.ReceiptDate != nil {
		date = *receipt.ReceiptDate
	}
	merchant := ""
	if receipt.Merchant != nil {
		merchant = *receipt.Merchant
	}
	return &domain.Transaction{
		ID:       uuid.New(),
		UserID:   receipt.UserID,
		Type:     domain.TransactionTypeExpense,
		Amount:   receipt.Amount.Decimal,
		Category: receipt.Category,
		Date:     date,
		Notes:    "Receipt: " + merchant,
		Source:   domain.TransactionSourceReceipt,
	}
}

func (s *receiptService) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Receipt, error) {
	return s.receiptRepo.GetByID(ctx, userID, id)
}

func (s *receiptService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Receipt, int, error) {
	return s.receiptRepo.ListByUser(ctx, userID, offset, limit)
}

func (s *receiptService) GetFileURL(ctx context.Context, userID, id uuid.UUID) (string, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	url, err := s.storage.GetPresignedURL(ctx, receipt.S3Bucket, receipt.S3Key, s.cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("generating file url: %w", err)
	}
	return url, nil
}

// receiptKey returns receipts/{userID}/{receiptID}/{base name}, with any
// client-supplied directories and control characters removed.
func receiptKey(userID, receiptID uuid.UUID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "receipt"
	}
	return fmt.Sprintf("receipts/%s/%s/%s", userID, receiptID, name)
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
