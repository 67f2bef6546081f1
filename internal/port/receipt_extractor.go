package port

import (
	"context"

	"pocketpilot/internal/extraction"
)

// ExtractInput carries the uploaded file handed to an extraction service.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
}

// ExtractOutput is the structured result of an extraction service call.
type ExtractOutput struct {
	Source   *extraction.Source
	Provider string
}

// ReceiptExtractor abstracts the external document-understanding call that
// precedes the receipt pipeline. Implementations must bound their own latency.
type ReceiptExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
