package documentai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pocketpilot/internal/config"
	"pocketpilot/internal/extraction"
	"pocketpilot/internal/extractor"
	"pocketpilot/internal/port"
)

const providerName = "documentai"

// Extractor implements port.ReceiptExtractor using the Document AI REST API.
type Extractor struct {
	token     string
	processor string
	endpoint  string
	client    *http.Client
}

// NewExtractor creates a Document AI extractor. cfg.Processor must be a full
// processor resource name; cfg.APIKey is sent as an OAuth bearer token.
func NewExtractor(cfg *config.ExtractorProviderConfig) (*Extractor, error) {
	location, err := processorLocation(cfg.Processor)
	if err != nil {
		return nil, err
	}
	base := cfg.Endpoint
	if base == "" {
		base = fmt.Sprintf("https://%s-documentai.googleapis.com", location)
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Extractor{
		token:     cfg.APIKey,
		processor: cfg.Processor,
		endpoint:  fmt.Sprintf("%s/v1/%s:process", strings.TrimRight(base, "/"), cfg.Processor),
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// processorLocation extracts {location} from projects/{p}/locations/{location}/processors/{id}.
func processorLocation(name string) (string, error) {
	parts := strings.Split(name, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "locations" || parts[4] != "processors" {
		return "", fmt.Errorf("invalid document ai processor name: %q", name)
	}
	return parts[3], nil
}

func (x *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	reqBody := processRequest{
		RawDocument: rawDocument{
			Content:  base64.StdEncoding.EncodeToString(input.FileBytes),
			MimeType: input.ContentType,
		},
		SkipHumanReview: true,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+x.token)

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling document ai: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("document ai error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"), time.Now())
			return nil, extractor.NewRateLimitError(providerName, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	src, err := parseResponse(respBody)
	if err != nil {
		return nil, err
	}
	return &port.ExtractOutput{Source: src, Provider: providerName}, nil
}

type processRequest struct {
	RawDocument     rawDocument `json:"rawDocument"`
	SkipHumanReview bool        `json:"skipHumanReview"`
}

type rawDocument struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

// processResponse models the subset of ProcessResponse the pipeline reads.
// Document AI omits empty repeated fields, so a document without an
// "entities" key has zero entities rather than a malformed list.
type processResponse struct {
	Document *struct {
		Text     string                    `json:"text"`
		Entities []extraction.SourceEntity `json:"entities"`
	} `json:"document"`
}

func parseResponse(body []byte) (*extraction.Source, error) {
	var resp processResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", extraction.ErrMalformedExtractionResult, err)
	}
	if resp.Document == nil {
		return nil, fmt.Errorf("%w: response has no document", extraction.ErrMalformedExtractionResult)
	}
	entities := resp.Document.Entities
	if entities == nil {
		entities = []extraction.SourceEntity{}
	}
	return &extraction.Source{Entities: entities, Text: resp.Document.Text}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
