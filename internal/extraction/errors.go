package extraction

import "errors"

var (
	// ErrMalformedExtractionResult means the extraction service output has no
	// inspectable entity list. It is the only error Pipeline.Run returns.
	ErrMalformedExtractionResult = errors.New("malformed extraction result")

	// ErrInvalidRules is returned for configuration that fails Rules.Validate.
	ErrInvalidRules = errors.New("invalid extraction rules")
)
