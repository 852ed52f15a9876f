package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Every failure crossing the HTTP boundary is classified
// into exactly one of these; unmatched errors fall through as 500.
var (
	// ErrValidation covers missing or wrong-typed request input.
	ErrValidation = errors.New("invalid request")

	// ErrMalformedInput means the uploaded bytes could not be parsed as a
	// PDF, so neither compression nor analysis was attempted.
	ErrMalformedInput = errors.New("file could not be parsed as a PDF; compress or re-export it externally and try again")

	// ErrSizeLimit means the input (compressed or not) exceeds the hard
	// ceiling. Raised locally, before any network call.
	ErrSizeLimit = errors.New("file exceeds the maximum size")

	// ErrStorage covers blob store upload/fetch failures. Surfaced
	// verbatim, no retry.
	ErrStorage = errors.New("storage error")

	// ErrUpstreamBilling means the model provider reported exhausted
	// credits (HTTP 402 / insufficient_quota).
	ErrUpstreamBilling = errors.New("model provider credit balance is exhausted; add credits and resubmit")

	// ErrUnparsableResponse means the model reply contained no valid JSON
	// object. The wrapped message carries a truncated raw prefix.
	ErrUnparsableResponse = errors.New("model response did not contain a parsable result")
)

// rawPrefixLen caps the diagnostic excerpt attached to unparsable replies.
const rawPrefixLen = 160

// NewUnparsableError wraps ErrUnparsableResponse with a truncated prefix of
// the raw model output for diagnostics.
func NewUnparsableError(raw string) error {
	raw = strings.TrimSpace(raw)
	if len(raw) > rawPrefixLen {
		raw = raw[:rawPrefixLen] + "..."
	}
	return fmt.Errorf("%w: %q", ErrUnparsableResponse, raw)
}
