package analysis

import "context"

// Analyzer port (interface for the hosted document-understanding model)
type Analyzer interface {
	// AnalyzeBytes sends the document inline with the instruction text.
	AnalyzeBytes(ctx context.Context, data []byte, filename string, pctx ProjectContext) (*Result, error)

	// AnalyzeURL sends a fetchable URL instead of inline bytes; used for
	// documents staged in the blob store.
	AnalyzeURL(ctx context.Context, url string, pctx ProjectContext) (*Result, error)
}
