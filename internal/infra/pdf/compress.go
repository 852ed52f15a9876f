package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
	"github.com/shopdraw/drawcheck/internal/domain/document"
	"github.com/shopdraw/drawcheck/internal/middleware"
)

// Compressor shrinks a PDF by dropping the document information dictionary
// and re-writing with object-stream compaction. Purely functional: the
// logical document (page tree included) is unchanged.
type Compressor struct {
	conf *model.Configuration
}

func NewCompressor() *Compressor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true
	return &Compressor{conf: conf}
}

func (c *Compressor) Compress(ctx context.Context, data []byte) (*document.CompressionOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), c.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrMalformedInput, err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrMalformedInput, err)
	}
	pages := pdfCtx.PageCount

	// Clear title, author, subject, keywords, producer, creator in one go.
	pdfCtx.XRefTable.Info = nil

	if err := api.OptimizeContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("optimize pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pdfCtx, &buf); err != nil {
		return nil, fmt.Errorf("rewrite pdf: %w", err)
	}

	// The rewrite must never change the page count.
	outPages, err := api.PageCount(bytes.NewReader(buf.Bytes()), c.conf)
	if err != nil {
		return nil, fmt.Errorf("verify rewritten pdf: %w", err)
	}
	if outPages != pages {
		return nil, fmt.Errorf("rewritten pdf has %d pages, input had %d", outPages, pages)
	}

	middleware.IncrementCompressions()
	return &document.CompressionOutcome{
		Data:           buf.Bytes(),
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(buf.Len()),
		PageCount:      pages,
	}, nil
}

var _ document.Compressor = (*Compressor)(nil)
