package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
)

// buildTestPDF assembles a minimal one-page PDF with an info dictionary,
// computing xref offsets from the buffer as it grows so the file is valid
// by construction.
func buildTestPDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	obj := func(s string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(s)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	obj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")
	obj("4 0 obj\n<< /Title (Store 42 Facade) /Author (drafting dept) /Producer (legacy-cad) >>\nendobj\n")

	xrefPos := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)+1))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefPos))
	return buf.Bytes()
}

func TestCompressReportsSizesAndPageCount(t *testing.T) {
	in := buildTestPDF(t)
	out, err := NewCompressor().Compress(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, int64(len(in)), out.OriginalSize)
	assert.Equal(t, int64(len(out.Data)), out.CompressedSize)
	assert.Equal(t, 1, out.PageCount)
}

func TestCompressPreservesPageCount(t *testing.T) {
	in := buildTestPDF(t)
	out, err := NewCompressor().Compress(context.Background(), in)
	require.NoError(t, err)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pages, err := api.PageCount(bytes.NewReader(out.Data), conf)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestCompressDropsInfoDictionary(t *testing.T) {
	in := buildTestPDF(t)
	require.Contains(t, string(in), "Store 42 Facade")

	out, err := NewCompressor().Compress(context.Background(), in)
	require.NoError(t, err)

	assert.NotContains(t, string(out.Data), "Store 42 Facade")
	assert.NotContains(t, string(out.Data), "legacy-cad")
}

func TestCompressMalformedInput(t *testing.T) {
	_, err := NewCompressor().Compress(context.Background(), []byte("this is not a pdf at all"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrMalformedInput))
}

func TestCompressEmptyInput(t *testing.T) {
	_, err := NewCompressor().Compress(context.Background(), nil)
	assert.True(t, errors.Is(err, analysis.ErrMalformedInput))
}

func TestCompressHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCompressor().Compress(ctx, buildTestPDF(t))
	assert.ErrorIs(t, err, context.Canceled)
}
