package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
	"github.com/shopdraw/drawcheck/internal/domain/document"
)

var fetchClient = &http.Client{Timeout: 30 * time.Second}

// Fetch retrieves a staged document for the analyze-by-URL variant. The
// response is capped at the hard ceiling; anything larger fails before the
// model is ever involved. Callers validate the URL first (see middleware).
func (s *Store) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}
	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching %s returned status %d", analysis.ErrStorage, url, resp.StatusCode)
	}

	limit := s.maxBytes
	if limit <= 0 {
		limit = 64 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (staged object is larger than %s)", analysis.ErrSizeLimit, document.FormatMB(limit))
	}
	return data, nil
}

var _ document.BlobStore = (*Store)(nil)
