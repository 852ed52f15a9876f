package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
)

func TestFetchReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 staged drawing"))
	}))
	defer server.Close()

	s := &Store{maxBytes: 1 << 20}
	data, err := s.Fetch(context.Background(), server.URL+"/bucket/key.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 staged drawing", string(data))
}

func TestFetchNonOKStatusIsStorageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	s := &Store{maxBytes: 1 << 20}
	_, err := s.Fetch(context.Background(), server.URL+"/bucket/key.pdf")
	assert.True(t, errors.Is(err, analysis.ErrStorage))
}

func TestFetchOversizeIsSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	s := &Store{maxBytes: 1024}
	_, err := s.Fetch(context.Background(), server.URL+"/bucket/big.pdf")
	assert.True(t, errors.Is(err, analysis.ErrSizeLimit))
}

func TestFetchUnreachableHostIsStorageError(t *testing.T) {
	s := &Store{maxBytes: 1024}
	_, err := s.Fetch(context.Background(), "http://blobs.invalid./key.pdf")
	assert.True(t, errors.Is(err, analysis.ErrStorage))
}
