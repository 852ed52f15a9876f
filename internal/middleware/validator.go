package middleware

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
)

// Input validation and sanitization utilities

var pdfMagic = []byte("%PDF-")

// ValidatePDFBytes checks the upload really is a PDF by sniffing the
// header, not by trusting the client content type.
func ValidatePDFBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", analysis.ErrValidation)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return fmt.Errorf("%w: file is not a PDF", analysis.ErrValidation)
	}
	return nil
}

// ValidateBlobURL validates the blobUrl of the analyze-by-URL variant
// before the server fetches it (SSRF protection).
func ValidateBlobURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: blobUrl cannot be empty", analysis.ErrValidation)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid blobUrl format", analysis.ErrValidation)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: invalid blobUrl scheme %q (allowed: http, https)", analysis.ErrValidation, u.Scheme)
	}

	// Block localhost/internal addresses
	host := strings.ToLower(u.Hostname())
	blocked := []string{"localhost", "127.0.0.1", "0.0.0.0", "[::]", "::1"}
	for _, b := range blocked {
		if strings.Contains(host, b) {
			return fmt.Errorf("%w: localhost/internal addresses are not allowed", analysis.ErrValidation)
		}
	}

	// Block private IP ranges (basic check)
	if strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "192.168.") ||
		strings.HasPrefix(host, "172.16.") ||
		strings.HasPrefix(host, "172.31.") {
		return fmt.Errorf("%w: private IP ranges are not allowed", analysis.ErrValidation)
	}

	return nil
}

// SanitizeFilename strips any path component and control characters from a
// user-supplied filename. Empty results fall back to drawing.pdf.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	name = strings.TrimSpace(b.String())
	if name == "" || name == "." || name == "/" {
		return "drawing.pdf"
	}
	return name
}
