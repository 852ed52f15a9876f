package document

import "fmt"

// Uploaded is the raw document as received. Replaced wholesale when
// compression produces a smaller artifact; discarded on reset.
type Uploaded struct {
	Data     []byte
	Filename string
	Size     int64
}

// NewUploaded builds an Uploaded from raw bytes.
func NewUploaded(data []byte, filename string) Uploaded {
	return Uploaded{Data: data, Filename: filename, Size: int64(len(data))}
}

// CompressionOutcome reports a compression pass. Sizes are kept for user
// display regardless of whether the smaller artifact is adopted.
type CompressionOutcome struct {
	Data           []byte
	OriginalSize   int64
	CompressedSize int64
	PageCount      int
}

// Smaller reports whether the pass actually shrank the document.
func (o *CompressionOutcome) Smaller() bool {
	return o.CompressedSize < o.OriginalSize
}

// StoredObject is the result of staging bytes in the blob store.
type StoredObject struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// UploadIntent describes a direct client-to-store upload request.
type UploadIntent struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// UploadGrant authorizes one direct upload: a presigned POST target plus
// the form fields the client must echo back.
type UploadGrant struct {
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
	Key       string            `json:"key"`
	ExpiresAt string            `json:"expiresAt"`
}

// FormatMB renders a byte count as base-1024 megabytes with one decimal,
// e.g. 5767168 -> "5.5 MB".
func FormatMB(n int64) string {
	return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
}
