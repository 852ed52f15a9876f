package document

import "context"

// BlobStore port (interface for transient object storage)
type BlobStore interface {
	Upload(ctx context.Context, data []byte, filename string) (*StoredObject, error)
	PresignUpload(ctx context.Context, intent UploadIntent) (*UploadGrant, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Compressor port (interface for the PDF rewrite pass)
type Compressor interface {
	Compress(ctx context.Context, data []byte) (*CompressionOutcome, error)
}
