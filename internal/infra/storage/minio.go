package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
	"github.com/shopdraw/drawcheck/internal/domain/document"
)

const pdfContentType = "application/pdf"

type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	GrantTTL  time.Duration
	MaxBytes  int64
}

// Store stages uploaded drawings in a minio bucket.
type Store struct {
	client   *minio.Client
	bucket   string
	region   string
	grantTTL time.Duration
	maxBytes int64
}

func New(ctx context.Context, opts Options) (*Store, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, err
		}
	}

	if opts.GrantTTL == 0 {
		opts.GrantTTL = 10 * time.Minute
	}
	return &Store{
		client:   cli,
		bucket:   opts.Bucket,
		region:   opts.Region,
		grantTTL: opts.GrantTTL,
		maxBytes: opts.MaxBytes,
	}, nil
}

// Upload is the server-mediated path: bytes come to us, we re-upload.
func (s *Store) Upload(ctx context.Context, data []byte, filename string) (*document.StoredObject, error) {
	key := objectKey(filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: pdfContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}
	return &document.StoredObject{
		URL:      s.objectURL(key),
		Key:      key,
		Filename: path.Base(filename),
		Size:     int64(len(data)),
	}, nil
}

// PresignUpload is the direct client-to-store path: a short-lived POST
// policy restricted to PDFs within the size ceiling.
func (s *Store) PresignUpload(ctx context.Context, intent document.UploadIntent) (*document.UploadGrant, error) {
	if intent.ContentType != pdfContentType {
		return nil, fmt.Errorf("%w: only %s uploads are allowed", analysis.ErrValidation, pdfContentType)
	}
	if s.maxBytes > 0 && intent.Size > s.maxBytes {
		return nil, fmt.Errorf("%w (%s, limit %s)", analysis.ErrSizeLimit,
			document.FormatMB(intent.Size), document.FormatMB(s.maxBytes))
	}

	key := objectKey(intent.Filename)
	expires := time.Now().UTC().Add(s.grantTTL)

	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}
	if err := policy.SetKey(key); err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}
	if err := policy.SetExpires(expires); err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}
	if err := policy.SetContentType(pdfContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}
	if err := policy.SetContentLengthRange(1, s.maxBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}

	u, fields, err := s.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrStorage, err)
	}
	return &document.UploadGrant{
		URL:       u.String(),
		Fields:    fields,
		Key:       key,
		ExpiresAt: expires.Format(time.RFC3339),
	}, nil
}

// Check pings the bucket; used by the health endpoint.
func (s *Store) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

func (s *Store) objectURL(key string) string {
	ep := s.client.EndpointURL()
	return fmt.Sprintf("%s://%s/%s/%s", ep.Scheme, ep.Host, s.bucket, key)
}

// objectKey namespaces every upload under a fresh uuid so grants and
// server-mediated uploads can never collide.
func objectKey(filename string) string {
	name := path.Base(filename)
	if name == "." || name == "/" || name == "" {
		name = "drawing.pdf"
	}
	return fmt.Sprintf("uploads/%s/%s", uuid.New().String(), name)
}
