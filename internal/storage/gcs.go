package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"gdupload/internal/media"
)

const gcsScheme = "gs://"

var errGCSDisabled = errors.New("gcs storage is not configured")

type GCSOptions struct {
	CredentialsFile string
	// Endpoint points the client at an emulator; it disables authentication.
	Endpoint string
}

type GCSStorage struct {
	client *storage.Client
}

func NewGCSStorage(ctx context.Context, opts GCSOptions) (*GCSStorage, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{client: client}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

// Open streams an object. The object size comes from its attributes, so
// nothing is buffered; the gs:// URI doubles as the payload path.
// Transparently decompressed objects of unknown length are rejected.
func (s *GCSStorage) Open(ctx context.Context, uri string) (*Source, error) {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}

	size, err := objectSize(r.Attrs, r.Remain())
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s: %w", uri, err)
	}

	payload, err := media.FromReader(r, size, media.WithPath(uri))
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	return &Source{
		Name:        path.Base(object),
		ContentType: r.Attrs.ContentType,
		Payload:     payload,
		closer:      r,
	}, nil
}

// objectSize is the number of bytes the reader will yield. Objects stored
// with gzip content encoding are decompressed on read, so their stored size
// does not apply.
func objectSize(attrs storage.ReaderObjectAttrs, remain int64) (int64, error) {
	if !attrs.Decompressed {
		return attrs.Size, nil
	}
	if remain < 0 {
		return 0, media.ErrUnknownLength
	}
	return remain, nil
}

func IsGCSURI(s string) bool {
	return strings.HasPrefix(s, gcsScheme)
}

func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("not a gcs uri: %q", uri)
	}

	rest := strings.TrimPrefix(uri, gcsScheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid gcs uri: %q", uri)
	}
	return bucket, object, nil
}
