package storage

import (
	"context"
	"io"

	"gdupload/internal/media"
)

// Source is an opened payload together with whatever must be released once
// the request is done. The payload only borrows the underlying reader.
type Source struct {
	Name        string
	Path        string // resolved local file path; empty for remote objects
	ContentType string
	Payload     *media.Payload
	closer      io.Closer
}

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

type Provider interface {
	Open(ctx context.Context, location string) (*Source, error)
}

// Resolver routes gs:// locations to GCS and everything else to the local
// filesystem. The GCS provider is created on first use.
type Resolver struct {
	local  Provider
	newGCS func(ctx context.Context) (Provider, error)
	gcs    Provider
}

func NewResolver(local Provider, newGCS func(ctx context.Context) (Provider, error)) *Resolver {
	return &Resolver{local: local, newGCS: newGCS}
}

func (r *Resolver) Open(ctx context.Context, location string) (*Source, error) {
	if !IsGCSURI(location) {
		return r.local.Open(ctx, location)
	}

	if r.gcs == nil {
		if r.newGCS == nil {
			return nil, errGCSDisabled
		}
		gcs, err := r.newGCS(ctx)
		if err != nil {
			return nil, err
		}
		r.gcs = gcs
	}
	return r.gcs.Open(ctx, location)
}
