package export

import (
	"context"
	"fmt"

	"github.com/hupe1980/seqdist/blobstore"
)

type aborter interface {
	Abort() error
}

// Publish streams src as an archive into store under name. A failed write
// leaves no blob behind on stores that support aborting uploads.
func Publish(ctx context.Context, store blobstore.BlobStore, name string, src Source, ids []string, description string, optFns ...Option) (*Header, error) {
	w, err := store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("export: create %s: %w", name, err)
	}

	hdr, err := Write(w, src, ids, description, optFns...)
	if err != nil {
		if a, ok := w.(aborter); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
			_ = store.Delete(ctx, name)
		}
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("export: publish %s: %w", name, err)
	}
	return hdr, nil
}

// Fetch opens name in store and decodes the archive.
func Fetch(ctx context.Context, store blobstore.BlobStore, name string) (*Archive, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return Read(blobstore.NewReader(b))
}
