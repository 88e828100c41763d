// Package media stores uploaded files in the object store, probes video
// durations and deletes replaced or orphaned assets in the background.
package media

import (
	"context"
	"io"
)

// AssetStorage persists and removes objects by key.
type AssetStorage interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}
