package core

import (
	"context"
	"io"
)

// FileStorage is any object store able to keep uploaded files.
type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
