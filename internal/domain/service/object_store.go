package service

import "context"

// ObjectStore keeps generated files (check-in posters) and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, folder, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}
