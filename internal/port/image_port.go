package port

import "context"

type ImageStore interface {
	// Put stores an image and returns its public URL.
	Put(ctx context.Context, name string, data []byte) (string, error)
}
