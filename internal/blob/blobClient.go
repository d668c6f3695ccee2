package blob

import "context"

// Reader fetches raw document bytes from blob storage. The document name is
// the object key inside the configured container.
type Reader interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}
