package bookhaven

import "context"

// Catalog provides the current set of books offered by the store.
type Catalog interface {
	// Books returns the current catalog in display order.
	Books(ctx context.Context) ([]*Book, error)

	// Refresh discards any cached catalog and reads it again.
	Refresh(ctx context.Context) ([]*Book, error)
}
