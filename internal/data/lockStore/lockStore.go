package lockStore

import "context"

// DocumentLocker serializes reindex runs per document. Acquire blocks until
// the lease is held or ctx expires; callers must invoke the returned release.
type DocumentLocker interface {
	Acquire(ctx context.Context, docName string) (release func(), err error)
}
