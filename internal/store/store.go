package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists at the path.
var ErrNotFound = errors.New("store: document not found")

// Document is a schemaless record read from the document store.
type Document struct {
	ID   string
	Path string
	Data map[string]interface{}
}

// Filter is a single field predicate. Op is a Firestore-style operator
// ("==", ">=", "<", "<=", ">").
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Query describes a read against one collection. Collection may be a
// subcollection path ("chatRooms/abc/messages"). Group=true runs a
// collection-group query over every subcollection with that id.
type Query struct {
	Collection string
	Group      bool
	Filters    []Filter
	OrderBy    string
	Desc       bool
	Limit      int
	StartAfter interface{} // cursor value for the OrderBy field
}

// WriteBatch accumulates merge-writes, creates and deletes. Commit chunks at
// the underlying per-batch write limit and commits chunks sequentially; a
// failed chunk aborts the rest with earlier chunks already applied.
type WriteBatch interface {
	SetMerge(path string, fields map[string]interface{})
	Create(collection string, fields map[string]interface{}) (path string)
	Delete(path string)
	Len() int
	Commit(ctx context.Context) error
}

// Store is the document-store client surface the services depend on.
// It is injected everywhere so the query fallback chains are testable
// without a live backend.
type Store interface {
	Get(ctx context.Context, path string) (*Document, error)
	Run(ctx context.Context, q Query) ([]*Document, error)
	Batch() WriteBatch
	Count(ctx context.Context, collection string) (int64, error)
}

type incSentinel struct{ n int64 }

type serverTimestampSentinel struct{}

// Inc marks a field for an atomic server-side increment in a merge-write.
func Inc(n int64) interface{} { return incSentinel{n: n} }

// ServerTimestamp marks a field to be set to the store's server time on write.
var ServerTimestamp interface{} = serverTimestampSentinel{}
