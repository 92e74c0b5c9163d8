package store

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const maxBatchWrites = 450 // headroom under the 500-write Firestore batch limit

type firestoreStore struct {
	client *firestore.Client
}

// NewFirestore wraps a Firestore client in the Store interface.
func NewFirestore(client *firestore.Client) Store {
	return &firestoreStore{client: client}
}

func (s *firestoreStore) Get(ctx context.Context, path string) (*Document, error) {
	snap, err := s.client.Doc(path).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !snap.Exists() {
		return nil, ErrNotFound
	}
	return &Document{ID: snap.Ref.ID, Path: relPath(snap.Ref), Data: snap.Data()}, nil
}

func (s *firestoreStore) Run(ctx context.Context, q Query) ([]*Document, error) {
	var fq firestore.Query
	if q.Group {
		fq = s.client.CollectionGroup(q.Collection).Query
	} else {
		fq = s.client.Collection(q.Collection).Query
	}
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
		if q.StartAfter != nil {
			fq = fq.StartAfter(q.StartAfter)
		}
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	snaps, err := fq.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, &Document{ID: snap.Ref.ID, Path: relPath(snap.Ref), Data: snap.Data()})
	}
	return docs, nil
}

func (s *firestoreStore) Count(ctx context.Context, collection string) (int64, error) {
	ag := s.client.Collection(collection).NewAggregationQuery().WithCount("all")
	res, err := ag.Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("store: unexpected count aggregate result %T", res["all"])
	}
	return v.GetIntegerValue(), nil
}

func (s *firestoreStore) Batch() WriteBatch {
	return &firestoreBatch{store: s}
}

const (
	opSetMerge = iota
	opCreate
	opDelete
)

type batchOp struct {
	kind   int
	path   string
	fields map[string]interface{}
}

type firestoreBatch struct {
	store *firestoreStore
	ops   []batchOp
}

func (b *firestoreBatch) SetMerge(path string, fields map[string]interface{}) {
	b.ops = append(b.ops, batchOp{kind: opSetMerge, path: path, fields: fields})
}

func (b *firestoreBatch) Create(collection string, fields map[string]interface{}) string {
	ref := b.store.client.Collection(collection).NewDoc()
	path := relPath(ref)
	b.ops = append(b.ops, batchOp{kind: opCreate, path: path, fields: fields})
	return path
}

func (b *firestoreBatch) Delete(path string) {
	b.ops = append(b.ops, batchOp{kind: opDelete, path: path})
}

func (b *firestoreBatch) Len() int { return len(b.ops) }

// Commit applies ops in chunks of maxBatchWrites, committed sequentially.
// There is no rollback: a failing chunk leaves earlier chunks applied.
func (b *firestoreBatch) Commit(ctx context.Context) error {
	for start := 0; start < len(b.ops); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(b.ops) {
			end = len(b.ops)
		}
		wb := b.store.client.Batch()
		for _, op := range b.ops[start:end] {
			ref := b.store.client.Doc(op.path)
			switch op.kind {
			case opSetMerge:
				wb.Set(ref, fsFields(op.fields), firestore.MergeAll)
			case opCreate:
				wb.Set(ref, fsFields(op.fields))
			case opDelete:
				wb.Delete(ref)
			}
		}
		if _, err := wb.Commit(ctx); err != nil {
			return fmt.Errorf("store: batch commit: %w", err)
		}
	}
	b.ops = nil
	return nil
}

// fsFields maps the store sentinels onto their Firestore equivalents.
func fsFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case incSentinel:
			out[k] = firestore.Increment(t.n)
		case serverTimestampSentinel:
			out[k] = firestore.ServerTimestamp
		case map[string]interface{}:
			out[k] = fsFields(t)
		default:
			out[k] = v
		}
	}
	return out
}

// relPath strips the projects/.../documents/ prefix off a full resource name.
func relPath(ref *firestore.DocumentRef) string {
	const marker = "/documents/"
	if i := strings.Index(ref.Path, marker); i >= 0 {
		return ref.Path[i+len(marker):]
	}
	return ref.Path
}
