package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store with Firestore-like query semantics. It
// backs the unit tests; QueryErr lets a test fail selected query shapes to
// drive the ingestion fallback chains.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]interface{}

	// QueryErr, when set, is consulted before every Run. A non-nil return
	// makes that query fail, as an unsupported index would.
	QueryErr func(q Query) error
	// CountErr, when set, makes Count fail so callers take the scan fallback.
	CountErr error
}

func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]map[string]interface{})}
}

// Put seeds or replaces a document wholesale.
func (s *MemStore) Put(path string, data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = deepCopy(data)
}

func (s *MemStore) Get(_ context.Context, path string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: docID(path), Path: path, Data: deepCopy(data)}, nil
}

func (s *MemStore) Run(_ context.Context, q Query) ([]*Document, error) {
	if s.QueryErr != nil {
		if err := s.QueryErr(q); err != nil {
			return nil, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Document
	for path, data := range s.docs {
		if !s.inCollection(path, q) {
			continue
		}
		if q.OrderBy != "" {
			if _, ok := data[q.OrderBy]; !ok {
				continue // docs missing the ordered field are excluded
			}
		}
		if !matchFilters(data, q.Filters) {
			continue
		}
		out = append(out, &Document{ID: docID(path), Path: path, Data: deepCopy(data)})
	}

	sort.Slice(out, func(i, j int) bool {
		if q.OrderBy != "" {
			c, ok := compareValues(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
			if ok && c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return out[i].Path < out[j].Path
	})

	if q.OrderBy != "" && q.StartAfter != nil {
		trimmed := out[:0]
		for _, d := range out {
			c, ok := compareValues(d.Data[q.OrderBy], q.StartAfter)
			after := ok && ((q.Desc && c < 0) || (!q.Desc && c > 0))
			if after {
				trimmed = append(trimmed, d)
			}
		}
		out = trimmed
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemStore) Count(_ context.Context, collection string) (int64, error) {
	if s.CountErr != nil {
		return 0, s.CountErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for path := range s.docs {
		if parentCollection(path) == collection {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) Batch() WriteBatch {
	return &memBatch{store: s}
}

func (s *MemStore) inCollection(path string, q Query) bool {
	if q.Group {
		return lastCollectionSegment(path) == q.Collection
	}
	return parentCollection(path) == q.Collection
}

type memBatch struct {
	store *MemStore
	ops   []batchOp
}

func (b *memBatch) SetMerge(path string, fields map[string]interface{}) {
	b.ops = append(b.ops, batchOp{kind: opSetMerge, path: path, fields: fields})
}

func (b *memBatch) Create(collection string, fields map[string]interface{}) string {
	path := collection + "/" + uuid.NewString()
	b.ops = append(b.ops, batchOp{kind: opCreate, path: path, fields: fields})
	return path
}

func (b *memBatch) Delete(path string) {
	b.ops = append(b.ops, batchOp{kind: opDelete, path: path})
}

func (b *memBatch) Len() int { return len(b.ops) }

func (b *memBatch) Commit(_ context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	now := time.Now().UTC()
	for _, op := range b.ops {
		switch op.kind {
		case opSetMerge:
			cur := b.store.docs[op.path]
			if cur == nil {
				cur = make(map[string]interface{})
			}
			mergeFields(cur, op.fields, now)
			b.store.docs[op.path] = cur
		case opCreate:
			fresh := make(map[string]interface{})
			mergeFields(fresh, op.fields, now)
			b.store.docs[op.path] = fresh
		case opDelete:
			delete(b.store.docs, op.path)
		}
	}
	b.ops = nil
	return nil
}

func mergeFields(dst, src map[string]interface{}, now time.Time) {
	for k, v := range src {
		switch t := v.(type) {
		case incSentinel:
			n, _ := asNumber(dst[k])
			dst[k] = n + float64(t.n)
		case serverTimestampSentinel:
			dst[k] = now
		case map[string]interface{}:
			sub, ok := dst[k].(map[string]interface{})
			if !ok {
				sub = make(map[string]interface{})
			}
			mergeFields(sub, t, now)
			dst[k] = sub
		default:
			dst[k] = v
		}
	}
}

func matchFilters(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok {
			return false
		}
		c, comparable := compareValues(v, f.Value)
		if !comparable {
			return false
		}
		switch f.Op {
		case "==":
			if c != 0 {
				return false
			}
		case ">=":
			if c < 0 {
				return false
			}
		case ">":
			if c <= 0 {
				return false
			}
		case "<=":
			if c > 0 {
				return false
			}
		case "<":
			if c >= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues compares like types only; mixed types do not match, the same
// way a Firestore range filter skips fields of another type.
func compareValues(a, b interface{}) (int, bool) {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case at.Before(bt):
			return -1, true
		case at.After(bt):
			return 1, true
		}
		return 0, true
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case ab == bb:
			return 0, true
		case !ab:
			return -1, true
		}
		return 1, true
	}
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func docID(path string) string {
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}

func parentCollection(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func lastCollectionSegment(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

func deepCopy(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if m, ok := v.(map[string]interface{}); ok {
			out[k] = deepCopy(m)
			continue
		}
		if arr, ok := v.([]interface{}); ok {
			cp := make([]interface{}, len(arr))
			copy(cp, arr)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}
