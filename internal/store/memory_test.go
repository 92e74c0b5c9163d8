package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemStoreGet(t *testing.T) {
	st := NewMemStore()
	st.Put("users/u1", map[string]interface{}{"name": "Alice"})

	doc, err := st.Get(context.Background(), "users/u1")
	require.NoError(t, err)
	require.Equal(t, "u1", doc.ID)
	require.Equal(t, "Alice", doc.Data["name"])

	_, err = st.Get(context.Background(), "users/nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreRangeQueryTypeStrict(t *testing.T) {
	st := NewMemStore()
	st.Put("messages/m1", map[string]interface{}{"createdAt": time.Now()})
	st.Put("messages/m2", map[string]interface{}{"createdAt": "2026-01-01T00:00:00Z"})

	docs, err := st.Run(context.Background(), Query{
		Collection: "messages",
		Filters:    []Filter{{Field: "createdAt", Op: ">=", Value: time.Now().Add(-time.Hour)}},
	})
	require.NoError(t, err)
	// The string-typed timestamp does not match a time-typed range filter.
	require.Len(t, docs, 1)
	require.Equal(t, "m1", docs[0].ID)
}

func TestMemStoreOrderByExcludesMissingField(t *testing.T) {
	st := NewMemStore()
	st.Put("messages/m1", map[string]interface{}{"createdAt": time.Now(), "text": "a"})
	st.Put("messages/m2", map[string]interface{}{"text": "b"})

	docs, err := st.Run(context.Background(), Query{Collection: "messages", OrderBy: "createdAt"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestMemStoreOrderAndCursor(t *testing.T) {
	st := NewMemStore()
	base := time.Now()
	st.Put("items/a", map[string]interface{}{"createdAt": base})
	st.Put("items/b", map[string]interface{}{"createdAt": base.Add(time.Minute)})
	st.Put("items/c", map[string]interface{}{"createdAt": base.Add(2 * time.Minute)})

	docs, err := st.Run(context.Background(), Query{Collection: "items", OrderBy: "createdAt", Desc: true})
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})

	docs, err = st.Run(context.Background(), Query{
		Collection: "items",
		OrderBy:    "createdAt",
		StartAfter: base,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "b", docs[0].ID)
}

func TestMemStoreCollectionGroup(t *testing.T) {
	st := NewMemStore()
	st.Put("chatRooms/r1/messages/m1", map[string]interface{}{"text": "sub"})
	st.Put("messages/m2", map[string]interface{}{"text": "top"})

	top, err := st.Run(context.Background(), Query{Collection: "messages"})
	require.NoError(t, err)
	require.Len(t, top, 1)

	group, err := st.Run(context.Background(), Query{Collection: "messages", Group: true})
	require.NoError(t, err)
	require.Len(t, group, 2)
}

func TestMemStoreQueryErrInjection(t *testing.T) {
	st := NewMemStore()
	st.Put("messages/m1", map[string]interface{}{"text": "x"})
	st.QueryErr = func(q Query) error {
		if q.OrderBy != "" {
			return context.DeadlineExceeded
		}
		return nil
	}

	_, err := st.Run(context.Background(), Query{Collection: "messages", OrderBy: "createdAt"})
	require.Error(t, err)

	docs, err := st.Run(context.Background(), Query{Collection: "messages"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestBatchMergeSentinels(t *testing.T) {
	st := NewMemStore()
	st.Put("users/u1", map[string]interface{}{"warningsCount": float64(2)})

	batch := st.Batch()
	batch.SetMerge("users/u1", map[string]interface{}{
		"warningsCount": Inc(1),
		"lastWarnedAt":  ServerTimestamp,
		"moderation": map[string]interface{}{
			"lastAction": "warn",
		},
	})
	require.Equal(t, 1, batch.Len())
	require.NoError(t, batch.Commit(context.Background()))

	doc, _ := st.Get(context.Background(), "users/u1")
	n, _ := Num(doc.Data, "warningsCount")
	require.Equal(t, float64(3), n)
	_, ok := TimeAt(doc.Data, "lastWarnedAt")
	require.True(t, ok)
	require.Equal(t, "warn", Str(Sub(doc.Data, "moderation"), "lastAction"))
}

func TestBatchMergePreservesSiblings(t *testing.T) {
	st := NewMemStore()
	st.Put("users/u1", map[string]interface{}{
		"moderation": map[string]interface{}{"lastAction": "warn", "note": "keep"},
	})

	batch := st.Batch()
	batch.SetMerge("users/u1", map[string]interface{}{
		"moderation": map[string]interface{}{"lastAction": "ignore"},
	})
	require.NoError(t, batch.Commit(context.Background()))

	doc, _ := st.Get(context.Background(), "users/u1")
	mod := Sub(doc.Data, "moderation")
	require.Equal(t, "ignore", Str(mod, "lastAction"))
	require.Equal(t, "keep", Str(mod, "note"))
}

func TestBatchCreateAndDelete(t *testing.T) {
	st := NewMemStore()
	batch := st.Batch()
	path := batch.Create("moderationLogs", map[string]interface{}{"action": "ban"})
	require.NoError(t, batch.Commit(context.Background()))

	doc, err := st.Get(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "ban", doc.Data["action"])

	del := st.Batch()
	del.Delete(path)
	require.NoError(t, del.Commit(context.Background()))
	_, err = st.Get(context.Background(), path)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreCount(t *testing.T) {
	st := NewMemStore()
	st.Put("transactions/t1", map[string]interface{}{})
	st.Put("transactions/t2", map[string]interface{}{})
	st.Put("users/u1", map[string]interface{}{})

	n, err := st.Count(context.Background(), "transactions")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	st.CountErr = context.DeadlineExceeded
	_, err = st.Count(context.Background(), "transactions")
	require.Error(t, err)
}
