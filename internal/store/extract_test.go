package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStrCandidates(t *testing.T) {
	data := map[string]interface{}{
		"message": "fallback",
		"text":    "primary",
	}
	require.Equal(t, "primary", Str(data, "text", "message"))
	require.Equal(t, "fallback", Str(data, "body", "message"))
	require.Equal(t, "", Str(data, "missing"))
}

func TestStrDottedPath(t *testing.T) {
	data := map[string]interface{}{
		"name": map[string]interface{}{"first": "Alice"},
	}
	require.Equal(t, "Alice", Str(data, "name.first"))
	require.Equal(t, "", Str(data, "name.last"))
}

func TestStrSkipsEmpty(t *testing.T) {
	data := map[string]interface{}{"text": "  ", "body": "real"}
	require.Equal(t, "real", Str(data, "text", "body"))
}

func TestAsTimeShapes(t *testing.T) {
	want := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	got, ok := AsTime(want)
	require.True(t, ok)
	require.Equal(t, want, got)

	got, ok = AsTime(map[string]interface{}{"seconds": float64(want.Unix())})
	require.True(t, ok)
	require.Equal(t, want, got)

	got, ok = AsTime(map[string]interface{}{"_seconds": float64(want.Unix())})
	require.True(t, ok)
	require.Equal(t, want, got)

	got, ok = AsTime("2026-03-15T10:30:00Z")
	require.True(t, ok)
	require.True(t, got.Equal(want))

	got, ok = AsTime("2026-03-15")
	require.True(t, ok)
	require.Equal(t, 2026, got.Year())

	got, ok = AsTime(float64(want.UnixMilli()))
	require.True(t, ok)
	require.Equal(t, want, got)

	got, ok = AsTime(float64(want.Unix()))
	require.True(t, ok)
	require.Equal(t, want, got)

	_, ok = AsTime("not a date")
	require.False(t, ok)
	_, ok = AsTime(nil)
	require.False(t, ok)
}

func TestNumParsesStrings(t *testing.T) {
	n, ok := Num(map[string]interface{}{"amount": "12.5"}, "amount")
	require.True(t, ok)
	require.Equal(t, 12.5, n)

	_, ok = Num(map[string]interface{}{"amount": "abc"}, "amount")
	require.False(t, ok)
}

func TestBoolStrict(t *testing.T) {
	b, ok := Bool(map[string]interface{}{"resolved": true}, "resolved")
	require.True(t, ok)
	require.True(t, b)

	_, ok = Bool(map[string]interface{}{"resolved": "true"}, "resolved")
	require.False(t, ok)
}
