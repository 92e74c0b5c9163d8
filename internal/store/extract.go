package store

import (
	"strconv"
	"strings"
	"time"
)

// Mobile clients wrote several generations of schema; reads try an ordered
// list of candidate field names and shapes and take the first that decodes.

// Str returns the first non-empty string among the candidate keys. Keys may
// be dotted paths ("name.first").
func Str(data map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := lookup(data, k); ok {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// TimeAt returns the first decodable timestamp among the candidate keys.
func TimeAt(data map[string]interface{}, keys ...string) (time.Time, bool) {
	for _, k := range keys {
		if v, ok := lookup(data, k); ok {
			if t, ok := AsTime(v); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Num returns the first numeric value among the candidate keys. Numeric
// strings count.
func Num(data map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := lookup(data, k); ok {
			if n, ok := asNumber(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// Bool returns the value of the first key holding a real bool.
func Bool(data map[string]interface{}, keys ...string) (bool, bool) {
	for _, k := range keys {
		if v, ok := lookup(data, k); ok {
			if b, isBool := v.(bool); isBool {
				return b, true
			}
		}
	}
	return false, false
}

// Sub returns a nested map field, or nil.
func Sub(data map[string]interface{}, key string) map[string]interface{} {
	if v, ok := lookup(data, key); ok {
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

// AsTime decodes the timestamp shapes seen in the wild: native timestamps,
// {seconds}/{_seconds} maps, ISO-8601 strings and epoch numbers.
func AsTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	case map[string]interface{}:
		if secs, ok := asNumber(first(t, "seconds", "_seconds")); ok {
			return time.Unix(int64(secs), 0).UTC(), true
		}
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	case float64:
		return epochToTime(t), true
	case int64:
		return epochToTime(float64(t)), true
	case int:
		return epochToTime(float64(t)), true
	}
	return time.Time{}, false
}

// Values above ~1e12 are epoch milliseconds, below that epoch seconds.
func epochToTime(n float64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	return time.Unix(int64(n), 0).UTC()
}

func lookup(data map[string]interface{}, key string) (interface{}, bool) {
	if data == nil {
		return nil, false
	}
	if !strings.Contains(key, ".") {
		v, ok := data[key]
		return v, ok
	}
	parts := strings.Split(key, ".")
	cur := interface{}(data)
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func first(data map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := data[k]; ok {
			return v
		}
	}
	return nil
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
