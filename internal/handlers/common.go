package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// queryInt parses an integer query parameter, returning dflt when absent or
// malformed.
func queryInt(r *http.Request, name string, dflt int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return dflt
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return dflt
	}
	return v
}
