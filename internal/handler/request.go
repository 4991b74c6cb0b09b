package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"conduit/internal/httputil"
	"conduit/internal/model"
)

const maxJSONBodyBytes = 1 << 20 // 1MB is plenty for JSON

// decodeJSON reads the request body into dst, writing the error response and
// returning false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteInvalidBody(w)
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.InvalidRequest("Query", name+" must be an integer")
	}
	return v, nil
}

// parsePage reads offset and limit; bounds are applied by the query engine.
func parsePage(r *http.Request) (offset, limit int, err error) {
	if offset, err = queryInt(r, "offset", 0); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit", model.DefaultLimit); err != nil {
		return 0, 0, err
	}
	return offset, limit, nil
}
