package v1

import (
	"net/http"
	"strconv"
)

// DefaultLimit is the default number of attempts returned.
const DefaultLimit = 20

// MaxLimit is the maximum allowed limit.
const MaxLimit = 100

// ParseLimit reads the limit query parameter. Missing or invalid values
// yield DefaultLimit; values above MaxLimit are clamped.
func ParseLimit(r *http.Request) int {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return DefaultLimit
	}
	return min(n, MaxLimit)
}
