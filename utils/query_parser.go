package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// DateRange holds parsed YYYY-MM-DD filter parameters. Empty means unbounded.
type DateRange struct {
	From string
	To   string
}

// ParseDateRange extracts and validates a date range from the query string
func ParseDateRange(r *http.Request, fromKey, toKey string) (DateRange, error) {
	q := r.URL.Query()
	dr := DateRange{From: q.Get(fromKey), To: q.Get(toKey)}

	var from, to time.Time
	var err error
	if dr.From != "" {
		if from, err = time.Parse(DateLayout, dr.From); err != nil {
			return DateRange{}, fmt.Errorf("invalid %s format. Use YYYY-MM-DD (e.g., 2025-11-13)", fromKey)
		}
	}
	if dr.To != "" {
		if to, err = time.Parse(DateLayout, dr.To); err != nil {
			return DateRange{}, fmt.Errorf("invalid %s format. Use YYYY-MM-DD (e.g., 2025-11-13)", toKey)
		}
	}
	if dr.From != "" && dr.To != "" && to.Before(from) {
		return DateRange{}, fmt.Errorf("%s must not be before %s", toKey, fromKey)
	}
	return dr, nil
}

// ParseLimit reads a positive integer query parameter, falling back to def.
func ParseLimit(r *http.Request, key string, def int) (int, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return def, nil
	}
	n, err := strconv.Atoi(str)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
