package helper_util

import (
	"time"
)

// ParseTime parses an RFC3339 timestamp, returning the zero time on failure.
func ParseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StringSlice converts a Neo4j list property to []string, skipping anything
// that is not a string.
func StringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
