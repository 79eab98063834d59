package app

import "strings"

const tracedQueryLimit = 512

// formatDBQueryForTrace flattens a SQL statement into a single line and caps
// its length so multi-line queries stay readable as span attributes.
func formatDBQueryForTrace(query string) string {
	flat := strings.Join(strings.Fields(query), " ")
	if len(flat) > tracedQueryLimit {
		return flat[:tracedQueryLimit] + "..."
	}
	return flat
}
