package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL appends disable_prepared_binary_result=yes to the DSN when
// requested. Connection poolers in transaction mode choke on prepared binary
// results, so the flag is a deploy-time escape hatch.
func normalizeDBURL(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	params := u.Query()
	if params.Get("disable_prepared_binary_result") == "" {
		params.Set("disable_prepared_binary_result", "yes")
		u.RawQuery = params.Encode()
	}

	return u.String()
}

// dbNameFromURL extracts the database name from either a postgres:// URL or
// a key=value DSN, for span attribution only. Unparseable input yields "".
func dbNameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)

	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		if name := strings.Trim(u.Path, "/ "); name != "" {
			return name
		}
	}

	for _, field := range strings.Fields(raw) {
		value, ok := strings.CutPrefix(field, "dbname=")
		if !ok {
			continue
		}
		if name := strings.Trim(value, `"' `); name != "" {
			return name
		}
	}

	return ""
}
