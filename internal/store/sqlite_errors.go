package store

import "strings"

// isUniqueViolation reports whether err is a SQLite UNIQUE/PRIMARY KEY
// constraint violation. modernc.org/sqlite surfaces these as plain errors
// whose text contains "constraint failed: UNIQUE" — there is no typed
// sentinel exported for it, so this matches on message text like the
// driver's own tests do.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
