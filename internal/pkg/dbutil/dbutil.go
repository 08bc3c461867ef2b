// Package dbutil bridges gendry-built SQL, which speaks MySQL dialect, to
// the Postgres driver used by the repos.
package dbutil

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// gendry renders pagination as the MySQL-only `LIMIT offset, count`.
var limitRegex = regexp.MustCompile(`(?i)LIMIT\s+\?\s*,\s*\?`)

// Finalize converts a gendry query into one lib/pq accepts: the MySQL
// LIMIT clause becomes LIMIT/OFFSET (swapping the two bound args to match)
// and every `?` placeholder is rebound to `$n`.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	if loc := limitRegex.FindStringIndex(query); loc != nil {
		qCount := strings.Count(query[:loc[0]], "?")
		if qCount+1 < len(args) {
			args[qCount], args[qCount+1] = args[qCount+1], args[qCount]
			query = limitRegex.ReplaceAllString(query, "LIMIT ? OFFSET ?")
		}
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}

// IsConflict reports whether err is a Postgres unique violation, however
// deeply it is wrapped.
func IsConflict(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
