// Package sqlxrepos implements the core repositories with hand-written SQL
// over sqlx on Postgres.
package sqlxrepos

import (
	"strings"

	"github.com/lib/pq"

	"github.com/acadyo/acadyo/core"
)

const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
)

// orderBy renders an ORDER BY clause, falling back to the given default.
func orderBy(ordering []core.DBOrdering, fallback string) string {
	if len(ordering) == 0 {
		return " ORDER BY " + fallback
	}
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		clauses = append(clauses, ord.String())
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
