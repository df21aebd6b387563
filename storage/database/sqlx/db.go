// Package sqlxrepos implements the core repositories on PostgreSQL
// through sqlx, with squirrel building the queries.
package sqlxrepos

import (
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/viserknight/mtss/core"
)

// psql builds queries with $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// orderByClause renders ORDER BY terms for ordering, keeping only fields
// present in the allowed column list. Ordering fields come straight from
// the request, so anything not whitelisted is dropped. Returns "" when no
// usable term remains.
func orderByClause(ordering []core.DBOrdering, allowed []string) string {
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		for _, col := range allowed {
			if ord.Field == col {
				terms = append(terms, ord.String())
				break
			}
		}
	}
	return strings.Join(terms, ", ")
}

// trapNoRowsErr maps psql "no rows" err to the domain's not-found error.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}
