package repository

import (
	"fmt"
	"strings"
)

// sqlDialect abstracts the placeholder syntax difference between the
// SQLite and Postgres backends; the schema and predicates are otherwise
// shared.
type sqlDialect int

const (
	dialectSQLite sqlDialect = iota
	dialectPostgres
)

func (d sqlDialect) placeholder(n int) string {
	if d == dialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// compileSearchSQL turns the query predicates into a SELECT over the
// items table. Every predicate becomes an EXISTS (or NOT EXISTS) subquery
// against the property, flag or content tables, keeping the scan order
// deterministic by primary key.
func compileSearchSQL(q Query, skip, limit int, d sqlDialect) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	ph := func() string {
		return d.placeholder(len(args) + 1)
	}
	propExists := func(key, op, value string) string {
		clause := fmt.Sprintf(
			"EXISTS (SELECT 1 FROM item_properties p WHERE p.ref = i.ref AND p.key = '%s' AND p.value %s %s)",
			key, op, ph())
		args = append(args, value)
		return clause
	}

	if q.NameExact != "" {
		where = append(where, propExists(PropName, "=", q.NameExact))
	}
	if q.Keyword != "" {
		kw := likePrefix(q.Keyword)
		var ors []string
		for _, key := range []string{PropName, PropTitle, PropDescription} {
			clause := fmt.Sprintf(
				`EXISTS (SELECT 1 FROM item_properties p WHERE p.ref = i.ref AND p.key = '%s' AND p.value LIKE %s ESCAPE '\')`,
				key, ph())
			args = append(args, kw)
			ors = append(ors, clause)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	if q.Mimetype != "" {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM item_content c WHERE c.ref = i.ref AND c.mimetype = %s)", ph()))
		args = append(args, q.Mimetype)
	}
	if q.State != "" {
		where = append(where, propExists(PropState, "=", q.State))
	}
	if q.WithoutFlag != "" {
		where = append(where, fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM item_flags f WHERE f.ref = i.ref AND f.flag = %s)", ph()))
		args = append(args, q.WithoutFlag)
	}
	// RFC 3339 text compares in temporal order.
	if !q.ModifiedBefore.IsZero() {
		where = append(where, propExists(PropModified, "<", FormatTime(q.ModifiedBefore)))
	}
	if !q.ModifiedAfter.IsZero() {
		where = append(where, propExists(PropModified, ">", FormatTime(q.ModifiedAfter)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT i.ref FROM items i")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY i.ref")

	sb.WriteString(fmt.Sprintf(" LIMIT %s", ph()))
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" OFFSET %s", ph()))
	args = append(args, skip)

	return sb.String(), args
}

// likePrefix escapes LIKE metacharacters in a keyword and appends the
// prefix wildcard.
func likePrefix(kw string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(kw)
	return escaped + "%"
}
