package repository

import (
	"fmt"
	"strings"
	"time"
)

// Consistency selects how fresh Search results must be. Backends that only
// offer one level ignore the hint.
type Consistency string

const (
	// ConsistencyEventual allows index-backed, possibly stale results.
	ConsistencyEventual Consistency = "eventual"
	// ConsistencyTransactional requires results consistent with committed
	// writes from this process.
	ConsistencyTransactional Consistency = "transactional"
)

// Query is an opaque query descriptor composed of predicate fragments.
// The pipeline builds it once and hands it to Port.Search unchanged for
// every page of a scan; backends compile the predicates into their native
// query language.
type Query struct {
	// NameExact matches the item name verbatim (worksheet lookups).
	NameExact string

	// Keyword is a prefix match over name, title and description.
	Keyword string

	// Mimetype filters on the stored content mimetype.
	Mimetype string

	// State filters on the lifecycle state property.
	State string

	// WithoutFlag excludes items carrying the named flag.
	WithoutFlag string

	// ModifiedBefore / ModifiedAfter bound the modified date property.
	// Zero values leave the bound open.
	ModifiedBefore time.Time
	ModifiedAfter  time.Time

	// Consistency is the freshness hint for this scan.
	Consistency Consistency
}

// QueryBuilder composes predicate fragments into a Query. The zero builder
// matches every content item.
type QueryBuilder struct {
	q Query
}

// NewQueryBuilder returns a builder with transactional consistency, the
// safer default for mutation scans.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{q: Query{Consistency: ConsistencyTransactional}}
}

// NameExact restricts to items whose name matches verbatim.
func (b *QueryBuilder) NameExact(name string) *QueryBuilder {
	b.q.NameExact = strings.TrimSpace(name)
	return b
}

// Keyword adds a prefix filter over name, title and description.
func (b *QueryBuilder) Keyword(kw string) *QueryBuilder {
	b.q.Keyword = strings.TrimSpace(kw)
	return b
}

// Mimetype adds a content mimetype filter.
func (b *QueryBuilder) Mimetype(mt string) *QueryBuilder {
	b.q.Mimetype = strings.TrimSpace(mt)
	return b
}

// State adds a lifecycle state filter.
func (b *QueryBuilder) State(state string) *QueryBuilder {
	b.q.State = state
	return b
}

// WithoutFlag excludes items already carrying the flag.
func (b *QueryBuilder) WithoutFlag(flag string) *QueryBuilder {
	b.q.WithoutFlag = flag
	return b
}

// ModifiedBefore bounds the modified date from above (exclusive).
func (b *QueryBuilder) ModifiedBefore(t time.Time) *QueryBuilder {
	b.q.ModifiedBefore = t
	return b
}

// ModifiedAfter bounds the modified date from below (exclusive).
func (b *QueryBuilder) ModifiedAfter(t time.Time) *QueryBuilder {
	b.q.ModifiedAfter = t
	return b
}

// Consistency overrides the freshness hint.
func (b *QueryBuilder) Consistency(c Consistency) *QueryBuilder {
	b.q.Consistency = c
	return b
}

// Build returns the composed query.
func (b *QueryBuilder) Build() Query {
	return b.q
}

// String renders the query in the repository's full-text syntax. The
// rendering is used for logging and for backends that execute text queries
// natively; the structured predicates remain authoritative.
func (q Query) String() string {
	var sb strings.Builder
	sb.WriteString(`TYPE:"content"`)

	if q.NameExact != "" {
		fmt.Fprintf(&sb, ` AND =name:"%s"`, escapeQueryTerm(q.NameExact))
	}
	if q.Keyword != "" {
		kw := escapeQueryTerm(q.Keyword)
		fmt.Fprintf(&sb, ` AND (name:"%s*" OR title:"%s*" OR description:"%s*")`, kw, kw, kw)
	}
	if q.Mimetype != "" {
		fmt.Fprintf(&sb, ` AND content.mimetype:"%s"`, escapeQueryTerm(q.Mimetype))
	}
	if q.State != "" {
		fmt.Fprintf(&sb, ` AND =%s:"%s"`, PropState, escapeQueryTerm(q.State))
	}
	if q.WithoutFlag != "" {
		fmt.Fprintf(&sb, ` AND NOT FLAG:"%s"`, escapeQueryTerm(q.WithoutFlag))
	}
	if !q.ModifiedBefore.IsZero() {
		fmt.Fprintf(&sb, ` AND %s:[MIN TO "%s">`, PropModified, FormatTime(q.ModifiedBefore))
	}
	if !q.ModifiedAfter.IsZero() {
		fmt.Fprintf(&sb, ` AND %s:<"%s" TO MAX]`, PropModified, FormatTime(q.ModifiedAfter))
	}

	return sb.String()
}

// escapeQueryTerm neutralizes embedded quotes in user-supplied terms.
func escapeQueryTerm(term string) string {
	return strings.ReplaceAll(term, `"`, `\"`)
}
