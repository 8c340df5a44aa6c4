// Package query builds feed query URIs from typed parameter sets. A
// Query holds the standard parameters every feed accepts; service
// packages extend it with their own parameters through the ParamSource
// hook.
package query

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// PaginationType selects how a query advances through a multi-page
// result set.
type PaginationType int

const (
	// PaginationIndexed pages by incrementing the start index. Always
	// has a notional next page.
	PaginationIndexed PaginationType = iota
	// PaginationPages pages by following the next/previous URIs the
	// server put in the feed.
	PaginationPages
	// PaginationTokens pages by sending the feed's next-page token.
	// There is no way back to a previous page.
	PaginationTokens
)

// URIBuilder accumulates path segments and query parameters onto a base
// feed URI, tracking whether the '?' separator has been written yet.
type URIBuilder struct {
	buf     strings.Builder
	started bool
}

// NewURIBuilder starts a builder on feedURI. A '?' already present in
// the base URI means further parameters join with '&'.
func NewURIBuilder(feedURI string) *URIBuilder {
	b := &URIBuilder{started: strings.Contains(feedURI, "?")}
	b.buf.WriteString(feedURI)
	return b
}

// Path appends a raw path segment. Only valid before the first Param.
func (b *URIBuilder) Path(segment string) {
	b.buf.WriteString(segment)
}

// Param appends one query parameter, escaping the value.
func (b *URIBuilder) Param(name, value string) {
	if b.started {
		b.buf.WriteByte('&')
	} else {
		b.buf.WriteByte('?')
		b.started = true
	}
	b.buf.WriteString(name)
	b.buf.WriteByte('=')
	b.buf.WriteString(url.QueryEscape(value))
}

// RawParam appends a parameter whose value is already URI-safe.
func (b *URIBuilder) RawParam(name, value string) {
	if b.started {
		b.buf.WriteByte('&')
	} else {
		b.buf.WriteByte('?')
		b.started = true
	}
	b.buf.WriteString(name)
	b.buf.WriteByte('=')
	b.buf.WriteString(value)
}

// BoolParam appends name=true or name=false.
func (b *URIBuilder) BoolParam(name string, value bool) {
	if value {
		b.Param(name, "true")
	} else {
		b.Param(name, "false")
	}
}

// IntParam appends a numeric parameter.
func (b *URIBuilder) IntParam(name string, value int) {
	b.Param(name, fmt.Sprintf("%d", value))
}

// TimeParam appends a parameter carrying an ISO-8601 timestamp. The
// timestamp is appended verbatim; its characters are all URI-safe in a
// query component.
func (b *URIBuilder) TimeParam(name string, value time.Time) {
	b.RawParam(name, parsable.FormatISO8601(value))
}

func (b *URIBuilder) String() string { return b.buf.String() }

// ParamSource is implemented by query types that append parameters
// beyond the standard set. BaseQuery exposes the embedded Query so the
// common machinery can reach pagination state.
type ParamSource interface {
	ExtraParams(b *URIBuilder)
	BaseQuery() *Query
}

// Query is the standard parameter set shared by every feed query.
// Mutating any parameter discards the query's ETag, since the cached
// result set it identified no longer matches.
type Query struct {
	q            string
	qInternal    string
	categories   string
	author       string
	updatedMin   time.Time
	updatedMax   time.Time
	publishedMin time.Time
	publishedMax time.Time
	startIndex   int
	strict       bool
	maxResults   int
	etag         string

	pagination      PaginationType
	nextURI         string
	previousURI     string
	nextPageToken   string
	useNextPage     bool
	usePreviousPage bool
}

// New creates a query with the given search terms. Pass "" for an
// unrestricted query.
func New(q string) *Query {
	return &Query{q: q}
}

// NewWithLimits creates a query restricted to a window of the result
// set. Zero leaves the corresponding limit unset.
func NewWithLimits(q string, startIndex, maxResults int) *Query {
	return &Query{q: q, startIndex: startIndex, maxResults: maxResults}
}

// BaseQuery implements ParamSource.
func (q *Query) BaseQuery() *Query { return q }

// ExtraParams implements ParamSource; the base query has none.
func (q *Query) ExtraParams(*URIBuilder) {}

func (q *Query) Q() string { return q.q }

func (q *Query) SetQ(value string) {
	q.q = value
	q.etag = ""
}

// AddInternalQ appends a search clause that a service derived from one
// of its own parameters. Internal clauses join user terms with "and".
func (q *Query) AddInternalQ(clause string) {
	if clause == "" {
		return
	}
	if q.qInternal != "" {
		q.qInternal += " and "
	}
	q.qInternal += clause
}

// ClearInternalQ discards clauses added with AddInternalQ. Services
// rebuild them on every URI construction.
func (q *Query) ClearInternalQ() { q.qInternal = "" }

func (q *Query) Categories() string { return q.categories }

// SetCategories restricts results to the given category filter, written
// in the feed path syntax: "|" for OR, "/" to AND further filters, and
// "{scheme}term" for an explicit scheme.
func (q *Query) SetCategories(value string) {
	q.categories = value
	q.etag = ""
}

func (q *Query) Author() string { return q.author }

func (q *Query) SetAuthor(value string) {
	q.author = value
	q.etag = ""
}

func (q *Query) UpdatedMin() time.Time { return q.updatedMin }

func (q *Query) SetUpdatedMin(value time.Time) {
	q.updatedMin = value
	q.etag = ""
}

func (q *Query) UpdatedMax() time.Time { return q.updatedMax }

func (q *Query) SetUpdatedMax(value time.Time) {
	q.updatedMax = value
	q.etag = ""
}

func (q *Query) PublishedMin() time.Time { return q.publishedMin }

func (q *Query) SetPublishedMin(value time.Time) {
	q.publishedMin = value
	q.etag = ""
}

func (q *Query) PublishedMax() time.Time { return q.publishedMax }

func (q *Query) SetPublishedMax(value time.Time) {
	q.publishedMax = value
	q.etag = ""
}

// StartIndex returns the one-based index of the first result, or 0 when
// unset.
func (q *Query) StartIndex() int { return q.startIndex }

func (q *Query) SetStartIndex(value int) {
	q.startIndex = value
	q.etag = ""
}

func (q *Query) IsStrict() bool { return q.strict }

// SetStrict makes the server reject unrecognized parameters instead of
// ignoring them.
func (q *Query) SetStrict(value bool) {
	q.strict = value
	q.etag = ""
}

func (q *Query) MaxResults() int { return q.maxResults }

func (q *Query) SetMaxResults(value int) {
	q.maxResults = value
	q.etag = ""
}

// ETag returns the ETag of the result set this query last produced, or
// "" when none is held.
func (q *Query) ETag() string { return q.etag }

// SetETag associates the query with a result-set ETag. The service sets
// it after each query so an unchanged repeat can be answered with
// ErrNotModified.
func (q *Query) SetETag(value string) { q.etag = value }

// Pagination returns the query's pagination mode.
func (q *Query) Pagination() PaginationType { return q.pagination }

// SetPagination switches pagination mode, discarding any page state
// accumulated under the previous mode.
func (q *Query) SetPagination(t PaginationType) {
	q.ClearPagination()
	q.pagination = t
}

// ClearPagination forgets stored page URIs and tokens. The service
// calls it before storing the pagination state of a fresh feed.
func (q *Query) ClearPagination() {
	q.nextURI = ""
	q.previousURI = ""
	q.nextPageToken = ""
	q.useNextPage = false
	q.usePreviousPage = false
}

// SetNextURI stores the feed's next-page URI (pages mode).
func (q *Query) SetNextURI(uri string) { q.nextURI = uri }

// SetPreviousURI stores the feed's previous-page URI (pages mode).
func (q *Query) SetPreviousURI(uri string) { q.previousURI = uri }

// SetNextPageToken stores the feed's next-page token (tokens mode).
func (q *Query) SetNextPageToken(token string) { q.nextPageToken = token }

// NextPage advances the query to the next page of results. In indexed
// mode the start index moves past the current page; in the other modes
// the stored URI or token is armed for the next URI construction.
func (q *Query) NextPage() {
	switch q.pagination {
	case PaginationIndexed:
		if q.startIndex == 0 {
			q.startIndex++
		}
		q.startIndex += q.maxResults
	case PaginationPages, PaginationTokens:
		q.useNextPage = true
		q.usePreviousPage = false
	}
	q.etag = ""
}

// PreviousPage steps the query back a page, reporting whether a
// previous page exists. Token pagination cannot go backwards.
func (q *Query) PreviousPage() bool {
	switch q.pagination {
	case PaginationIndexed:
		if q.startIndex <= q.maxResults {
			return false
		}
		q.startIndex -= q.maxResults
		if q.startIndex == 1 {
			q.startIndex = 0
		}
	case PaginationPages:
		if q.previousURI == "" {
			return false
		}
		q.useNextPage = false
		q.usePreviousPage = true
	case PaginationTokens:
		return false
	}
	q.etag = ""
	return true
}

// IsFinished reports whether paging has run off the end of the result
// set: the next page was requested but the last feed carried no way to
// reach one.
func (q *Query) IsFinished() bool {
	switch q.pagination {
	case PaginationPages:
		return q.useNextPage && q.nextURI == ""
	case PaginationTokens:
		return q.useNextPage && q.nextPageToken == ""
	}
	return false
}

// URI builds the final request URI for the query applied to feedURI.
func (q *Query) URI(feedURI string) string {
	return BuildURI(q, feedURI)
}

// BuildURI assembles the query URI for any ParamSource: standard
// parameters first, then the source's extras. When page-URI pagination
// has been armed the stored URI is returned as-is.
func BuildURI(src ParamSource, feedURI string) string {
	q := src.BaseQuery()

	if q.pagination == PaginationPages {
		if q.useNextPage {
			return q.nextURI
		}
		if q.usePreviousPage {
			return q.previousURI
		}
	}

	b := NewURIBuilder(feedURI)

	if q.categories != "" {
		b.Path("/-/")
		b.Path(escapeCategories(q.categories))
	}

	if q.q != "" || q.qInternal != "" {
		terms := q.q
		if terms != "" && q.qInternal != "" {
			terms += " and "
		}
		terms += q.qInternal
		b.Param("q", terms)
	}
	if q.author != "" {
		b.Param("author", q.author)
	}
	if !q.updatedMin.IsZero() {
		b.TimeParam("updated-min", q.updatedMin)
	}
	if !q.updatedMax.IsZero() {
		b.TimeParam("updated-max", q.updatedMax)
	}
	if !q.publishedMin.IsZero() {
		b.TimeParam("published-min", q.publishedMin)
	}
	if !q.publishedMax.IsZero() {
		b.TimeParam("published-max", q.publishedMax)
	}
	if q.startIndex > 0 {
		b.IntParam("start-index", q.startIndex)
	}
	if q.strict {
		b.Param("strict", "true")
	}
	if q.maxResults > 0 {
		b.IntParam("max-results", q.maxResults)
	}
	if q.pagination == PaginationTokens && q.useNextPage && q.nextPageToken != "" {
		b.Param("pageToken", q.nextPageToken)
	}

	src.ExtraParams(b)

	return b.String()
}

// escapeCategories escapes a category filter for use as a path segment,
// keeping the '/' separators that join AND-ed filters.
func escapeCategories(categories string) string {
	parts := strings.Split(categories, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
