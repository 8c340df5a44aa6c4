package contacts

import "github.com/GNOME/libgdata-sub004/pkg/query"

// Query restricts a contacts feed query with the service's own
// parameters on top of the standard set. Setters clear the query's
// ETag through the embedded base.
type Query struct {
	query.Query

	orderBy     string
	showDeleted bool
	sortOrder   string
	group       string
}

// NewQuery creates a contacts query with the given search terms.
func NewQuery(q string) *Query {
	cq := &Query{}
	cq.SetQ(q)
	return cq
}

// OrderBy returns the result ordering, e.g. "lastmodified".
func (cq *Query) OrderBy() string { return cq.orderBy }

func (cq *Query) SetOrderBy(value string) {
	cq.orderBy = value
	cq.SetETag("")
}

// ShowDeleted reports whether tombstones for deleted contacts are
// included.
func (cq *Query) ShowDeleted() bool { return cq.showDeleted }

func (cq *Query) SetShowDeleted(value bool) {
	cq.showDeleted = value
	cq.SetETag("")
}

// SortOrder returns the sort direction, "ascending" or "descending".
func (cq *Query) SortOrder() string { return cq.sortOrder }

func (cq *Query) SetSortOrder(value string) {
	cq.sortOrder = value
	cq.SetETag("")
}

// Group returns the group id URI results are restricted to.
func (cq *Query) Group() string { return cq.group }

func (cq *Query) SetGroup(value string) {
	cq.group = value
	cq.SetETag("")
}

// ExtraParams implements query.ParamSource.
func (cq *Query) ExtraParams(b *query.URIBuilder) {
	if cq.orderBy != "" {
		b.Param("orderby", cq.orderBy)
	}
	if cq.showDeleted {
		b.Param("showdeleted", "true")
	}
	if cq.sortOrder != "" {
		b.Param("sortorder", cq.sortOrder)
	}
	if cq.group != "" {
		b.Param("group", cq.group)
	}
}
