package contacts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GNOME/libgdata-sub004/pkg/query"
	"github.com/GNOME/libgdata-sub004/pkg/services/contacts"
)

func TestQueryExtraParams(t *testing.T) {
	q := contacts.NewQuery("Elizabeth")
	q.SetOrderBy("lastmodified")
	q.SetShowDeleted(true)
	q.SetSortOrder("descending")
	q.SetGroup("http://www.google.com/m8/feeds/groups/user%40example.com/base/6")

	uri := query.BuildURI(q, "http://example.com/feed")
	assert.Equal(t,
		"http://example.com/feed?q=Elizabeth"+
			"&orderby=lastmodified"+
			"&showdeleted=true"+
			"&sortorder=descending"+
			"&group=http%3A%2F%2Fwww.google.com%2Fm8%2Ffeeds%2Fgroups%2Fuser%2540example.com%2Fbase%2F6",
		uri)
}

func TestQueryDefaultsAddNothing(t *testing.T) {
	q := contacts.NewQuery("")
	assert.Equal(t, "http://example.com/feed", query.BuildURI(q, "http://example.com/feed"))
}

func TestQuerySettersClearETag(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *contacts.Query)
	}{
		{"orderby", func(q *contacts.Query) { q.SetOrderBy("lastmodified") }},
		{"showdeleted", func(q *contacts.Query) { q.SetShowDeleted(true) }},
		{"sortorder", func(q *contacts.Query) { q.SetSortOrder("ascending") }},
		{"group", func(q *contacts.Query) { q.SetGroup("http://example.com/groups/1") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := contacts.NewQuery("")
			q.SetETag(`W/"etag."`)
			tt.mutate(q)
			assert.Empty(t, q.ETag())
		})
	}
}
