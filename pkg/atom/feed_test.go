package atom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
)

const sampleFeedXML = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom' xmlns:openSearch='http://a9.com/-/spec/opensearch/1.1/' xmlns:gd='http://schemas.google.com/g/2005' gd:etag='W/"feed-etag."'>
	<id>http://example.com/feed</id>
	<title type='text'>Test feed</title>
	<updated>2023-01-02T03:04:05Z</updated>
	<link rel='next' href='http://example.com/feed?start-index=3'/>
	<openSearch:totalResults>4</openSearch:totalResults>
	<openSearch:startIndex>1</openSearch:startIndex>
	<openSearch:itemsPerPage>2</openSearch:itemsPerPage>
	<entry><id>http://example.com/e/first</id><title>First</title></entry>
	<entry><id>http://example.com/e/second</id><title>Second</title></entry>
</feed>`

func TestFeedParseXML(t *testing.T) {
	f, err := atom.ParseFeedXML([]byte(sampleFeedXML), nil)
	require.NoError(t, err)

	assert.Equal(t, "Test feed", f.Title)
	assert.Equal(t, `W/"feed-etag."`, f.ETag)
	assert.Equal(t, 4, f.TotalResults)
	assert.Equal(t, 1, f.StartIndex)
	assert.Equal(t, 2, f.ItemsPerPage)

	next := f.LookupLink(atom.RelNext)
	require.NotNil(t, next)
	assert.Equal(t, "http://example.com/feed?start-index=3", next.Href)
}

func TestFeedEntriesKeepDocumentOrder(t *testing.T) {
	f, err := atom.ParseFeedXML([]byte(sampleFeedXML), nil)
	require.NoError(t, err)

	require.Len(t, f.Entries, 2)
	assert.Equal(t, "First", f.Entries[0].EntryBase().Title)
	assert.Equal(t, "Second", f.Entries[1].EntryBase().Title)
}

// noted is an entry subtype used to verify the factory is honoured.
type noted struct {
	atom.Entry
}

func TestFeedUsesEntryFactory(t *testing.T) {
	f, err := atom.ParseFeedXML([]byte(sampleFeedXML), func() atom.EntryLike { return &noted{} })
	require.NoError(t, err)

	require.Len(t, f.Entries, 2)
	_, ok := f.Entries[0].(*noted)
	assert.True(t, ok)
}

func TestFeedParseJSON(t *testing.T) {
	input := `{
		"kind": "contacts#contacts",
		"etag": "json-etag",
		"nextPageToken": "tok-456",
		"items": [
			{"custom": 1},
			{"custom": 2}
		]
	}`

	f, err := atom.ParseFeedJSON([]byte(input), nil)
	require.NoError(t, err)

	assert.Equal(t, "json-etag", f.ETag)
	assert.Equal(t, "tok-456", f.NextPageToken)
	assert.Len(t, f.Entries, 2)
}

func TestFeedParseJSONRejectsBadItems(t *testing.T) {
	_, err := atom.ParseFeedJSON([]byte(`{"items": "nope"}`), nil)
	assert.Error(t, err)
}
