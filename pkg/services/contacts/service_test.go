package contacts_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gdata "github.com/GNOME/libgdata-sub004"
	"github.com/GNOME/libgdata-sub004/pkg/services/contacts"
)

const contactsFeedXML = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom' xmlns:gd='http://schemas.google.com/g/2005' xmlns:gContact='http://schemas.google.com/contact/2008'>
	<id>liz@example.com</id>
	<title>Liz's Contacts</title>
	<entry>
		<id>http://www.google.com/m8/feeds/contacts/liz%40example.com/base/8411573</id>
		<title>Fritz</title>
		<category scheme='http://schemas.google.com/g/2005#kind' term='http://schemas.google.com/contact/2008#contact'/>
		<gd:email rel='http://schemas.google.com/g/2005#home' address='fritz@example.com' primary='true'/>
	</entry>
</feed>`

const groupsFeedXML = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom' xmlns:gd='http://schemas.google.com/g/2005' xmlns:gContact='http://schemas.google.com/contact/2008'>
	<id>liz@example.com</id>
	<title>Liz's Groups</title>
	<entry>
		<id>http://www.google.com/m8/feeds/groups/liz%40example.com/base/6</id>
		<title>System Group: My Contacts</title>
		<gContact:systemGroup id='Contacts'/>
	</entry>
</feed>`

// rerouteTransport sends every request to a test server. The feed URIs
// are fixed, so tests reroute them at the transport.
type rerouteTransport struct {
	target *url.URL
}

func (t rerouteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestService(t *testing.T, server *httptest.Server) *contacts.Service {
	t.Helper()
	target, err := url.Parse(server.URL)
	require.NoError(t, err)
	s, err := contacts.NewService(gdata.WithHTTPClient(&http.Client{
		Transport: rerouteTransport{target: target},
	}))
	require.NoError(t, err)
	return s
}

func TestQueryContacts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/m8/feeds/contacts/default/full", r.URL.Path)
		assert.Equal(t, "3", r.Header.Get("GData-Version"))
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(contactsFeedXML))
	}))
	defer server.Close()

	s := newTestService(t, server)
	feed, err := s.QueryContacts(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)

	contact, ok := feed.Entries[0].(*contacts.Contact)
	require.True(t, ok)
	assert.Equal(t, "Fritz", contact.Title)
	require.Len(t, contact.Emails, 1)
	assert.Equal(t, "fritz@example.com", contact.Emails[0].Address)
}

func TestQueryContactsWithQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fritz", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("max-results"))
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(contactsFeedXML))
	}))
	defer server.Close()

	s := newTestService(t, server)
	q := contacts.NewQuery("fritz")
	q.SetMaxResults(10)

	_, err := s.QueryContacts(context.Background(), q, nil)
	require.NoError(t, err)
}

func TestQueryGroups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/m8/feeds/groups/default/full", r.URL.Path)
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(groupsFeedXML))
	}))
	defer server.Close()

	s := newTestService(t, server)
	feed, err := s.QueryGroups(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)

	group, ok := feed.Entries[0].(*contacts.Group)
	require.True(t, ok)
	assert.Equal(t, "Contacts", group.SystemGroupID)
	assert.True(t, group.IsSystemGroup())
}

func TestInsertContact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/m8/feeds/contacts/default/full", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/atom+xml")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<entry xmlns='http://www.w3.org/2005/Atom'><id>new-id</id><title>Fritz</title></entry>`))
	}))
	defer server.Close()

	s := newTestService(t, server)
	contact := contacts.NewContact()
	contact.Title = "Fritz"

	created, err := s.InsertContact(context.Background(), contact)
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID)
}

func TestBatchFeedURI(t *testing.T) {
	s, err := contacts.NewService()
	require.NoError(t, err)
	assert.Equal(t, contacts.ContactsFeedURI+"/batch", s.BatchFeedURI())
}

func TestEntryURI(t *testing.T) {
	assert.Equal(t,
		"http://www.google.com/m8/feeds/contacts/liz%40example.com/full/8411573",
		contacts.EntryURI("http://www.google.com/m8/feeds/contacts/liz%40example.com/base/8411573"))
}
