package calendar_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gdata "github.com/GNOME/libgdata-sub004"
	"github.com/GNOME/libgdata-sub004/pkg/acl"
	"github.com/GNOME/libgdata-sub004/pkg/errors"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
	"github.com/GNOME/libgdata-sub004/pkg/services/calendar"
)

const calendarListJSON = `{
	"kind": "calendar#calendarList",
	"etag": "\"list-etag\"",
	"items": [
		{
			"kind": "calendar#calendarListEntry",
			"id": "liz@example.com",
			"summary": "Work",
			"timeZone": "Europe/London",
			"accessRole": "owner"
		},
		{
			"kind": "calendar#calendarListEntry",
			"id": "family",
			"summary": "Family",
			"accessRole": "reader"
		}
	]
}`

const eventsFeedXML = `<?xml version='1.0' encoding='UTF-8'?>
<feed xmlns='http://www.w3.org/2005/Atom' xmlns:gd='http://schemas.google.com/g/2005' xmlns:gCal='http://schemas.google.com/gCal/2005'>
	<id>liz@example.com</id>
	<title>Work</title>
	<entry>
		<id>http://example.com/events/1</id>
		<title>Standup</title>
		<gd:when startTime='2023-11-14T09:00:00Z' endTime='2023-11-14T09:15:00Z'/>
	</entry>
</feed>`

const accessRulesJSON = `{
	"kind": "calendar#acl",
	"items": [
		{
			"kind": "calendar#aclRule",
			"id": "user:anna@example.com",
			"role": "writer",
			"scope": {"type": "user", "value": "anna@example.com"}
		}
	]
}`

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

func newTestService(t *testing.T, server *httptest.Server) *calendar.Service {
	t.Helper()
	target, err := url.Parse(server.URL)
	require.NoError(t, err)
	s, err := calendar.NewService(gdata.WithHTTPClient(&http.Client{
		Transport: rerouteTransport{target: target},
	}))
	require.NoError(t, err)
	return s
}

func TestCalendarURIEscapesID(t *testing.T) {
	assert.Equal(t,
		"https://www.googleapis.com/calendar/v3/calendars/liz%40example.com",
		calendar.CalendarURI("liz@example.com"))
	assert.Equal(t,
		"https://www.googleapis.com/calendar/v3/calendars/a%2Fb",
		calendar.CalendarURI("a/b"))
}

func TestQueryCalendars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/v3/users/me/calendarList", r.URL.Path)
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		_, _ = w.Write([]byte(calendarListJSON))
	}))
	defer server.Close()

	s := newTestService(t, server)
	feed, err := s.QueryCalendars(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 2)

	cal, ok := feed.Entries[0].(*calendar.Calendar)
	require.True(t, ok)
	assert.Equal(t, "liz@example.com", cal.ID)
	assert.Equal(t, "Work", cal.Title)
	assert.Equal(t, calendar.AccessRoleOwner, cal.AccessLevel)
	require.NotNil(t, cal.ACLLink())
	assert.Equal(t, "https://www.googleapis.com/calendar/v3/calendars/liz%40example.com/acl", cal.ACLLink().Href)
}

func TestQueryOwnCalendars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "owner", r.URL.Query().Get("minAccessRole"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(calendarListJSON))
	}))
	defer server.Close()

	s := newTestService(t, server)
	_, err := s.QueryOwnCalendars(context.Background(), nil, nil)
	require.NoError(t, err)
}

func TestQueryEventsDefaultCalendar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/v3/calendars/default/events", r.URL.Path)
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(eventsFeedXML))
	}))
	defer server.Close()

	s := newTestService(t, server)
	feed, err := s.QueryEvents(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)

	event, ok := feed.Entries[0].(*calendar.Event)
	require.True(t, ok)
	assert.Equal(t, "Standup", event.Title)
	require.Len(t, event.Times, 1)
}

func TestQueryEventsNamedCalendar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/v3/calendars/liz@example.com/events", r.URL.Path)
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(eventsFeedXML))
	}))
	defer server.Close()

	s := newTestService(t, server)
	cal := &calendar.Calendar{}
	cal.ID = "liz@example.com"

	_, err := s.QueryEvents(context.Background(), cal, nil, nil)
	require.NoError(t, err)
}

func TestQueryAccessRules(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendar/v3/calendars/liz@example.com/acl", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(accessRulesJSON))
	}))
	defer server.Close()

	s := newTestService(t, server)
	cal := parseCalendar(t)

	feed, err := s.QueryAccessRules(context.Background(), cal, nil)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)

	rule, ok := feed.Entries[0].(*calendar.AccessRule)
	require.True(t, ok)
	assert.Equal(t, "writer", rule.Role)
	assert.Equal(t, acl.ScopeUser, rule.ScopeType)
	assert.Equal(t, "anna@example.com", rule.ScopeValue)
}

func TestQueryAccessRulesWithoutLink(t *testing.T) {
	s, err := calendar.NewService()
	require.NoError(t, err)

	_, err = s.QueryAccessRules(context.Background(), &calendar.Calendar{}, nil)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestDeleteAccessRule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/calendar/v3/calendars/liz@example.com/acl/user:anna@example.com", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := newTestService(t, server)
	cal := &calendar.Calendar{}
	cal.ID = "liz@example.com"
	rule := calendar.NewAccessRule("writer", acl.ScopeUser, "anna@example.com")
	rule.ID = "user:anna@example.com"

	require.NoError(t, s.DeleteAccessRule(context.Background(), cal, rule))
}

func TestErrorEnvelopeMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "unregistered daily limit reads as unavailable",
			status: http.StatusForbidden,
			body:   `{"error":{"errors":[{"domain":"usageLimits","reason":"dailyLimitExceededUnreg","message":"quota"}],"code":403,"message":"quota"}}`,
			want:   errors.ErrUnavailable,
		},
		{
			name:   "not found",
			status: http.StatusBadRequest,
			body:   `{"error":{"errors":[{"domain":"global","reason":"notFound","message":"no such calendar"}],"code":400,"message":"no such calendar"}}`,
			want:   errors.ErrNotFound,
		},
		{
			name:   "condition not met keeps the wire status",
			status: http.StatusPreconditionFailed,
			body:   `{"error":{"errors":[{"domain":"global","reason":"conditionNotMet","message":"etag mismatch"}],"code":412,"message":"etag mismatch"}}`,
			want:   errors.ErrConflict,
		},
		{
			name:   "auth error",
			status: http.StatusForbidden,
			body:   `{"error":{"errors":[{"domain":"global","reason":"authError","message":"bad token"}],"code":403,"message":"bad token"}}`,
			want:   errors.ErrAuthenticationRequired,
		},
		{
			name:   "unrecognised reason falls back to the envelope message",
			status: http.StatusTeapot,
			body:   `{"error":{"errors":[{"domain":"global","reason":"mysterious","message":"odd"}],"code":418,"message":"odd"}}`,
			want:   errors.ErrProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s := newTestService(t, server)
			_, err := s.QueryCalendars(context.Background(), nil, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// parseCalendar builds a calendar the way the list feed delivers one,
// so it carries the links synthesized during parsing.
func parseCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal := &calendar.Calendar{}
	require.NoError(t, parsable.FromJSON([]byte(`{"id":"liz@example.com","summary":"Work"}`), cal))
	return cal
}
