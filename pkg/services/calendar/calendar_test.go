package calendar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
	"github.com/GNOME/libgdata-sub004/pkg/services/calendar"
)

const sampleCalendarJSON = `{
	"kind": "calendar#calendarListEntry",
	"etag": "\"cal-etag\"",
	"id": "liz@example.com",
	"summary": "Lizzy's calendar",
	"description": "Personal appointments",
	"timeZone": "Europe/London",
	"backgroundColor": "#2952A3",
	"hidden": false,
	"selected": true,
	"accessRole": "owner",
	"defaultReminders": [{"method": "popup", "minutes": 10}]
}`

func TestCalendarParseJSON(t *testing.T) {
	var c calendar.Calendar
	require.NoError(t, parsable.FromJSON([]byte(sampleCalendarJSON), &c))

	assert.Equal(t, "liz@example.com", c.ID)
	assert.Equal(t, `"cal-etag"`, c.ETag)
	assert.Equal(t, "Lizzy's calendar", c.Title)
	assert.Equal(t, "Personal appointments", c.Summary)
	assert.Equal(t, "Europe/London", c.TimeZone)
	assert.Equal(t, "#2952A3", c.Color)
	assert.False(t, c.IsHidden)
	assert.True(t, c.IsSelected)
	assert.Equal(t, calendar.AccessRoleOwner, c.AccessLevel)
}

func TestCalendarParseJSONSynthesizesLinks(t *testing.T) {
	var c calendar.Calendar
	require.NoError(t, parsable.FromJSON([]byte(sampleCalendarJSON), &c))

	self := c.LookupLink(atom.RelSelf)
	require.NotNil(t, self)
	assert.Equal(t, "https://www.googleapis.com/calendar/v3/calendars/liz%40example.com", self.Href)

	aclLink := c.ACLLink()
	require.NotNil(t, aclLink)
	assert.Equal(t, self.Href+"/acl", aclLink.Href)
}

func TestCalendarEmitJSON(t *testing.T) {
	c := calendar.NewCalendar("liz@example.com")
	c.Title = "Lizzy's calendar"
	c.TimeZone = "Europe/London"
	c.IsSelected = true

	out, err := parsable.ToJSON(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "liz@example.com",
		"kind": "calendar#calendar",
		"summary": "Lizzy's calendar",
		"timeZone": "Europe/London",
		"hidden": false,
		"selected": true
	}`, string(out))
}

func TestCalendarRoundTripPreservesUnknownMembers(t *testing.T) {
	var c calendar.Calendar
	require.NoError(t, parsable.FromJSON([]byte(sampleCalendarJSON), &c))

	out, err := parsable.ToJSON(&c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"defaultReminders"`)
	assert.Contains(t, string(out), `"popup"`)
}

func TestCalendarContentType(t *testing.T) {
	assert.Equal(t, parsable.ContentTypeJSON, calendar.NewCalendar("x").ContentType())
}
