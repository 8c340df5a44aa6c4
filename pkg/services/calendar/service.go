package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	gdata "github.com/GNOME/libgdata-sub004"
	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/auth"
	"github.com/GNOME/libgdata-sub004/pkg/errors"
)

// CalendarListURI is the feed of the authenticated user's calendars.
const CalendarListURI = "https://www.googleapis.com/calendar/v3/users/me/calendarList"

// Authorization domains of the calendar service.
var (
	calendarDomain = &auth.Domain{
		ServiceName: "cl",
		Scope:       "https://www.googleapis.com/auth/calendar",
	}

	// CalendarReadOnlyDomain grants read access only; authorize with it
	// instead of the domains returned by AuthorizationDomains when the
	// application never writes.
	CalendarReadOnlyDomain = &auth.Domain{
		ServiceName: "cl",
		Scope:       "https://www.googleapis.com/auth/calendar.readonly",
	}
)

// AuthorizationDomains returns the domains an authorizer needs to
// cover for this service.
func AuthorizationDomains() []*auth.Domain {
	return []*auth.Domain{calendarDomain}
}

// CalendarURI returns the URI a calendar lives at, given its id.
func CalendarURI(id string) string {
	return "https://www.googleapis.com/calendar/v3/calendars/" + escapePathSegment(id)
}

// escapePathSegment escapes everything outside the unreserved set, so
// ids like email addresses come out as the service spells them
// (liz%40example.com, not liz@example.com).
func escapePathSegment(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// EventsURI returns the event feed of calendar; a nil calendar selects
// the user's default calendar.
func EventsURI(calendar *Calendar) string {
	id := "default"
	if calendar != nil && calendar.ID != "" {
		id = calendar.ID
	}
	return CalendarURI(id) + "/events"
}

// Service accesses the calendar service.
type Service struct {
	*gdata.Service
}

// NewService creates a calendar service.
func NewService(opts ...gdata.Option) (*Service, error) {
	base, err := gdata.NewService(append([]gdata.Option{gdata.WithErrorParser(parseErrorResponse)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Service{Service: base}, nil
}

func calendarFactory() atom.EntryLike { return &Calendar{} }

func eventFactory() atom.EntryLike { return &Event{} }

func accessRuleFactory() atom.EntryLike { return &AccessRule{} }

// QueryCalendars fetches the authenticated user's calendar list
// restricted by q, which may be nil.
func (s *Service) QueryCalendars(ctx context.Context, q *Query, progress gdata.ProgressFunc) (*atom.Feed, error) {
	if q == nil {
		return s.QueryFeed(ctx, calendarDomain, CalendarListURI, nil, calendarFactory, progress)
	}
	return s.QueryFeed(ctx, calendarDomain, CalendarListURI, q, calendarFactory, progress)
}

// QueryOwnCalendars fetches only the calendars the user owns.
func (s *Service) QueryOwnCalendars(ctx context.Context, q *Query, progress gdata.ProgressFunc) (*atom.Feed, error) {
	uri := CalendarListURI + "?minAccessRole=owner"
	if q == nil {
		return s.QueryFeed(ctx, calendarDomain, uri, nil, calendarFactory, progress)
	}
	return s.QueryFeed(ctx, calendarDomain, uri, q, calendarFactory, progress)
}

// QueryEvents fetches the events of calendar restricted by q, which
// may be nil.
func (s *Service) QueryEvents(ctx context.Context, calendar *Calendar, q *Query, progress gdata.ProgressFunc) (*atom.Feed, error) {
	if q == nil {
		return s.QueryFeed(ctx, calendarDomain, EventsURI(calendar), nil, eventFactory, progress)
	}
	return s.QueryFeed(ctx, calendarDomain, EventsURI(calendar), q, eventFactory, progress)
}

// GetEvent fetches one event by its id URI.
func (s *Service) GetEvent(ctx context.Context, uri string) (*Event, error) {
	entry, err := s.GetEntry(ctx, calendarDomain, uri, "", eventFactory)
	if err != nil {
		return nil, err
	}
	return entry.(*Event), nil
}

// InsertEvent creates event in calendar, returning the server's copy.
// A nil calendar selects the user's default calendar.
func (s *Service) InsertEvent(ctx context.Context, calendar *Calendar, event *Event) (*Event, error) {
	entry, err := s.InsertEntry(ctx, calendarDomain, EventsURI(calendar), event, eventFactory)
	if err != nil {
		return nil, err
	}
	return entry.(*Event), nil
}

// UpdateEvent writes event back, guarded by its ETag.
func (s *Service) UpdateEvent(ctx context.Context, event *Event) (*Event, error) {
	entry, err := s.UpdateEntry(ctx, calendarDomain, event, eventFactory)
	if err != nil {
		return nil, err
	}
	return entry.(*Event), nil
}

// DeleteEvent removes event.
func (s *Service) DeleteEvent(ctx context.Context, event *Event) error {
	return s.DeleteEntry(ctx, calendarDomain, event)
}

// QueryAccessRules fetches the access-control rules of calendar.
func (s *Service) QueryAccessRules(ctx context.Context, calendar *Calendar, progress gdata.ProgressFunc) (*atom.Feed, error) {
	link := calendar.ACLLink()
	if link == nil {
		return nil, errors.ErrNotFound
	}
	return s.QueryFeed(ctx, calendarDomain, link.Href, nil, accessRuleFactory, progress)
}

// InsertAccessRule grants rule on calendar, returning the server's
// copy.
func (s *Service) InsertAccessRule(ctx context.Context, calendar *Calendar, rule *AccessRule) (*AccessRule, error) {
	link := calendar.ACLLink()
	if link == nil {
		return nil, errors.ErrNotFound
	}
	entry, err := s.InsertEntry(ctx, calendarDomain, link.Href, rule, accessRuleFactory)
	if err != nil {
		return nil, err
	}
	return entry.(*AccessRule), nil
}

// UpdateAccessRule writes rule back, guarded by its ETag. The rule
// feed carries no entry links, so the rule's URI is rebuilt from the
// calendar it belongs to.
func (s *Service) UpdateAccessRule(ctx context.Context, calendar *Calendar, rule *AccessRule) (*AccessRule, error) {
	addRuleLink(calendar, rule)
	entry, err := s.UpdateEntry(ctx, calendarDomain, rule, accessRuleFactory)
	if err != nil {
		return nil, err
	}
	return entry.(*AccessRule), nil
}

// DeleteAccessRule revokes rule on calendar.
func (s *Service) DeleteAccessRule(ctx context.Context, calendar *Calendar, rule *AccessRule) error {
	addRuleLink(calendar, rule)
	return s.DeleteEntry(ctx, calendarDomain, rule)
}

// addRuleLink gives rule an edit link under calendar's rule feed when
// it carries none.
func addRuleLink(calendar *Calendar, rule *AccessRule) {
	if calendar == nil || rule.ID == "" || rule.LookupLink(atom.RelEdit) != nil || rule.LookupLink(atom.RelSelf) != nil {
		return
	}
	rule.AddLink(atom.NewLink(CalendarURI(calendar.ID)+"/acl/"+escapePathSegment(rule.ID), atom.RelEdit))
}

// errorResponse is the error envelope the service wraps failures in.
type errorResponse struct {
	Error struct {
		Errors []struct {
			Domain  string `json:"domain"`
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseErrorResponse decodes the service's JSON error envelope,
// mapping the first recognised error onto the library's error types.
// Returning nil falls back to the generic status-code mapping.
func parseErrorResponse(statusCode int, contentType string, body []byte) error {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	for _, e := range envelope.Error.Errors {
		switch {
		case e.Domain == "usageLimits" && e.Reason == "dailyLimitExceededUnreg":
			return errors.NewProtocolError(http.StatusServiceUnavailable, e.Message)
		case e.Domain == "global" && e.Reason == "notFound":
			return errors.NewProtocolError(http.StatusNotFound, e.Message)
		case e.Domain == "global" && (e.Reason == "required" || e.Reason == "conditionNotMet"):
			return errors.NewProtocolError(statusCode, e.Message)
		case e.Domain == "global" && e.Reason == "authError":
			return errors.NewProtocolError(http.StatusUnauthorized, e.Message)
		case e.Domain == "global" && e.Reason == "forbidden":
			return errors.NewProtocolError(http.StatusForbidden, e.Message)
		}
	}
	if envelope.Error.Message != "" {
		return errors.NewProtocolError(statusCode, envelope.Error.Message)
	}
	return nil
}
