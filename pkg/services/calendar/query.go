package calendar

import (
	"net/url"
	"strings"
	"time"

	"github.com/GNOME/libgdata-sub004/pkg/query"
)

// Orderings accepted by SetOrderBy. They are translated to the wire
// vocabulary when the URI is built.
const (
	OrderByLastModified = "lastmodified"
	OrderByStartTime    = "starttime"
)

// Query restricts a calendar or event feed query with the service's
// own parameters on top of the standard set. Setters clear the query's
// ETag through the embedded base.
type Query struct {
	query.Query

	futureEvents bool
	orderBy      string
	singleEvents bool
	startMin     time.Time
	startMax     time.Time
	timeZone     string
	maxAttendees int
	showDeleted  bool
}

// NewQuery creates a calendar query with the given search terms.
func NewQuery(q string) *Query {
	cq := &Query{}
	cq.SetQ(q)
	return cq
}

// FutureEvents reports whether the query is restricted to events
// scheduled for the future. It overrides StartMin and StartMax.
func (cq *Query) FutureEvents() bool { return cq.futureEvents }

func (cq *Query) SetFutureEvents(value bool) {
	cq.futureEvents = value
	cq.SetETag("")
}

// OrderBy returns the result ordering: OrderByLastModified or
// OrderByStartTime.
func (cq *Query) OrderBy() string { return cq.orderBy }

func (cq *Query) SetOrderBy(value string) {
	cq.orderBy = value
	cq.SetETag("")
}

// SingleEvents reports whether recurring events are expanded into
// their instances rather than returned as a single entry.
func (cq *Query) SingleEvents() bool { return cq.singleEvents }

func (cq *Query) SetSingleEvents(value bool) {
	cq.singleEvents = value
	cq.SetETag("")
}

// StartMin returns the inclusive lower bound of the event timespan.
func (cq *Query) StartMin() time.Time { return cq.startMin }

func (cq *Query) SetStartMin(value time.Time) {
	cq.startMin = value
	cq.SetETag("")
}

// StartMax returns the exclusive upper bound of the event timespan.
// Events overlapping the range are included.
func (cq *Query) StartMax() time.Time { return cq.startMax }

func (cq *Query) SetStartMax(value time.Time) {
	cq.startMax = value
	cq.SetETag("")
}

// TimeZone returns the timezone event times are returned in. When
// unset all times are returned in UTC.
func (cq *Query) TimeZone() string { return cq.timeZone }

func (cq *Query) SetTimeZone(value string) {
	cq.timeZone = value
	cq.SetETag("")
}

// MaxAttendees returns the maximum number of attendees listed per
// event. When an event has more, only the current user and the
// organiser are listed.
func (cq *Query) MaxAttendees() int { return cq.maxAttendees }

func (cq *Query) SetMaxAttendees(value int) {
	cq.maxAttendees = value
	cq.SetETag("")
}

// ShowDeleted reports whether cancelled events are included in the
// feed.
func (cq *Query) ShowDeleted() bool { return cq.showDeleted }

func (cq *Query) SetShowDeleted(value bool) {
	cq.showDeleted = value
	cq.SetETag("")
}

// ExtraParams implements query.ParamSource.
func (cq *Query) ExtraParams(b *query.URIBuilder) {
	if cq.BaseQuery().MaxResults() != 0 {
		b.IntParam("maxResults", cq.BaseQuery().MaxResults())
	}
	if cq.orderBy != "" {
		b.Param("orderBy", orderByParam(cq.orderBy))
	}
	b.BoolParam("singleEvents", cq.singleEvents)
	if cq.futureEvents {
		b.TimeParam("timeMin", time.Now().UTC())
	} else if !cq.startMin.IsZero() {
		b.TimeParam("timeMin", cq.startMin)
	}
	if !cq.startMax.IsZero() && !cq.futureEvents {
		b.TimeParam("timeMax", cq.startMax)
	}
	if cq.timeZone != "" {
		b.RawParam("timeZone", escapeTimeZone(cq.timeZone))
	}
	if cq.maxAttendees > 0 {
		b.IntParam("maxAttendees", cq.maxAttendees)
	}
	b.BoolParam("showDeleted", cq.showDeleted)
}

// orderByParam translates an ordering to the wire vocabulary.
func orderByParam(orderBy string) string {
	switch orderBy {
	case OrderByLastModified:
		return "updated"
	case OrderByStartTime:
		return "startTime"
	}
	return orderBy
}

// escapeTimeZone escapes an Olson timezone identifier, keeping the
// slashes between its segments literal.
func escapeTimeZone(tz string) string {
	segments := strings.Split(tz, "/")
	for i, seg := range segments {
		segments[i] = url.QueryEscape(seg)
	}
	return strings.Join(segments, "/")
}
