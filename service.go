package gdata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/auth"
	"github.com/GNOME/libgdata-sub004/pkg/errors"
	"github.com/GNOME/libgdata-sub004/pkg/logging"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
	"github.com/GNOME/libgdata-sub004/pkg/query"
)

// ErrorParser decodes a service's error response body into a library
// error. Returning nil falls back to a generic protocol error.
type ErrorParser func(statusCode int, contentType string, body []byte) error

// ProgressFunc is called once per entry while a feed response is
// parsed, with the entry's position and the feed's total result count
// (0 when the feed did not report one).
type ProgressFunc func(entry atom.EntryLike, index, total int)

// Service issues requests against one GData service: feed queries,
// entry CRUD, batches and media transfers. Concrete service packages
// wrap it with typed operations; Service itself is safe for concurrent
// use.
type Service struct {
	client          *http.Client
	authorizer      auth.Authorizer
	logger          *zerolog.Logger
	userAgent       string
	protocolVersion string
	locale          string
	retry           RetryPolicy
	parseError      ErrorParser
	methodOverride  bool
}

// NewService creates a Service with the given options.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		client:          http.DefaultClient,
		logger:          logging.Default(),
		protocolVersion: defaultProtocolVersion,
		retry:           DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("configuring service: %w", err)
		}
	}
	return s, nil
}

// Authorizer returns the authorizer signing this service's requests,
// or nil when none is set.
func (s *Service) Authorizer() auth.Authorizer { return s.authorizer }

// maxRedirects bounds manual redirect following.
const maxRedirects = 10

// request is one logical operation; its body can be replayed across
// redirects and retries.
type request struct {
	method      string
	uri         string
	body        []byte
	contentType string
	header      http.Header
}

func (s *Service) userAgentValue() string {
	base := "gdata-go/" + Version
	if s.userAgent == "" {
		return base
	}
	return s.userAgent + " " + base
}

// send builds, signs and sends req, following redirects (re-signing
// each hop), refreshing authorization once on 401/403 when the policy
// allows, and retrying transient failures. The caller owns the
// returned response body.
func (s *Service) send(ctx context.Context, domain *auth.Domain, req *request) (*http.Response, error) {
	logger := logging.FromContext(ctx)
	if logger == logging.Default() {
		logger = s.logger
	}

	uri := req.uri
	method := req.method
	refreshed := false
	transientRetries := 0

	for hops := 0; ; hops++ {
		if hops > maxRedirects {
			return nil, errors.NewProtocolError(0, "too many redirects")
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled(err)
		}

		httpReq, err := s.buildRequest(ctx, domain, method, uri, req)
		if err != nil {
			return nil, err
		}

		logger.Debug().
			Str("method", method).
			Str("uri", uri).
			Msg("sending request")

		resp, err := s.bareClient().Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.WrapCanceled(ctx.Err())
			}
			if transientRetries < s.retry.MaxTransientRetries {
				transientRetries++
				s.pause(ctx)
				continue
			}
			return nil, errors.NewNetworkError(method, uri, err)
		}

		switch {
		case resp.StatusCode >= 300 && resp.StatusCode < 400 && resp.StatusCode != http.StatusNotModified:
			location := resp.Header.Get("Location")
			drain(resp)
			if location == "" {
				return nil, errors.NewProtocolError(resp.StatusCode, "redirect without a location")
			}
			if redirected, err := httpReq.URL.Parse(location); err == nil {
				location = redirected.String()
			}
			uri = location
			if resp.StatusCode == http.StatusSeeOther {
				method = http.MethodGet
			}
			continue

		case (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) &&
			s.retry.RefreshOnUnauthorized && !refreshed && s.authorizer != nil:
			drain(resp)
			refreshed = true
			ok, err := s.authorizer.RefreshAuthorization(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.ErrAuthenticationRequired
			}
			logger.Debug().Str("uri", uri).Msg("refreshed authorization, retrying")
			continue

		case resp.StatusCode >= 500 && transientRetries < s.retry.MaxTransientRetries:
			drain(resp)
			transientRetries++
			s.pause(ctx)
			continue
		}

		return resp, nil
	}
}

func (s *Service) buildRequest(ctx context.Context, domain *auth.Domain, method, uri string, req *request) (*http.Request, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, errors.NewNetworkError(method, uri, err)
	}

	httpReq.Header.Set("GData-Version", s.protocolVersion)
	httpReq.Header.Set("User-Agent", s.userAgentValue())
	if s.locale != "" {
		httpReq.Header.Set("Accept-Language", s.locale)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	for key, values := range req.header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	if s.authorizer != nil {
		if err := s.authorizer.ProcessRequest(domain, httpReq); err != nil {
			return nil, err
		}
	}
	return httpReq, nil
}

// sendOnce builds, signs and sends req with no redirect or retry
// handling, for protocol exchanges where intermediate status codes
// carry meaning.
func (s *Service) sendOnce(ctx context.Context, domain *auth.Domain, req *request) (*http.Response, error) {
	httpReq, err := s.buildRequest(ctx, domain, req.method, req.uri, req)
	if err != nil {
		return nil, err
	}
	resp, err := s.bareClient().Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.WrapCanceled(ctx.Err())
		}
		return nil, errors.NewNetworkError(req.method, req.uri, err)
	}
	return resp, nil
}

// bareClient returns the configured client with automatic redirect
// following disabled, so each hop goes back through the authorizer.
func (s *Service) bareClient() *http.Client {
	c := *s.client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}

func (s *Service) pause(ctx context.Context) {
	if s.retry.TransientBackoff <= 0 {
		return
	}
	t := time.NewTimer(s.retry.TransientBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
}

// checkResponse turns a non-2xx response into a library error, handing
// the body to the service's error decoder when one is installed.
func (s *Service) checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotModified {
		return errors.ErrNotModified
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return s.responseError(resp.StatusCode, resp.Header.Get("Content-Type"), body)
}

// responseError decodes an error payload that has already been read.
func (s *Service) responseError(statusCode int, contentType string, body []byte) error {
	if s.parseError != nil {
		if err := s.parseError(statusCode, contentType, body); err != nil {
			return err
		}
	}
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return errors.NewProtocolError(statusCode, message)
}

// isJSONContentType reports whether a response Content-Type denotes
// JSON. An absent value is treated as XML, which every legacy service
// speaks.
func isJSONContentType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// QueryFeed fetches feedURI restricted by q and parses the result into
// a feed of entries built by factory. q may be nil for an unrestricted
// query. When q carries an ETag from a previous run, the request is
// conditional and an unchanged result set yields ErrNotModified.
// progress, when non-nil, is called for each parsed entry in document
// order.
func (s *Service) QueryFeed(ctx context.Context, domain *auth.Domain, feedURI string, q query.ParamSource, factory atom.EntryFactory, progress ProgressFunc) (*atom.Feed, error) {
	uri := feedURI
	header := http.Header{}
	var base *query.Query
	if q != nil {
		base = q.BaseQuery()
		uri = query.BuildURI(q, feedURI)
		if etag := base.ETag(); etag != "" {
			header.Set("If-None-Match", etag)
		}
	}

	resp, err := s.send(ctx, domain, &request{method: http.MethodGet, uri: uri, header: header})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, errors.ErrNotModified
	}
	if err := s.checkResponse(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError(http.MethodGet, uri, err)
	}

	var feed *atom.Feed
	if isJSONContentType(resp.Header.Get("Content-Type")) {
		feed, err = atom.ParseFeedJSON(body, factory)
	} else {
		feed, err = atom.ParseFeedXML(body, factory)
	}
	if err != nil {
		return nil, err
	}

	if base != nil {
		s.storePaginationState(base, feed)
	}

	if progress != nil {
		for i, entry := range feed.Entries {
			progress(entry, i, feed.TotalResults)
		}
	}
	return feed, nil
}

// storePaginationState records the feed's ETag and paging handles on
// the query so NextPage and PreviousPage can work.
func (s *Service) storePaginationState(base *query.Query, feed *atom.Feed) {
	base.SetETag(feed.ETag)
	base.ClearPagination()
	switch base.Pagination() {
	case query.PaginationPages:
		if next := feed.LookupLink(atom.RelNext); next != nil {
			base.SetNextURI(next.Href)
		}
		if previous := feed.LookupLink(atom.RelPrevious); previous != nil {
			base.SetPreviousURI(previous.Href)
		}
	case query.PaginationTokens:
		base.SetNextPageToken(feed.NextPageToken)
	}
}

// GetEntry fetches a single entry from uri into an instance built by
// factory. A non-empty etag makes the request conditional: an
// unchanged entry yields ErrNotModified.
func (s *Service) GetEntry(ctx context.Context, domain *auth.Domain, uri, etag string, factory atom.EntryFactory) (atom.EntryLike, error) {
	header := http.Header{}
	if etag != "" {
		header.Set("If-None-Match", etag)
	}

	resp, err := s.send(ctx, domain, &request{method: http.MethodGet, uri: uri, header: header})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, errors.ErrNotModified
	}
	if err := s.checkResponse(resp); err != nil {
		return nil, err
	}
	return s.parseEntryResponse(resp, factory)
}

// InsertEntry creates entry in the collection at uploadURI, returning
// the server's copy with its assigned id, ETag and links.
func (s *Service) InsertEntry(ctx context.Context, domain *auth.Domain, uploadURI string, entry atom.EntryLike, factory atom.EntryFactory) (atom.EntryLike, error) {
	body, contentType, err := serializeEntry(entry)
	if err != nil {
		return nil, err
	}

	resp, err := s.send(ctx, domain, &request{
		method:      http.MethodPost,
		uri:         uploadURI,
		body:        body,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := s.checkResponse(resp); err != nil {
		return nil, err
	}
	return s.parseEntryResponse(resp, factory)
}

// UpdateEntry writes entry back to its edit link, guarded by its ETag
// so a concurrent modification surfaces as ErrConflict. The server's
// copy is returned.
func (s *Service) UpdateEntry(ctx context.Context, domain *auth.Domain, entry atom.EntryLike, factory atom.EntryFactory) (atom.EntryLike, error) {
	base := entry.EntryBase()
	link := base.LookupLink(atom.RelEdit)
	if link == nil {
		return nil, errors.New("entry has no edit link")
	}

	body, contentType, err := serializeEntry(entry)
	if err != nil {
		return nil, err
	}

	req := &request{
		method:      http.MethodPut,
		uri:         link.Href,
		body:        body,
		contentType: contentType,
		header:      http.Header{},
	}
	if base.ETag != "" {
		req.header.Set("If-Match", base.ETag)
	}
	if s.methodOverride {
		req.method = http.MethodPost
		req.header.Set("X-HTTP-Method-Override", http.MethodPut)
	}

	resp, err := s.send(ctx, domain, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := s.checkResponse(resp); err != nil {
		return nil, err
	}
	return s.parseEntryResponse(resp, factory)
}

// DeleteEntry removes entry through its edit link, guarded by its
// ETag.
func (s *Service) DeleteEntry(ctx context.Context, domain *auth.Domain, entry atom.EntryLike) error {
	base := entry.EntryBase()
	link := base.LookupLink(atom.RelEdit)
	if link == nil {
		link = base.LookupLink(atom.RelSelf)
	}
	if link == nil {
		return errors.New("entry has no edit link")
	}

	req := &request{
		method: http.MethodDelete,
		uri:    link.Href,
		header: http.Header{},
	}
	if base.ETag != "" {
		req.header.Set("If-Match", base.ETag)
	}
	if s.methodOverride {
		req.method = http.MethodPost
		req.header.Set("X-HTTP-Method-Override", http.MethodDelete)
	}

	resp, err := s.send(ctx, domain, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return s.checkResponse(resp)
}

func (s *Service) parseEntryResponse(resp *http.Response, factory atom.EntryFactory) (atom.EntryLike, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError(resp.Request.Method, resp.Request.URL.String(), err)
	}
	return parseEntry(body, resp.Header.Get("Content-Type"), factory)
}

// parseEntry decodes one entry document, picking the codec from the
// content type and defaulting to XML. A nil factory yields plain
// atom entries, matching the feed path.
func parseEntry(body []byte, contentType string, factory atom.EntryFactory) (atom.EntryLike, error) {
	if factory == nil {
		factory = func() atom.EntryLike { return &atom.Entry{} }
	}
	entry := factory()
	if isJSONContentType(contentType) {
		jp, ok := any(entry).(parsable.JSONParsable)
		if !ok {
			return nil, errors.NewParseError(errors.ParseUnhandledContent, "entry")
		}
		if err := parsable.FromJSON(body, jp); err != nil {
			return nil, err
		}
		return entry, nil
	}
	if err := parsable.FromXML(body, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// serializeEntry renders an entry in its native payload form.
func serializeEntry(entry atom.EntryLike) (body []byte, contentType string, err error) {
	contentType = parsable.ContentTypeAtomXML
	if payload, ok := any(entry).(parsable.Payload); ok {
		contentType = payload.ContentType()
	}
	if contentType == parsable.ContentTypeJSON {
		jp, ok := any(entry).(parsable.JSONParsable)
		if !ok {
			return nil, "", errors.NewParseError(errors.ParseUnhandledContent, "entry")
		}
		body, err = parsable.ToJSON(jp)
		return body, contentType, err
	}
	return []byte(parsable.ToXML(entry)), contentType, nil
}
