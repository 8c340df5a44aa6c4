package gdata

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/GNOME/libgdata-sub004/pkg/auth"
)

// Option is a function that configures a Service.
type Option func(*Service) error

// WithHTTPClient sets the HTTP client requests are sent through.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) error {
		s.client = client
		return nil
	}
}

// WithAuthorizer sets the authorizer that signs requests. A Service
// without one only reaches feeds that need no authorization.
func WithAuthorizer(authorizer auth.Authorizer) Option {
	return func(s *Service) error {
		s.authorizer = authorizer
		return nil
	}
}

// WithLogger sets the logger request lifecycle events are written to.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Service) error {
		s.logger = logger
		return nil
	}
}

// WithUserAgent sets the application identifier prepended to the
// library's own User-Agent value.
func WithUserAgent(userAgent string) Option {
	return func(s *Service) error {
		s.userAgent = userAgent
		return nil
	}
}

// WithProtocolVersion overrides the GData-Version header value.
func WithProtocolVersion(version string) Option {
	return func(s *Service) error {
		s.protocolVersion = version
		return nil
	}
}

// WithLocale sets the locale sent as the Accept-Language header.
func WithLocale(locale string) Option {
	return func(s *Service) error {
		s.locale = locale
		return nil
	}
}

// WithRetryPolicy replaces the default retry behavior.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(s *Service) error {
		s.retry = policy
		return nil
	}
}

// WithErrorParser installs a service-specific decoder for error
// response bodies.
func WithErrorParser(parser ErrorParser) Option {
	return func(s *Service) error {
		s.parseError = parser
		return nil
	}
}

// WithMethodOverride makes update and delete requests go out as POST
// with an X-HTTP-Method-Override header, for clients behind gateways
// that block PUT and DELETE.
func WithMethodOverride() Option {
	return func(s *Service) error {
		s.methodOverride = true
		return nil
	}
}

// RetryPolicy controls how the Service reacts to retryable failures.
type RetryPolicy struct {
	// RefreshOnUnauthorized refreshes the authorizer's grant and
	// retries once when the server answers 401 or 403.
	RefreshOnUnauthorized bool

	// MaxTransientRetries is how many times a request is retried after
	// a 5xx response or a transport failure.
	MaxTransientRetries int

	// TransientBackoff is the pause before each transient retry.
	TransientBackoff time.Duration
}

// DefaultRetryPolicy refreshes authorization once on 401/403 and does
// not retry transient failures.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{RefreshOnUnauthorized: true}
}
