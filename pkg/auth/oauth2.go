package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/GNOME/libgdata-sub004/pkg/errors"
	"github.com/GNOME/libgdata-sub004/pkg/logging"
)

// OAuth 2.0 endpoints of the accounts service.
const (
	OAuth2AuthEndpoint  = "https://accounts.google.com/o/oauth2/auth"
	OAuth2TokenEndpoint = "https://accounts.google.com/o/oauth2/token"
)

// OutOfBandRedirectURI asks the authorization server to display the
// code to the user for manual copying instead of redirecting.
const OutOfBandRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

// OAuth2Authorizer signs requests with OAuth 2.0 bearer tokens
// obtained through the authorization code flow. AuthorizationURL gives
// the page where the user grants access; ExchangeCode turns the
// resulting code into a token. Expired tokens refresh transparently
// when a refresh token is held.
type OAuth2Authorizer struct {
	config  *oauth2.Config
	client  *http.Client
	domains []*Domain

	allowInsecureLocalhost bool

	mu     sync.Mutex
	token  *oauth2.Token
	source oauth2.TokenSource
}

// OAuth2Option configures an OAuth2Authorizer.
type OAuth2Option func(*OAuth2Authorizer)

// WithOAuth2HTTPClient sets the HTTP client used for token exchange
// and refresh.
func WithOAuth2HTTPClient(c *http.Client) OAuth2Option {
	return func(a *OAuth2Authorizer) { a.client = c }
}

// WithOAuth2Endpoint overrides the authorization and token endpoints,
// for tests.
func WithOAuth2Endpoint(authURL, tokenURL string) OAuth2Option {
	return func(a *OAuth2Authorizer) {
		a.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	}
}

// WithOAuth2InsecureLocalhost permits sending bearer tokens to
// loopback addresses over plain HTTP, for tests against local servers.
func WithOAuth2InsecureLocalhost() OAuth2Option {
	return func(a *OAuth2Authorizer) { a.allowInsecureLocalhost = true }
}

// NewOAuth2Authorizer creates an authorizer for a registered client.
// redirectURI is where the authorization server sends the user after
// granting access; pass OutOfBandRedirectURI for manual code entry.
// The requested scope is the union of the domains' scopes.
func NewOAuth2Authorizer(clientID, clientSecret, redirectURI string, domains []*Domain, opts ...OAuth2Option) *OAuth2Authorizer {
	scopes := make([]string, 0, len(domains))
	for _, d := range domains {
		scopes = append(scopes, d.Scope)
	}
	a := &OAuth2Authorizer{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  OAuth2AuthEndpoint,
				TokenURL: OAuth2TokenEndpoint,
			},
		},
		client:  http.DefaultClient,
		domains: domains,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AuthorizationURL returns the page where the user grants access.
// state is echoed back on the redirect for CSRF protection; it may be
// empty with the out-of-band redirect.
func (a *OAuth2Authorizer) AuthorizationURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode trades the authorization code for a token. After a
// successful exchange the authorizer signs requests for its domains.
func (a *OAuth2Authorizer) ExchangeCode(ctx context.Context, code string) error {
	tok, err := a.config.Exchange(a.httpContext(ctx), code)
	if err != nil {
		if ctx.Err() != nil {
			return errors.WrapCanceled(ctx.Err())
		}
		return &errors.AuthError{Kind: errors.AuthBadCredentials, Err: err}
	}
	a.setToken(tok)
	logging.Ctx(ctx).Debug().Msg("exchanged authorization code")
	return nil
}

// SetToken installs a previously saved token, e.g. one restored from a
// credential cache.
func (a *OAuth2Authorizer) SetToken(tok *oauth2.Token) { a.setToken(tok) }

// Token returns a copy of the current token, or nil before
// authorization. Callers persisting credentials use it to fill their
// cache.
func (a *OAuth2Authorizer) Token() *oauth2.Token {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == nil {
		return nil
	}
	copied := *a.token
	return &copied
}

func (a *OAuth2Authorizer) setToken(tok *oauth2.Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = tok
	a.source = a.config.TokenSource(context.WithValue(context.Background(), oauth2.HTTPClient, a.client), tok)
}

func (a *OAuth2Authorizer) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.client)
}

// ProcessRequest implements Authorizer.
func (a *OAuth2Authorizer) ProcessRequest(domain *Domain, req *http.Request) error {
	if domain == nil || !a.coversDomain(domain) {
		return nil
	}
	a.mu.Lock()
	source := a.source
	a.mu.Unlock()
	if source == nil {
		return nil
	}
	if !secureForCredentials(req, a.allowInsecureLocalhost) {
		logging.Default().Warn().
			Str("uri", req.URL.Redacted()).
			Msg("refusing to attach bearer token to a cleartext request")
		return nil
	}

	tok, err := source.Token()
	if err != nil {
		return &errors.AuthError{Kind: errors.AuthBadCredentials, Err: err}
	}
	a.mu.Lock()
	a.token = tok
	a.mu.Unlock()
	tok.SetAuthHeader(req)
	return nil
}

// IsAuthorizedFor implements Authorizer.
func (a *OAuth2Authorizer) IsAuthorizedFor(domain *Domain) bool {
	if domain == nil || !a.coversDomain(domain) {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != nil
}

// RefreshAuthorization implements Authorizer. It forces a refresh
// using the stored refresh token, reporting false when none is held.
func (a *OAuth2Authorizer) RefreshAuthorization(ctx context.Context) (bool, error) {
	a.mu.Lock()
	tok := a.token
	a.mu.Unlock()
	if tok == nil || tok.RefreshToken == "" {
		return false, nil
	}

	// Dropping the access token from the seed forces the source to go
	// to the token endpoint instead of returning the cached value.
	seed := &oauth2.Token{RefreshToken: tok.RefreshToken}
	fresh, err := a.config.TokenSource(a.httpContext(ctx), seed).Token()
	if err != nil {
		if ctx.Err() != nil {
			return false, errors.WrapCanceled(ctx.Err())
		}
		return false, &errors.AuthError{Kind: errors.AuthBadCredentials, Err: err}
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = tok.RefreshToken
	}
	a.setToken(fresh)
	logging.Ctx(ctx).Debug().Msg("refreshed access token")
	return true, nil
}

// Scope returns the space-joined scope string the authorizer requests.
func (a *OAuth2Authorizer) Scope() string {
	return strings.Join(a.config.Scopes, " ")
}

func (a *OAuth2Authorizer) coversDomain(domain *Domain) bool {
	for _, d := range a.domains {
		if *d == *domain {
			return true
		}
	}
	return false
}
