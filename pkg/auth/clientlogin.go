package auth

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/GNOME/libgdata-sub004/pkg/errors"
	"github.com/GNOME/libgdata-sub004/pkg/logging"
)

// ClientLoginEndpoint is the token endpoint of the legacy
// username/password login protocol.
const ClientLoginEndpoint = "https://www.google.com/accounts/ClientLogin"

// captchaImageBase prefixes the relative CAPTCHA image path the
// endpoint returns.
const captchaImageBase = "http://www.google.com/accounts/"

// ClientLoginAuthorizer authorizes requests with the legacy
// username/password login protocol. Each domain gets its own token,
// obtained by Authenticate and sent as a GoogleLogin header. Tokens are
// long-lived; RefreshAuthorization is a no-op.
type ClientLoginAuthorizer struct {
	clientID string
	client   *http.Client
	domains  []*Domain

	allowInsecureLocalhost bool

	mu       sync.Mutex
	username string
	password *Secret
	tokens   map[Domain]*Secret
}

// ClientLoginOption configures a ClientLoginAuthorizer.
type ClientLoginOption func(*ClientLoginAuthorizer)

// WithClientLoginHTTPClient sets the HTTP client used for token
// requests.
func WithClientLoginHTTPClient(c *http.Client) ClientLoginOption {
	return func(a *ClientLoginAuthorizer) { a.client = c }
}

// WithClientLoginEndpointInsecureLocalhost permits sending credentials
// to loopback addresses over plain HTTP, for tests against local
// servers.
func WithClientLoginEndpointInsecureLocalhost() ClientLoginOption {
	return func(a *ClientLoginAuthorizer) { a.allowInsecureLocalhost = true }
}

// NewClientLoginAuthorizer creates an authorizer identified to the
// endpoint as clientID, covering the given domains.
func NewClientLoginAuthorizer(clientID string, domains []*Domain, opts ...ClientLoginOption) *ClientLoginAuthorizer {
	a := &ClientLoginAuthorizer{
		clientID: clientID,
		client:   http.DefaultClient,
		domains:  domains,
		tokens:   make(map[Domain]*Secret),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate obtains a token for every domain using the given
// username and password. When a previous attempt returned an
// AuthCaptchaRequired error, pass its token back with the user's
// answer; otherwise leave both empty. On a CAPTCHA challenge the
// returned AuthError carries the new token and image URI.
func (a *ClientLoginAuthorizer) Authenticate(ctx context.Context, username, password, captchaToken, captchaAnswer string) error {
	a.mu.Lock()
	if a.password != nil {
		a.password.Destroy()
	}
	a.username = username
	a.password = NewSecret(password)
	a.mu.Unlock()

	for _, domain := range a.domains {
		token, err := a.authenticateDomain(ctx, domain, username, password, captchaToken, captchaAnswer)
		if err != nil {
			return err
		}
		a.mu.Lock()
		if old := a.tokens[*domain]; old != nil {
			old.Destroy()
		}
		a.tokens[*domain] = NewSecret(token)
		a.mu.Unlock()
	}
	return nil
}

func (a *ClientLoginAuthorizer) authenticateDomain(ctx context.Context, domain *Domain, username, password, captchaToken, captchaAnswer string) (string, error) {
	form := url.Values{}
	form.Set("accountType", "HOSTED_OR_GOOGLE")
	form.Set("Email", username)
	form.Set("Passwd", password)
	form.Set("service", domain.ServiceName)
	form.Set("source", a.clientID)
	if captchaToken != "" {
		form.Set("logintoken", captchaToken)
		form.Set("loginanswer", captchaAnswer)
	}

	// The credentials are copied into a pageable request body here;
	// the body is transient and wiped once the request completes.
	body := []byte(form.Encode())
	defer wipe(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ClientLoginEndpoint, strings.NewReader(string(body)))
	if err != nil {
		return "", errors.NewNetworkError("authenticate", ClientLoginEndpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logging.Ctx(ctx).Debug().
		Str("service", domain.ServiceName).
		Str("username", username).
		Msg("requesting login token")

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.WrapCanceled(ctx.Err())
		}
		return "", errors.NewNetworkError("authenticate", ClientLoginEndpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewNetworkError("authenticate", ClientLoginEndpoint, err)
	}
	fields := parseTokenBody(string(raw))

	if resp.StatusCode == http.StatusOK {
		token, ok := fields["Auth"]
		if !ok {
			return "", errors.NewProtocolError(resp.StatusCode, "login response carried no token")
		}
		return token, nil
	}

	return "", clientLoginError(resp.StatusCode, fields)
}

// parseTokenBody splits a key=value-per-line response body.
func parseTokenBody(body string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		key, value, ok := strings.Cut(strings.TrimRight(line, "\r"), "=")
		if ok {
			fields[key] = value
		}
	}
	return fields
}

// clientLoginError maps the endpoint's error tokens onto the library's
// authorization error kinds.
func clientLoginError(status int, fields map[string]string) error {
	switch fields["Error"] {
	case "CaptchaRequired":
		authErr := errors.NewAuthError(errors.AuthCaptchaRequired)
		authErr.CaptchaToken = fields["CaptchaToken"]
		if path, ok := fields["CaptchaUrl"]; ok {
			authErr.CaptchaURI = captchaImageBase + path
		}
		return authErr
	case "BadAuthentication":
		if fields["Info"] == "InvalidSecondFactor" {
			return errors.NewAuthError(errors.AuthInvalidSecondFactor)
		}
		return errors.NewAuthError(errors.AuthBadCredentials)
	case "NotVerified":
		return errors.NewAuthError(errors.AuthNotVerified)
	case "TermsNotAgreed":
		return errors.NewAuthError(errors.AuthTermsNotAgreed)
	case "AccountDeleted":
		return errors.NewAuthError(errors.AuthAccountDeleted)
	case "AccountDisabled":
		return errors.NewAuthError(errors.AuthAccountDisabled)
	case "ServiceDisabled":
		return errors.NewAuthError(errors.AuthServiceDisabled)
	case "ServiceUnavailable":
		return errors.NewAuthError(errors.AuthServiceUnavailable)
	}
	return errors.NewProtocolError(status, "unrecognized login failure")
}

// ProcessRequest implements Authorizer.
func (a *ClientLoginAuthorizer) ProcessRequest(domain *Domain, req *http.Request) error {
	if domain == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	token := a.tokens[*domain]
	if token == nil {
		return nil
	}
	if !secureForCredentials(req, a.allowInsecureLocalhost) {
		logging.Default().Warn().
			Str("uri", req.URL.Redacted()).
			Msg("refusing to attach login token to a cleartext request")
		return nil
	}
	token.With(func(value []byte) {
		header := append([]byte("GoogleLogin auth="), value...)
		req.Header.Set("Authorization", string(header))
		wipe(header)
	})
	return nil
}

// IsAuthorizedFor implements Authorizer.
func (a *ClientLoginAuthorizer) IsAuthorizedFor(domain *Domain) bool {
	if domain == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tokens[*domain] != nil
}

// RefreshAuthorization implements Authorizer. Login tokens cannot be
// refreshed without the user's credentials, so this never refreshes.
func (a *ClientLoginAuthorizer) RefreshAuthorization(context.Context) (bool, error) {
	return false, nil
}

// Username returns the account name of the last Authenticate call.
func (a *ClientLoginAuthorizer) Username() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.username
}

// ClientID returns the application identifier sent to the endpoint.
func (a *ClientLoginAuthorizer) ClientID() string { return a.clientID }
