package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GNOME/libgdata-sub004/pkg/errors"
	"github.com/GNOME/libgdata-sub004/pkg/logging"
)

// OAuth 1.0a endpoints of the accounts service.
const (
	OAuth1RequestTokenEndpoint = "https://www.google.com/accounts/OAuthGetRequestToken"
	OAuth1AuthorizeEndpoint    = "https://www.google.com/accounts/OAuthAuthorizeToken"
	OAuth1AccessTokenEndpoint  = "https://www.google.com/accounts/OAuthGetAccessToken"
)

// OAuth1Authorizer signs requests with OAuth 1.0a HMAC-SHA1
// signatures. Installed applications use the anonymous consumer
// credentials; registered ones supply their own through
// WithOAuth1Consumer.
//
// The three-legged flow: RequestAuthenticationURI yields a URI the
// user opens in a browser plus a temporary token pair; the verifier
// the user receives goes to RequestAuthorization, which trades the
// pair for the long-lived access token.
type OAuth1Authorizer struct {
	applicationName string
	consumerKey     string
	consumerSecret  *Secret
	locale          string
	client          *http.Client
	domains         []*Domain

	allowInsecureLocalhost bool
	requestTokenEndpoint   string
	accessTokenEndpoint    string

	mu          sync.Mutex
	token       string
	tokenSecret *Secret
}

// OAuth1Option configures an OAuth1Authorizer.
type OAuth1Option func(*OAuth1Authorizer)

// WithOAuth1Consumer sets registered consumer credentials in place of
// the anonymous pair.
func WithOAuth1Consumer(key, secret string) OAuth1Option {
	return func(a *OAuth1Authorizer) {
		a.consumerKey = key
		a.consumerSecret.Destroy()
		a.consumerSecret = NewSecret(secret)
	}
}

// WithOAuth1HTTPClient sets the HTTP client used for the token dance.
func WithOAuth1HTTPClient(c *http.Client) OAuth1Option {
	return func(a *OAuth1Authorizer) { a.client = c }
}

// WithOAuth1Locale localizes the authorization page.
func WithOAuth1Locale(locale string) OAuth1Option {
	return func(a *OAuth1Authorizer) { a.locale = locale }
}

// WithOAuth1Endpoints overrides the token endpoints, for tests.
func WithOAuth1Endpoints(requestToken, accessToken string) OAuth1Option {
	return func(a *OAuth1Authorizer) {
		a.requestTokenEndpoint = requestToken
		a.accessTokenEndpoint = accessToken
	}
}

// WithOAuth1InsecureLocalhost permits signing requests to loopback
// addresses over plain HTTP, for tests against local servers.
func WithOAuth1InsecureLocalhost() OAuth1Option {
	return func(a *OAuth1Authorizer) { a.allowInsecureLocalhost = true }
}

// NewOAuth1Authorizer creates an authorizer displaying applicationName
// on the authorization pages and covering the given domains.
func NewOAuth1Authorizer(applicationName string, domains []*Domain, opts ...OAuth1Option) *OAuth1Authorizer {
	a := &OAuth1Authorizer{
		applicationName:      applicationName,
		consumerKey:          "anonymous",
		consumerSecret:       NewSecret("anonymous"),
		client:               http.DefaultClient,
		domains:              domains,
		requestTokenEndpoint: OAuth1RequestTokenEndpoint,
		accessTokenEndpoint:  OAuth1AccessTokenEndpoint,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RequestAuthenticationURI obtains a temporary token pair and returns
// the URI of the page where the user authorizes it, along with the
// pair. The secret never leaves this process; pass both values to
// RequestAuthorization together with the user's verification code.
func (a *OAuth1Authorizer) RequestAuthenticationURI(ctx context.Context) (authURI, token string, tokenSecret *Secret, err error) {
	scopes := make([]string, 0, len(a.domains))
	for _, d := range a.domains {
		scopes = append(scopes, d.Scope)
	}

	extra := map[string]string{
		"scope":              strings.Join(scopes, " "),
		"xoauth_displayname": a.applicationName,
		"oauth_callback":     "oob",
	}
	fields, err := a.tokenRequest(ctx, a.requestTokenEndpoint, extra, "", nil)
	if err != nil {
		return "", "", nil, err
	}

	tok := fields.Get("oauth_token")
	secret := fields.Get("oauth_token_secret")
	if tok == "" || secret == "" || fields.Get("oauth_callback_confirmed") != "true" {
		return "", "", nil, errors.NewProtocolError(http.StatusOK, "malformed temporary credentials response")
	}

	uri := OAuth1AuthorizeEndpoint + "?oauth_token=" + url.QueryEscape(tok)
	if a.locale != "" {
		uri += "&hl=" + url.QueryEscape(a.locale)
	}
	return uri, tok, NewSecret(secret), nil
}

// RequestAuthorization trades an authorized temporary token pair and
// the user's verification code for the access token, after which the
// authorizer can sign requests. The temporary secret is destroyed.
func (a *OAuth1Authorizer) RequestAuthorization(ctx context.Context, token string, tokenSecret *Secret, verifier string) error {
	defer tokenSecret.Destroy()

	extra := map[string]string{"oauth_verifier": verifier}
	fields, err := a.tokenRequest(ctx, a.accessTokenEndpoint, extra, token, tokenSecret)
	if err != nil {
		return err
	}

	tok := fields.Get("oauth_token")
	secret := fields.Get("oauth_token_secret")
	if tok == "" || secret == "" {
		return errors.NewProtocolError(http.StatusOK, "malformed access token response")
	}

	a.mu.Lock()
	if a.tokenSecret != nil {
		a.tokenSecret.Destroy()
	}
	a.token = tok
	a.tokenSecret = NewSecret(secret)
	a.mu.Unlock()

	logging.Ctx(ctx).Debug().Msg("obtained access token")
	return nil
}

func (a *OAuth1Authorizer) tokenRequest(ctx context.Context, endpoint string, extra map[string]string, token string, tokenSecret *Secret) (url.Values, error) {
	form := url.Values{}
	for k, v := range extra {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.NewNetworkError("token request", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	a.sign(req, token, tokenSecret, extra)

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.WrapCanceled(ctx.Err())
		}
		return nil, errors.NewNetworkError("token request", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError("token request", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewProtocolError(resp.StatusCode, "token endpoint rejected the request")
	}

	fields, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, errors.NewProtocolError(resp.StatusCode, "malformed token response")
	}
	return fields, nil
}

// sign computes the HMAC-SHA1 signature over the canonical base string
// and writes the OAuth Authorization header. extra carries form
// parameters that participate in the signature.
func (a *OAuth1Authorizer) sign(req *http.Request, token string, tokenSecret *Secret, extra map[string]string) {
	nonce := uuid.NewString()
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	params := map[string]string{
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_consumer_key":     a.consumerKey,
		"oauth_nonce":            nonce,
		"oauth_timestamp":        timestamp,
		"oauth_version":          "1.0",
	}
	if token != "" {
		params["oauth_token"] = token
	}
	for k, v := range extra {
		params[k] = v
	}

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
	}
	sort.Strings(pairs)
	query := strings.Join(pairs, "&")

	baseURI := *req.URL
	baseURI.RawQuery = ""
	baseURI.Fragment = ""
	base := percentEncode(req.Method) + "&" + percentEncode(baseURI.String()) + "&" + percentEncode(query)

	key := []byte(percentEncode(a.consumerSecret.revealString()) + "&")
	if tokenSecret != nil {
		key = append(key, percentEncode(tokenSecret.revealString())...)
	}
	mac := hmac.New(sha1.New, key)
	wipe(key)
	mac.Write([]byte(base))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	var header strings.Builder
	header.WriteString(`OAuth oauth_consumer_key="`)
	header.WriteString(percentEncode(a.consumerKey))
	if token != "" {
		header.WriteString(`",oauth_token="`)
		header.WriteString(percentEncode(token))
	}
	header.WriteString(`",oauth_signature_method="HMAC-SHA1",oauth_signature="`)
	header.WriteString(percentEncode(signature))
	header.WriteString(`",oauth_timestamp="`)
	header.WriteString(timestamp)
	header.WriteString(`",oauth_nonce="`)
	header.WriteString(percentEncode(nonce))
	header.WriteString(`",oauth_version="1.0"`)

	req.Header.Set("Authorization", header.String())
}

// percentEncode applies the strict RFC 5849 encoding: everything but
// unreserved characters is escaped, and spaces become %20.
func percentEncode(s string) string {
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

// ProcessRequest implements Authorizer.
func (a *OAuth1Authorizer) ProcessRequest(domain *Domain, req *http.Request) error {
	if domain == nil || !a.coversDomain(domain) {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == "" {
		return nil
	}
	if !secureForCredentials(req, a.allowInsecureLocalhost) {
		logging.Default().Warn().
			Str("uri", req.URL.Redacted()).
			Msg("refusing to sign a cleartext request")
		return nil
	}
	a.sign(req, a.token, a.tokenSecret, nil)
	return nil
}

// IsAuthorizedFor implements Authorizer.
func (a *OAuth1Authorizer) IsAuthorizedFor(domain *Domain) bool {
	if domain == nil || !a.coversDomain(domain) {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != ""
}

// RefreshAuthorization implements Authorizer. Access tokens are
// long-lived and cannot be refreshed without user interaction.
func (a *OAuth1Authorizer) RefreshAuthorization(context.Context) (bool, error) {
	return false, nil
}

// ApplicationName returns the name shown on authorization pages.
func (a *OAuth1Authorizer) ApplicationName() string { return a.applicationName }

func (a *OAuth1Authorizer) coversDomain(domain *Domain) bool {
	for _, d := range a.domains {
		if *d == *domain {
			return true
		}
	}
	return false
}
