package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GNOME/libgdata-sub004/pkg/auth"
	gderrors "github.com/GNOME/libgdata-sub004/pkg/errors"
)

var contactsDomain = &auth.Domain{ServiceName: "cp", Scope: "https://www.google.com/m8/feeds/"}

// rewriteTransport redirects every request to a test server, keeping
// the rest of the request intact. The login endpoint is a fixed URL, so
// tests reroute it at the transport.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func loginClient(server *httptest.Server) *http.Client {
	target, _ := url.Parse(server.URL)
	return &http.Client{Transport: rewriteTransport{target: target}}
}

func TestClientLoginAuthenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "HOSTED_OR_GOOGLE", r.PostForm.Get("accountType"))
		assert.Equal(t, "liz@example.com", r.PostForm.Get("Email"))
		assert.Equal(t, "hunter2", r.PostForm.Get("Passwd"))
		assert.Equal(t, "cp", r.PostForm.Get("service"))
		assert.Equal(t, "test-client", r.PostForm.Get("source"))

		_, _ = w.Write([]byte("SID=ignored\nLSID=ignored\nAuth=token123\n"))
	}))
	defer server.Close()

	a := auth.NewClientLoginAuthorizer("test-client", []*auth.Domain{contactsDomain},
		auth.WithClientLoginHTTPClient(loginClient(server)))

	require.NoError(t, a.Authenticate(context.Background(), "liz@example.com", "hunter2", "", ""))
	assert.True(t, a.IsAuthorizedFor(contactsDomain))
	assert.Equal(t, "liz@example.com", a.Username())

	req, _ := http.NewRequest(http.MethodGet, "https://www.google.com/m8/feeds/contacts", nil)
	require.NoError(t, a.ProcessRequest(contactsDomain, req))
	assert.Equal(t, "GoogleLogin auth=token123", req.Header.Get("Authorization"))
}

func TestClientLoginBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Error=BadAuthentication\n"))
	}))
	defer server.Close()

	a := auth.NewClientLoginAuthorizer("test-client", []*auth.Domain{contactsDomain},
		auth.WithClientLoginHTTPClient(loginClient(server)))

	err := a.Authenticate(context.Background(), "liz@example.com", "wrong", "", "")
	assert.ErrorIs(t, err, gderrors.ErrBadCredentials)
	assert.False(t, a.IsAuthorizedFor(contactsDomain))
}

func TestClientLoginCaptchaChallenge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Error=CaptchaRequired\nCaptchaToken=ctoken\nCaptchaUrl=Captcha?ctoken=ctoken\n"))
	}))
	defer server.Close()

	a := auth.NewClientLoginAuthorizer("test-client", []*auth.Domain{contactsDomain},
		auth.WithClientLoginHTTPClient(loginClient(server)))

	err := a.Authenticate(context.Background(), "liz@example.com", "hunter2", "", "")
	require.ErrorIs(t, err, gderrors.ErrCaptchaRequired)

	var authErr *gderrors.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "ctoken", authErr.CaptchaToken)
	assert.Equal(t, "http://www.google.com/accounts/Captcha?ctoken=ctoken", authErr.CaptchaURI)
}

func TestClientLoginCaptchaAnswerSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ctoken", r.PostForm.Get("logintoken"))
		assert.Equal(t, "frobnicate", r.PostForm.Get("loginanswer"))
		_, _ = w.Write([]byte("Auth=token456\n"))
	}))
	defer server.Close()

	a := auth.NewClientLoginAuthorizer("test-client", []*auth.Domain{contactsDomain},
		auth.WithClientLoginHTTPClient(loginClient(server)))

	require.NoError(t, a.Authenticate(context.Background(), "liz@example.com", "hunter2", "ctoken", "frobnicate"))
	assert.True(t, a.IsAuthorizedFor(contactsDomain))
}

func TestClientLoginNeverSignsCleartext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Auth=token123\n"))
	}))
	defer server.Close()

	a := auth.NewClientLoginAuthorizer("test-client", []*auth.Domain{contactsDomain},
		auth.WithClientLoginHTTPClient(loginClient(server)))
	require.NoError(t, a.Authenticate(context.Background(), "liz@example.com", "hunter2", "", ""))

	req, _ := http.NewRequest(http.MethodGet, "http://www.google.com/m8/feeds/contacts", nil)
	require.NoError(t, a.ProcessRequest(contactsDomain, req))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestClientLoginInsecureLocalhostOptIn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Auth=token123\n"))
	}))
	defer server.Close()

	a := auth.NewClientLoginAuthorizer("test-client", []*auth.Domain{contactsDomain},
		auth.WithClientLoginHTTPClient(loginClient(server)),
		auth.WithClientLoginEndpointInsecureLocalhost())
	require.NoError(t, a.Authenticate(context.Background(), "liz@example.com", "hunter2", "", ""))

	req, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:9999/feeds", nil)
	require.NoError(t, a.ProcessRequest(contactsDomain, req))
	assert.Equal(t, "GoogleLogin auth=token123", req.Header.Get("Authorization"))
}

func TestClientLoginNilDomainUnsigned(t *testing.T) {
	a := auth.NewClientLoginAuthorizer("test-client", []*auth.Domain{contactsDomain})

	req, _ := http.NewRequest(http.MethodGet, "https://www.google.com/m8/feeds/contacts", nil)
	require.NoError(t, a.ProcessRequest(nil, req))
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.False(t, a.IsAuthorizedFor(nil))
}

func TestClientLoginNoRefresh(t *testing.T) {
	a := auth.NewClientLoginAuthorizer("test-client", []*auth.Domain{contactsDomain})
	refreshed, err := a.RefreshAuthorization(context.Background())
	assert.NoError(t, err)
	assert.False(t, refreshed)
}
