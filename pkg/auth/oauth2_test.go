package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/GNOME/libgdata-sub004/pkg/auth"
)

func newOAuth2TokenServer(t *testing.T, accessToken, refreshToken string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := `{"access_token":"` + accessToken + `","token_type":"Bearer","expires_in":3600`
		if refreshToken != "" {
			body += `,"refresh_token":"` + refreshToken + `"`
		}
		body += `}`
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOAuth2AuthorizationURL(t *testing.T) {
	a := auth.NewOAuth2Authorizer("client-id", "client-secret", auth.OutOfBandRedirectURI,
		[]*auth.Domain{contactsDomain})

	u := a.AuthorizationURL("state-token")
	assert.Contains(t, u, auth.OAuth2AuthEndpoint)
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=state-token")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "scope=")
}

func TestOAuth2ExchangeCode(t *testing.T) {
	server := newOAuth2TokenServer(t, "at-1", "rt-1")

	a := auth.NewOAuth2Authorizer("client-id", "client-secret", auth.OutOfBandRedirectURI,
		[]*auth.Domain{contactsDomain},
		auth.WithOAuth2Endpoint(server.URL+"/auth", server.URL+"/token"))

	require.NoError(t, a.ExchangeCode(context.Background(), "auth-code"))
	assert.True(t, a.IsAuthorizedFor(contactsDomain))

	tok := a.Token()
	require.NotNil(t, tok)
	assert.Equal(t, "at-1", tok.AccessToken)
	assert.Equal(t, "rt-1", tok.RefreshToken)

	req, _ := http.NewRequest(http.MethodGet, "https://www.google.com/m8/feeds/contacts", nil)
	require.NoError(t, a.ProcessRequest(contactsDomain, req))
	assert.Equal(t, "Bearer at-1", req.Header.Get("Authorization"))
}

func TestOAuth2ExchangeCodeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	a := auth.NewOAuth2Authorizer("client-id", "client-secret", auth.OutOfBandRedirectURI,
		[]*auth.Domain{contactsDomain},
		auth.WithOAuth2Endpoint(server.URL+"/auth", server.URL+"/token"))

	err := a.ExchangeCode(context.Background(), "bad-code")
	assert.Error(t, err)
	assert.False(t, a.IsAuthorizedFor(contactsDomain))
}

func TestOAuth2SetToken(t *testing.T) {
	a := auth.NewOAuth2Authorizer("client-id", "client-secret", auth.OutOfBandRedirectURI,
		[]*auth.Domain{contactsDomain})

	assert.Nil(t, a.Token())
	assert.False(t, a.IsAuthorizedFor(contactsDomain))

	a.SetToken(&oauth2.Token{AccessToken: "restored", TokenType: "Bearer"})
	assert.True(t, a.IsAuthorizedFor(contactsDomain))

	req, _ := http.NewRequest(http.MethodGet, "https://www.google.com/m8/feeds/contacts", nil)
	require.NoError(t, a.ProcessRequest(contactsDomain, req))
	assert.Equal(t, "Bearer restored", req.Header.Get("Authorization"))
}

func TestOAuth2RefreshAuthorization(t *testing.T) {
	server := newOAuth2TokenServer(t, "at-2", "")

	a := auth.NewOAuth2Authorizer("client-id", "client-secret", auth.OutOfBandRedirectURI,
		[]*auth.Domain{contactsDomain},
		auth.WithOAuth2Endpoint(server.URL+"/auth", server.URL+"/token"))
	a.SetToken(&oauth2.Token{
		AccessToken:  "at-1",
		TokenType:    "Bearer",
		RefreshToken: "rt-1",
		Expiry:       time.Now().Add(-time.Hour),
	})

	refreshed, err := a.RefreshAuthorization(context.Background())
	require.NoError(t, err)
	assert.True(t, refreshed)

	tok := a.Token()
	require.NotNil(t, tok)
	assert.Equal(t, "at-2", tok.AccessToken)
	// The endpoint returned no new refresh token; the old one is kept.
	assert.Equal(t, "rt-1", tok.RefreshToken)
}

func TestOAuth2RefreshWithoutRefreshToken(t *testing.T) {
	a := auth.NewOAuth2Authorizer("client-id", "client-secret", auth.OutOfBandRedirectURI,
		[]*auth.Domain{contactsDomain})
	a.SetToken(&oauth2.Token{AccessToken: "at-1", TokenType: "Bearer"})

	refreshed, err := a.RefreshAuthorization(context.Background())
	assert.NoError(t, err)
	assert.False(t, refreshed)
}

func TestOAuth2NeverSignsCleartext(t *testing.T) {
	a := auth.NewOAuth2Authorizer("client-id", "client-secret", auth.OutOfBandRedirectURI,
		[]*auth.Domain{contactsDomain})
	a.SetToken(&oauth2.Token{AccessToken: "at-1", TokenType: "Bearer"})

	req, _ := http.NewRequest(http.MethodGet, "http://www.google.com/m8/feeds/contacts", nil)
	require.NoError(t, a.ProcessRequest(contactsDomain, req))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestOAuth2Scope(t *testing.T) {
	calendarDomain := &auth.Domain{ServiceName: "cl", Scope: "https://www.google.com/calendar/feeds/"}
	a := auth.NewOAuth2Authorizer("client-id", "client-secret", auth.OutOfBandRedirectURI,
		[]*auth.Domain{contactsDomain, calendarDomain})

	assert.Equal(t, contactsDomain.Scope+" "+calendarDomain.Scope, a.Scope())
}
