package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/GNOME/libgdata-sub004/pkg/auth"
	"github.com/GNOME/libgdata-sub004/pkg/services/calendar"
	"github.com/GNOME/libgdata-sub004/pkg/services/contacts"
)

// credentials is the on-disk shape of the cached OAuth2 token.
type credentials struct {
	AccessToken  string    `yaml:"access_token"`
	TokenType    string    `yaml:"token_type,omitempty"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	Expiry       time.Time `yaml:"expiry,omitempty"`
}

// credentialsPath returns the token cache location, creating its
// directory.
func credentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	dir := filepath.Join(home, ".gdata")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return filepath.Join(dir, "credentials.yaml"), nil
}

// saveCredentials writes the token cache, readable only by the user.
func saveCredentials(tok *oauth2.Token) error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(credentials{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	})
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// loadCredentials reads the token cache; a missing file returns nil.
func loadCredentials() (*oauth2.Token, error) {
	path, err := credentialsPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var creds credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &oauth2.Token{
		AccessToken:  creds.AccessToken,
		TokenType:    creds.TokenType,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
	}, nil
}

// cliDomains returns every authorization domain the CLI's commands
// touch, so a single login covers them all.
func cliDomains() []*auth.Domain {
	domains := contacts.AuthorizationDomains()
	return append(domains, calendar.AuthorizationDomains()...)
}

// newAuthorizer builds the CLI's authorizer from configuration and the
// cached token, if any.
func newAuthorizer(requireToken bool) (*auth.OAuth2Authorizer, error) {
	clientID := viper.GetString("client-id")
	clientSecret := viper.GetString("client-secret")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("no OAuth client configured; set GDATA_CLIENT_ID and GDATA_CLIENT_SECRET or the client-id/client-secret config keys")
	}

	authorizer := auth.NewOAuth2Authorizer(clientID, clientSecret, auth.OutOfBandRedirectURI, cliDomains())

	tok, err := loadCredentials()
	if err != nil {
		return nil, err
	}
	if tok != nil {
		authorizer.SetToken(tok)
	} else if requireToken {
		return nil, fmt.Errorf("not authenticated; run \"gdata auth login\" first")
	}
	return authorizer, nil
}
