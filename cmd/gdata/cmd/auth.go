package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// authCmd groups the authentication commands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
}

// authLoginCmd runs the OAuth2 authorization-code flow and caches the
// resulting token.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and cache a token",
	Long: `Login walks the OAuth2 authorization-code flow: it prints the
authorization URL, waits for the code granted there, exchanges it and
caches the token under ~/.gdata/credentials.yaml.`,
	RunE: runAuthLogin,
}

// authStatusCmd reports whether a cached token covers the CLI's
// services.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication state",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	authorizer, err := newAuthorizer(false)
	if err != nil {
		return err
	}

	state := uuid.NewString()
	fmt.Fprintln(cmd.OutOrStdout(), "Open this URL in your browser and grant access:")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "  "+authorizer.AuthorizationURL(state))
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), "Paste the code shown there: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code given")
	}

	if err := authorizer.ExchangeCode(cmd.Context(), code); err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	if err := saveCredentials(authorizer.Token()); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Authenticated.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	tok, err := loadCredentials()
	if err != nil {
		return err
	}
	if tok == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated.")
		return nil
	}
	if tok.Valid() {
		fmt.Fprintf(cmd.OutOrStdout(), "Authenticated; token expires %s.\n", tok.Expiry.Format("2006-01-02 15:04:05 MST"))
	} else if tok.RefreshToken != "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Token expired; it will refresh on first use.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Token expired; run \"gdata auth login\" again.")
	}
	return nil
}
