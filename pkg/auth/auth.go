// Package auth provides the authorizers that sign outgoing requests:
// ClientLogin, OAuth 1.0a and OAuth 2.0 implementations of a common
// Authorizer interface, plus the locked-memory Secret that holds
// credentials at rest.
package auth

import (
	"context"
	"net"
	"net/http"
)

// Domain identifies one scope of authorization: a service name as used
// by the token endpoints, and the scope URI requests under it carry.
// Services declare the domains they operate in; authorizers hold one
// grant per domain.
type Domain struct {
	// ServiceName is the token-endpoint identifier of the service,
	// e.g. "cp" for contacts or "cl" for calendar.
	ServiceName string
	// Scope is the scope URI covering the service's feeds.
	Scope string
}

// Authorizer signs requests for the domains it holds grants for.
// Implementations are safe for concurrent use.
type Authorizer interface {
	// ProcessRequest attaches authorization for domain to req. A nil
	// domain means the request needs no authorization; implementations
	// leave it untouched. Requests to cleartext URLs are never signed.
	ProcessRequest(domain *Domain, req *http.Request) error

	// IsAuthorizedFor reports whether the authorizer currently holds a
	// usable grant for domain.
	IsAuthorizedFor(domain *Domain) bool

	// RefreshAuthorization renews the authorizer's grants without user
	// interaction, reporting whether anything was refreshed. An
	// authorizer with no refresh mechanism returns (false, nil).
	RefreshAuthorization(ctx context.Context) (bool, error)
}

// secureForCredentials reports whether req may carry credentials: its
// URL is HTTPS, or loopback when the authorizer allows it. Credentials
// on a cleartext connection would cross the network unprotected.
func secureForCredentials(req *http.Request, allowInsecureLocalhost bool) bool {
	if req.URL.Scheme == "https" {
		return true
	}
	if !allowInsecureLocalhost {
		return false
	}
	host := req.URL.Hostname()
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
