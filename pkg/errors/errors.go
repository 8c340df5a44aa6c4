// Package errors provides the error types used throughout the gdata library.
// It defines sentinel errors for programmatic checking, typed errors carrying
// diagnostic detail, and helpers for wrapping and classifying failures from
// the parser, the service layer, and the authorizers.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// It's an alias for the standard library errors.As for convenience.
var As = errors.As

// Common sentinel errors for the gdata library
var (
	// ErrNotFound indicates that a requested resource was not found (HTTP 404)
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a version conflict, typically an ETag mismatch (HTTP 409/412)
	ErrConflict = errors.New("conflict")

	// ErrUnavailable indicates that the service is temporarily unavailable (HTTP 503)
	ErrUnavailable = errors.New("service unavailable")

	// ErrCanceled indicates that an operation was canceled before completion
	ErrCanceled = errors.New("operation canceled")

	// ErrNotModified indicates a conditional GET matched the supplied ETag (HTTP 304)
	ErrNotModified = errors.New("not modified")

	// ErrAuthenticationRequired indicates the service rejected the request's
	// credentials and a refresh did not help (HTTP 401/403)
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrProtocol indicates the server rejected the request or returned an
	// unexpected response
	ErrProtocol = errors.New("protocol error")

	// ErrNetwork indicates a transport-level failure (DNS, TLS, connection)
	ErrNetwork = errors.New("network error")

	// ErrProxy indicates a failure negotiating with a proxy
	ErrProxy = errors.New("proxy error")

	// ErrBadCredentials indicates a username/password pair was rejected
	ErrBadCredentials = errors.New("bad credentials")

	// ErrCaptchaRequired indicates authentication needs a CAPTCHA answer
	ErrCaptchaRequired = errors.New("captcha required")

	// ErrBatchUnsupported indicates the service cannot run the requested
	// batch operation types
	ErrBatchUnsupported = errors.New("batch operation unsupported")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ParseKind classifies parser failures.
type ParseKind int

// Parser failure kinds.
const (
	ParseMalformedDocument ParseKind = iota // document is not well-formed XML or JSON
	ParseEmptyDocument                      // document was empty
	ParseMissingElement                     // a required element or member is absent
	ParseDuplicateElement                   // a second occurrence of a singleton element
	ParseMissingAttribute                   // a required attribute is absent
	ParseMissingContent                     // a required element has no content
	ParseNotISO8601                         // a date or datetime is not valid ISO-8601
	ParseUnknownValue                       // a property has a value outside its enumeration
	ParseUnhandledContent                   // content the parser cannot represent
)

func (k ParseKind) String() string {
	switch k {
	case ParseMalformedDocument:
		return "malformed document"
	case ParseEmptyDocument:
		return "empty document"
	case ParseMissingElement:
		return "missing required element"
	case ParseDuplicateElement:
		return "duplicate element"
	case ParseMissingAttribute:
		return "missing required attribute"
	case ParseMissingContent:
		return "missing required content"
	case ParseNotISO8601:
		return "not in ISO 8601 format"
	case ParseUnknownValue:
		return "unknown property value"
	case ParseUnhandledContent:
		return "unhandled content"
	default:
		return "parse error"
	}
}

// ParseError represents a failure constructing an entity from a payload.
type ParseError struct {
	Kind    ParseKind
	Element string // element, attribute, or JSON member name
	Value   string // offending value, if any
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	switch {
	case e.Element != "" && e.Value != "":
		return fmt.Sprintf("%s: %s (value %q)", e.Kind, e.Element, e.Value)
	case e.Element != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Element)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(kind ParseKind, element string) *ParseError {
	return &ParseError{Kind: kind, Element: element}
}

// ProtocolError represents an error response decoded from the server.
type ProtocolError struct {
	StatusCode int
	Message    string // decoded server message, if any
	URI        string // URI for further information, if any
	Err        error
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (status %d)", e.StatusCode)
}

// Unwrap implements errors.Unwrap
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support, mapping status codes onto the sentinels.
func (e *ProtocolError) Is(target error) bool {
	switch e.StatusCode {
	case 401, 403:
		return target == ErrAuthenticationRequired
	case 404:
		return target == ErrNotFound
	case 409, 412:
		return target == ErrConflict
	case 503:
		return target == ErrUnavailable
	}
	return target == ErrProtocol
}

// NewProtocolError creates a new ProtocolError
func NewProtocolError(statusCode int, message string) *ProtocolError {
	return &ProtocolError{StatusCode: statusCode, Message: message}
}

// NetworkError represents a transport-level failure.
type NetworkError struct {
	Op  string // "connect", "send", "read", ...
	URI string
	Err error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	if e.URI != "" {
		return fmt.Sprintf("network error during %s of %s: %v", e.Op, e.URI, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(op, uri string, err error) *NetworkError {
	return &NetworkError{Op: op, URI: uri, Err: err}
}

// AuthKind classifies authorizer failures.
type AuthKind int

// Authorizer failure kinds, mirroring the ClientLogin error tokens.
const (
	AuthBadCredentials AuthKind = iota
	AuthCaptchaRequired
	AuthInvalidSecondFactor
	AuthAccountDisabled
	AuthAccountDeleted
	AuthTermsNotAgreed
	AuthNotVerified
	AuthServiceDisabled
	AuthServiceUnavailable
)

func (k AuthKind) String() string {
	switch k {
	case AuthBadCredentials:
		return "bad credentials"
	case AuthCaptchaRequired:
		return "captcha required"
	case AuthInvalidSecondFactor:
		return "invalid second factor"
	case AuthAccountDisabled:
		return "account disabled"
	case AuthAccountDeleted:
		return "account deleted"
	case AuthTermsNotAgreed:
		return "terms of service not agreed to"
	case AuthNotVerified:
		return "account not verified"
	case AuthServiceDisabled:
		return "service disabled for this account"
	case AuthServiceUnavailable:
		return "authentication service unavailable"
	default:
		return "authentication error"
	}
}

// AuthError represents a failure to obtain or refresh credentials.
type AuthError struct {
	Kind AuthKind

	// CaptchaToken and CaptchaURI are set when Kind is AuthCaptchaRequired.
	// The application should fetch the image at CaptchaURI, show it to the
	// user and retry authentication with the token and the user's answer.
	CaptchaToken string
	CaptchaURI   string

	Err error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.Kind.String()
}

// Unwrap implements errors.Unwrap
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthError) Is(target error) bool {
	switch e.Kind {
	case AuthBadCredentials:
		return target == ErrBadCredentials
	case AuthCaptchaRequired:
		return target == ErrCaptchaRequired
	case AuthServiceUnavailable:
		return target == ErrUnavailable
	}
	return target == ErrAuthenticationRequired
}

// NewAuthError creates a new AuthError
func NewAuthError(kind AuthKind) *AuthError {
	return &AuthError{Kind: kind}
}

// BatchError wraps a failure of a single operation within a batch,
// carrying the operation's batch id for correlation.
type BatchError struct {
	OperationID int
	Err         error
}

// Error implements the error interface
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch operation %d: %v", e.OperationID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *BatchError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a version conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsNotModified checks if an error signals an ETag-matching 304 response
func IsNotModified(err error) bool {
	return errors.Is(err, ErrNotModified)
}

// IsAuthenticationRequired checks if an error indicates rejected credentials
func IsAuthenticationRequired(err error) bool {
	return errors.Is(err, ErrAuthenticationRequired)
}

// IsUnavailable checks if an error indicates service unavailability
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsParseError checks if an error originated in the parser
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// WrapParse wraps a document-level parse failure
func WrapParse(format string, err error) *ParseError {
	return &ParseError{Kind: ParseMalformedDocument, Element: format, Err: err}
}

// WrapCanceled wraps a context cancellation in the library's taxonomy
func WrapCanceled(err error) error {
	return fmt.Errorf("%w: %v", ErrCanceled, err)
}
