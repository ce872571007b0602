package auth

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrUnableToFindSession is the error when the request carries no session
var ErrUnableToFindSession = errors.New("unable to find session")

// ErrUnableToDecodeSession unable to decode claims from the session store
var ErrUnableToDecodeSession = errors.New("unable to decode session")

// ErrInvalidCredentials is the single rejection for both unknown identifiers
// and wrong passwords. The two paths must stay indistinguishable to callers.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrAccountDisabled rejects authentication for deactivated accounts. Unlike
// ErrInvalidCredentials this one is deliberately specific: deactivation is an
// administrative action, not a secrecy mechanism.
var ErrAccountDisabled = goerrors.New("user account is disabled", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("ACCOUNT_DISABLED")

// ErrTokenExpired is returned when a bearer token's expiry is in the past
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed covers tokens that fail to parse as a signed JWT
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrTokenSignatureInvalid covers structurally valid tokens whose signature
// does not verify against the configured signing key
var ErrTokenSignatureInvalid = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_SIGNATURE_INVALID")

// ErrIdentityGone is returned when a still-valid token references an identity
// that no longer exists. Stateless tokens can outlive deleted accounts.
var ErrIdentityGone = goerrors.New("identity no longer exists", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("IDENTITY_GONE")

// ErrInsufficientPermissions rejects callers whose role is outside the allowed set
var ErrInsufficientPermissions = goerrors.New("insufficient permissions", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("INSUFFICIENT_PERMISSIONS")

// ErrNotAuthorized rejects callers that are neither owners nor in an allowed role
var ErrNotAuthorized = goerrors.New("not authorized", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("NOT_AUTHORIZED")

// ErrMismatchedHashAndPassword is the hasher-level mismatch error. Malformed
// digests map here too so a corrupt hash column reads as a failed verify, not
// a crash.
var ErrMismatchedHashAndPassword = goerrors.New("hashed password mismatch", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrImmutableClaimMutation is returned when a claims decorator touches a
// protected claim
var ErrImmutableClaimMutation = goerrors.New("immutable claim mutated", goerrors.CategoryInternal).
	WithTextCode("IMMUTABLE_CLAIM_MUTATION")

// ErrNoEmptyString rejects empty required string inputs
var ErrNoEmptyString = goerrors.New("value should not be an empty string", goerrors.CategoryBadInput).
	WithTextCode("EMPTY_STRING")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// ReasonCode extracts the rich-error text code, used by guards to report
// authorization decisions.
func ReasonCode(err error) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode != "" {
		return richErr.TextCode
	}

	return "UNKNOWN"
}
