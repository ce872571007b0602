// Package auth provides the authentication and authorization core for the
// property listing platform: password hashing, JWT issuance and validation,
// credential verification, session resolution, and role-based guards.
//
// Credential verification:
//   - Login accepts a username or an email as the identifier. Unknown
//     identifiers and wrong passwords produce the same rejection so callers
//     cannot probe which accounts exist. Disabled accounts are only reported
//     as such after the password verifies.
//
// Tokens:
//   - Bearer tokens are HS256 JWTs whose subject is the username. Tokens are
//     stateless: issuing a new one never invalidates previously issued tokens,
//     and there is no server-side revocation. A password change or account
//     deactivation takes effect for new logins immediately but outstanding
//     tokens remain usable until they expire, which is why the default
//     lifetime is short.
//
// Session resolution:
//   - Resolve verifies the token, reloads the identity from storage, and
//     refreshes last-login metadata. Reload failures for valid tokens surface
//     as an identity-gone rejection since accounts can vanish mid-session.
//
// Authorization guards:
//   - Guards are pure predicates over an Identity. Compose RequireActive,
//     RequireRole, RequireMinRole, and RequireOwnerOrRole with Check for an
//     error, or Authorize for a Decision with a machine-readable reason.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     command handlers to describe login, registration, and password events.
//     Sinks run best-effort (errors are logged) so you can forward to a
//     database or queue without blocking authentication.
package auth
