// Package guard decides whether a route or a UI element is shown for the current
// session.
//
// Every decision follows the same order: while the session is still hydrating the
// result is [Loading]; an absent identity is [Unauthenticated]; an identity that fails
// the role or permission requirement is [Forbidden]; otherwise [Authorized]. Because
// authentication is checked before the requirement, an anonymous visitor of a
// role-gated route is sent to the login page and never sees the access-denied page,
// while a signed-in user lacking the role is never redirected to login.
//
// [Require] applies a decision to net/http handlers. [Gate] applies it to individual
// components and never redirects.
//
// # What this package must NOT do
//
//   - Read session storage or talk to the backend.
//   - Derive permissions from roles.
package guard
