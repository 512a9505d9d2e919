// Package transport provides the outbound half of the session lifecycle: an
// http.RoundTripper that attaches the session token to backend requests and clears
// the session when the backend rejects it.
//
// # Behaviour
//
//   - Every request gets "Authorization: Bearer <token>" while a session exists.
//   - Requests to public paths (login, registration) never carry an Authorization
//     header, even if the caller set one.
//   - A 401 or 403 response invalidates the session. OnSessionExpired runs only when
//     that call actually cleared an identity, so concurrent rejections redirect once.
//
// # What this package must NOT do
//
//   - Read or write session storage directly (delegates to the Invalidator).
//   - Retry rejected requests with a refreshed token.
package transport
