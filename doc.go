// Package goGuard provides the client side of a token-based session: it keeps the
// signed-in user and bearer token of one process, persists them across restarts,
// answers permission and role queries, and gates routes and components on them.
//
// A process builds one [Engine] per session through [Builder.Build], calls
// [Engine.Hydrate] once at startup and then serves requests. Guards report a loading
// state until hydration completes, so a restored session is never sent to the login
// page by a request that arrives too early.
//
// The backend remains the authority. Permission sets come only from backend responses
// or the persisted record; they are never derived from the role on the client.
//
// # Architecture boundaries
//
// goGuard is the public surface. It exposes [Engine], [Builder], [Config] and value
// types. Storage backends live in session, role and permission sets in permission,
// response normalization in normalize, and the HTTP guard and transport in guard and
// transport.
//
// # What this package must NOT do
//
//   - Write raw backend responses to storage (only normalized identities are persisted).
//   - Persist the token inside the snapshot record.
//   - Import any sub-package that re-imports goGuard (no import cycles).
package goGuard
