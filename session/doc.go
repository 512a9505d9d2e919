// Package session persists the authenticated identity between client restarts.
//
// # Persisted record
//
// A session is stored as two entries in a [Backend]: a JSON identity snapshot
// (role, display data, permission list, profile attributes) and the opaque bearer
// token as a plain string. The snapshot carries a schema version; snapshots written
// before versioning (no "v" field) are read as version 1, and a legacy inline "token"
// field is honoured when the token entry is missing.
//
// # Architecture boundaries
//
// This package owns the [Store], the [Backend] implementations (memory, file, Redis)
// and the [Identity]/[Snapshot] model. It does NOT decide whether a role is valid for
// an application or whether a session should be trusted; the Engine does.
//
// # What this package must NOT do
//
//   - Import goGuard, guard, normalize or transport (no upward imports).
//   - Make authorization decisions.
//   - Write the token inside the snapshot entry.
package session
