// Package permission provides the role and permission vocabulary used by goGuard:
// a frozen [Catalog] of roles and permission keys, the [Set] type holding an
// identity's permissions, and the pure predicate functions the evaluator is built on.
//
// # Catalog
//
// Each application configures one Catalog: its fixed role enumeration, optional
// permission key catalog, a role alias table (for example MANAGER -> SELLER) and the
// default role used when a backend reports a role the client does not know.
// A Catalog is frozen after construction and is safe for concurrent reads.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. Permissions are never
// derived from a role here: [Table] exists only as data for opt-in demo identities.
//
// # What this package must NOT do
//
//   - Access storage, the network, or HTTP state.
//   - Import goGuard, session, guard or normalize.
//   - Branch on specific role names.
package permission
