// Package normalize turns loosely shaped backend login, registration and profile
// responses into a [session.Identity].
//
// Every field is looked up with a fixed priority list of sources and names; the first
// non-empty match wins. Raw payloads never reach the session store: callers log in
// only with the normalized result, and a response without a usable token yields no
// identity at all unless the demo fallback is explicitly enabled.
//
// Source order: the top level object, then "user", "profile", "data", "data.user" and
// "data.profile".
package normalize
