// Package jwt inspects bearer tokens held by a client and issues tokens for test and
// example backends.
//
// [Inspect] decodes claims WITHOUT verifying the signature. The client never trusts
// these claims for authorization; it only reads the expiry (to drop a dead session
// early) and the subject (as an identity ID fallback). [Manager] signs and verifies
// tokens with HS256 or Ed25519 and is meant for the backend side.
package jwt
