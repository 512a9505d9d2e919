// Package client talks to the REST backend on behalf of one goGuard session.
//
// Requests go through the Engine's transport, so the bearer token is attached
// automatically and a 401 or 403 from the backend signs the session out. Login and
// register responses are normalized into the session whatever their shape.
package client
