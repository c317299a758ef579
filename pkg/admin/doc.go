// Package admin guards the label settings behind a single shared password.
//
// [Gate] checks a password against a stored SHA-256 hex digest and hands out
// in-memory [Session]s. [Settings] holds the process-wide configuration the
// admin panel may change: the label style, the sheet URL and the cache
// duration. Both are safe for concurrent use and are passed explicitly to the
// web handlers.
//
// There is one admin role, no lockout and no rate limiting. Sessions live
// until logout or process restart unless a TTL is configured.
package admin
