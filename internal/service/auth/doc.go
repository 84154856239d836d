// Package auth issues and validates the bearer tokens that identify callers,
// and hashes and verifies their passwords.
package auth
