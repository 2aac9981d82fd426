// Package errors provides structured, coded errors for sparkle.
//
// Every failure the toolkit reports has a stable code (e.g. "E101") that maps
// to a short message, a longer explanation and a category. Public packages
// declare their sentinel errors from these codes, and errors.Is matches any
// two errors that share a code, so callers can attach detail without breaking
// matching:
//
//	var ErrInvalidUpdateResult = errors.New("E101")
//
//	err := errors.New("E101").WithDetail("update returned nil")
//	stderrors.Is(err, ErrInvalidUpdateResult) // true
//
// # Error Categories
//
//   - reactivity: signal and effect runtime failures
//   - decoration: bead pipeline failures
//   - update: rejected update results
//   - wire: rejected wired handler results
//   - persistence: storage backend failures
//   - config: configuration loading and validation
//
// # Severity
//
// Most codes are errors. Advisory codes (key collisions) carry
// SeverityWarning and are only ever logged, never returned.
package errors
