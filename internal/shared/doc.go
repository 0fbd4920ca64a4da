// Package shared holds utilities used across packages that belong to
// no single domain layer.
//
// The testutil subpackage provides a capturing slog handler so tests
// can assert on the messages and attributes a component logs without
// touching the real logging configuration.
package shared
