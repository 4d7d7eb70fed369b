// Package domain defines the core cross-cutting contracts.
//
// This package contains shared sentinel errors, wire error codes, and the
// collaborator interfaces (audio playback) used across package boundaries.
// No implementation code - just contracts. Prevents circular imports by
// keeping interfaces on the consumer side.
package domain
