// Package persistence provides snapshot backends for the submission store.
// The store serializes its full index on every mutation and hands the bytes
// here; backends only move bytes, they never interpret them. This keeps the
// store testable with an in-memory double and lets deployments pick file,
// redis, or postgres durability without touching lifecycle code.
package persistence

import "context"

// Backend stores and retrieves one opaque snapshot.
type Backend interface {
	// Load returns the last saved snapshot, or ErrEmpty when nothing has
	// been saved yet.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the snapshot atomically from the reader's perspective:
	// a concurrent Load sees either the old or the new bytes, never a mix.
	Save(ctx context.Context, data []byte) error
}
