package user

import (
	"context"

	"github.com/forgeline/reward-engine/internal/domain/shared"
)

// Store is the keyed aggregate store. Implementations must provide
// per-user mutual exclusion for the read-modify-write cycle: Get
// acquires the user's lock (even when the aggregate is absent, so lazy
// creation stays exclusive), Save persists and releases it, and Release
// frees it on abort paths. Locks are per key; activities for different
// users never contend.
type Store interface {
	// Get returns the aggregate for id, holding the per-user lock on
	// return. Absent aggregates yield shared.ErrNotFound with the lock
	// still held.
	Get(ctx context.Context, id shared.UserID) (*Aggregate, error)

	// Save persists the aggregate (last-writer-wins) and releases the
	// per-user lock acquired by Get.
	Save(ctx context.Context, aggregate *Aggregate) error

	// Release frees the per-user lock without saving. Called on every
	// abort path after a successful Get.
	Release(id shared.UserID)

	// ListIDs returns every known user id, for reconciliation.
	ListIDs(ctx context.Context) ([]shared.UserID, error)
}
