// Package memory provides in-process store implementations. They back
// the engine in tests and in single-node deployments without Postgres.
package memory

import (
	"context"
	"sync"

	"github.com/forgeline/reward-engine/internal/domain/shared"
	"github.com/forgeline/reward-engine/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER STORE
// ══════════════════════════════════════════════════════════════════════════════

// UserStore is an in-memory user.Store. Mutual exclusion per user id is
// part of the store contract: Get acquires the user's lock, Save and
// Release free it. Concurrent activities for the same user serialize on
// that lock; different users never contend.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*user.Aggregate
	locks map[string]*sync.Mutex
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]*user.Aggregate),
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-user mutex, creating it on first sight.
func (s *UserStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Get acquires the per-user lock and returns a copy of the aggregate.
// For an unknown user it returns ErrNotFound with the lock still held,
// so the caller can create the aggregate and Save under the same lock.
func (s *UserStore) Get(ctx context.Context, id shared.UserID) (*user.Aggregate, error) {
	s.lockFor(id.String()).Lock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	aggregate, ok := s.users[id.String()]
	s.mu.Unlock()

	if !ok {
		return nil, shared.NewDomainError("user", "Get", shared.ErrUserNotFound, "user not found")
	}
	return aggregate.Clone(), nil
}

// Save persists the aggregate (last writer wins) and releases the
// per-user lock acquired by Get.
func (s *UserStore) Save(ctx context.Context, aggregate *user.Aggregate) error {
	defer s.lockFor(aggregate.ID.String()).Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.users[aggregate.ID.String()] = aggregate.Clone()
	s.mu.Unlock()

	return nil
}

// Release frees the per-user lock without saving. Used on abort paths.
func (s *UserStore) Release(id shared.UserID) {
	s.lockFor(id.String()).Unlock()
}

// ListIDs returns the ids of every stored user, for reconciliation.
func (s *UserStore) ListIDs(ctx context.Context) ([]shared.UserID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]shared.UserID, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, shared.UserID(id))
	}
	return ids, nil
}

// Snapshot returns a copy of an aggregate without taking the per-user
// lock. Read-side only; the copy may race a concurrent Save.
func (s *UserStore) Snapshot(id shared.UserID) (*user.Aggregate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aggregate, ok := s.users[id.String()]
	if !ok {
		return nil, false
	}
	return aggregate.Clone(), true
}

// Len returns the number of stored users.
func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
