// Package memory provides the authoritative in-memory account store. A single
// explicit mutex serializes every ledger operation and backup snapshot against
// the collection; persistence needs a consistent full-collection view anyway,
// so finer-grained locking would not shrink the critical section.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/client_ledger_app/internal/apperrors"
	"github.com/SscSPs/client_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/client_ledger_app/internal/core/ports/repositories"
)

// Compile-time contract assertion.
var _ portsrepo.AccountStore = (*Store)(nil)

// Store holds every account, active and soft-deleted, keyed by ID. The order
// slice preserves insertion order so snapshots and persisted files are stable.
type Store struct {
	mu    sync.Mutex
	accts map[string]*domain.Account
	order []string
}

// NewStore creates an empty account store.
func NewStore() *Store {
	return &Store{accts: make(map[string]*domain.Account)}
}

// WithExclusive runs fn while holding the store mutex. The txn passed to fn is
// only valid for the duration of the call.
func (s *Store) WithExclusive(ctx context.Context, fn func(txn portsrepo.AccountTxn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&txn{s: s})
}

// SnapshotAccounts takes a consistent point-in-time copy of all accounts.
func (s *Store) SnapshotAccounts(ctx context.Context) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// ReplaceAccounts swaps the whole collection, used for startup restore.
func (s *Store) ReplaceAccounts(ctx context.Context, accounts []domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	accts := make(map[string]*domain.Account, len(accounts))
	order := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if _, ok := accts[a.AccountID]; ok {
			return fmt.Errorf("account %s listed twice: %w", a.AccountID, apperrors.ErrDuplicate)
		}
		cp := a
		accts[a.AccountID] = &cp
		order = append(order, a.AccountID)
	}
	s.accts = accts
	s.order = order
	return nil
}

func (s *Store) snapshotLocked() []domain.Account {
	out := make([]domain.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.accts[id])
	}
	return out
}

// txn is the locked view handed to WithExclusive callers.
type txn struct {
	s *Store
}

func (t *txn) FindAccountByID(accountID string) (*domain.Account, error) {
	a, ok := t.s.accts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (t *txn) InsertAccount(account domain.Account) error {
	if _, ok := t.s.accts[account.AccountID]; ok {
		return fmt.Errorf("account %s: %w", account.AccountID, apperrors.ErrDuplicate)
	}
	cp := account
	t.s.accts[account.AccountID] = &cp
	t.s.order = append(t.s.order, account.AccountID)
	return nil
}

func (t *txn) MutateAccount(accountID string, fn func(*domain.Account) error) error {
	a, ok := t.s.accts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	// Mutate a copy first so a failing fn leaves the stored account untouched.
	cp := *a
	if err := fn(&cp); err != nil {
		return err
	}
	*a = cp
	return nil
}

func (t *txn) SnapshotAccounts() []domain.Account {
	return t.s.snapshotLocked()
}
