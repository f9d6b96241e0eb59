package repositories

import (
	"context"

	"github.com/SscSPs/client_ledger_app/internal/core/domain"
)

// AccountTxn is the view of the account collection available to a caller while
// the store's exclusion domain is held. All methods operate on live state; no
// other ledger operation or backup snapshot can interleave until the enclosing
// WithExclusive call returns.
type AccountTxn interface {
	// FindAccountByID retrieves an account by its unique identifier.
	// It does not distinguish deleted from active accounts; callers decide.
	// Returns a copy; returns apperrors.ErrNotFound if absent.
	FindAccountByID(accountID string) (*domain.Account, error)

	// InsertAccount adds a new account.
	// Returns apperrors.ErrDuplicate if the ID is already present.
	InsertAccount(account domain.Account) error

	// MutateAccount applies fn to the stored account under exclusive access.
	// If fn returns an error the account is left untouched.
	// Returns apperrors.ErrNotFound if absent.
	MutateAccount(accountID string, fn func(*domain.Account) error) error

	// SnapshotAccounts returns a point-in-time copy of every account, active
	// and deleted, in stable insertion order, suitable for serialization.
	SnapshotAccounts() []domain.Account
}

// AccountStore is the authoritative in-memory collection of accounts. A single
// mutual-exclusion domain guards it: one WithExclusive body (a full ledger
// operation) or one standalone SnapshotAccounts (a backup tick) at a time.
type AccountStore interface {
	// WithExclusive runs fn while holding the store's exclusion domain for the
	// whole read-validate-mutate-persist sequence. fn's error is returned as-is.
	WithExclusive(ctx context.Context, fn func(txn AccountTxn) error) error

	// SnapshotAccounts takes a consistent point-in-time copy of all accounts.
	SnapshotAccounts(ctx context.Context) ([]domain.Account, error)

	// ReplaceAccounts swaps the whole collection, used for startup restore.
	ReplaceAccounts(ctx context.Context, accounts []domain.Account) error
}

// SnapshotStore converts account snapshots to durable files and back. The
// primary store and the backup store share one implementation and format.
type SnapshotStore interface {
	// LoadAccounts reads the full account list from path. A missing file
	// yields an empty list and no error; a malformed file yields an error
	// wrapping apperrors.ErrCorruptStore.
	LoadAccounts(ctx context.Context, path string) ([]domain.Account, error)

	// SaveAccounts writes the full account list to path, replacing prior
	// contents entirely. A concurrent reader of path never observes a
	// truncated or partially written file.
	SaveAccounts(ctx context.Context, path string, accounts []domain.Account) error
}
