// Package csvfile persists account snapshots as flat CSV files. The primary
// store and the backup store share this implementation and record format.
package csvfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SscSPs/client_ledger_app/internal/apperrors"
	"github.com/SscSPs/client_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/client_ledger_app/internal/core/ports/repositories"
)

// Compile-time contract assertion.
var _ portsrepo.SnapshotStore = (*Store)(nil)

// Store implements the snapshot store over the local filesystem.
type Store struct{}

// NewStore creates a CSV snapshot store.
func NewStore() *Store {
	return &Store{}
}

// LoadAccounts reads the full account list from path. A missing file yields an
// empty list; a file that exists but cannot be parsed yields ErrCorruptStore.
func (st *Store) LoadAccounts(ctx context.Context, path string) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening account store %s: %w", path, err)
	}
	defer f.Close()

	accounts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrCorruptStore, path, err)
	}
	return accounts, nil
}

// SaveAccounts writes the full account list to path, replacing prior contents.
// The snapshot is written to a temp file in the same directory and renamed
// into place, so a concurrent reader of path never sees a torn file.
func (st *Store) SaveAccounts(ctx context.Context, path string, accounts []domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".accounts-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := WriteAccounts(tmp, accounts); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing account store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing account store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing account store: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing account store %s: %w", path, err)
	}
	return nil
}
