package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/client_ledger_app/internal/core/ports/repositories"
)

// BackupService periodically writes a consistent snapshot of the account store
// to a secondary file, independent of request-triggered saves.
type BackupService struct {
	store      portsrepo.AccountStore
	snapshots  portsrepo.SnapshotStore
	backupPath string
	interval   time.Duration
	logger     *slog.Logger
}

// NewBackupService creates a backup scheduler writing to backupPath every interval.
func NewBackupService(store portsrepo.AccountStore, snapshots portsrepo.SnapshotStore, backupPath string, interval time.Duration, logger *slog.Logger) *BackupService {
	return &BackupService{
		store:      store,
		snapshots:  snapshots,
		backupPath: backupPath,
		interval:   interval,
		logger:     logger,
	}
}

// Run performs an immediate first backup and then one per interval until ctx
// is cancelled. A failed tick is logged and does not stop the schedule. All
// ticks run on the calling goroutine, so two backups never overlap.
func (s *BackupService) Run(ctx context.Context) {
	s.logger.Info("Backup scheduler started",
		slog.Duration("interval", s.interval),
		slog.String("path", s.backupPath),
	)

	if err := s.BackupOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Backup failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Backup scheduler stopped")
			return
		case <-ticker.C:
			if err := s.BackupOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("Backup failed", slog.String("error", err.Error()))
			}
		}
	}
}

// BackupOnce takes a point-in-time snapshot under the store's exclusion domain
// and writes it to the backup path. The file write happens after the store is
// released: the copy is immutable and the save replaces the file atomically,
// so a reader of the backup file never observes a mix of pre- and post-states.
func (s *BackupService) BackupOnce(ctx context.Context) error {
	accounts, err := s.store.SnapshotAccounts(ctx)
	if err != nil {
		return fmt.Errorf("snapshotting accounts: %w", err)
	}
	if err := s.snapshots.SaveAccounts(ctx, s.backupPath, accounts); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	s.logger.Info("Backup completed", slog.Int("accounts", len(accounts)))
	return nil
}
