package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/client_ledger_app/internal/apperrors"
	"github.com/SscSPs/client_ledger_app/internal/core/domain"
	portsrepo "github.com/SscSPs/client_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/client_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/client_ledger_app/internal/dto"
	"github.com/SscSPs/client_ledger_app/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compile-time contract assertion.
var _ portssvc.LedgerSvcFacade = (*LedgerService)(nil)

// LedgerService provides the account lifecycle and money-movement operations.
// Every mutating operation runs its whole read-validate-mutate-persist
// sequence inside a single store critical section, so operations are
// linearizable and a backup snapshot never observes a half-applied mutation.
type LedgerService struct {
	store       portsrepo.AccountStore
	snapshots   portsrepo.SnapshotStore
	primaryPath string
}

// NewLedgerService creates a new LedgerService persisting to primaryPath.
func NewLedgerService(store portsrepo.AccountStore, snapshots portsrepo.SnapshotStore, primaryPath string) *LedgerService {
	return &LedgerService{
		store:       store,
		snapshots:   snapshots,
		primaryPath: primaryPath,
	}
}

// Restore loads the primary store file into the account store. A missing file
// yields an empty store; a corrupt file is fatal to startup and returned as-is.
func (s *LedgerService) Restore(ctx context.Context) error {
	accounts, err := s.snapshots.LoadAccounts(ctx, s.primaryPath)
	if err != nil {
		return err
	}
	return s.store.ReplaceAccounts(ctx, accounts)
}

// persistLocked writes the current snapshot to the primary path. It must be
// called with the store held, after the in-memory mutation has been applied.
// The mutation stays applied even when the write fails; the caller surfaces
// ErrPersistenceFailed alongside its usual result.
func (s *LedgerService) persistLocked(ctx context.Context, txn portsrepo.AccountTxn) error {
	if err := s.snapshots.SaveAccounts(ctx, s.primaryPath, txn.SnapshotAccounts()); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPersistenceFailed, err)
	}
	return nil
}

// CreateAccount validates the request and creates an account with zero balance.
func (s *LedgerService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
	}
	if !req.Salary.IsPositive() {
		return nil, fmt.Errorf("%w: salary must be positive", apperrors.ErrValidation)
	}

	account := domain.Account{
		AccountID: uuid.NewString(),
		Name:      req.Name,
		Salary:    req.Salary,
		Balance:   decimal.Zero,
		CreatedAt: time.Now(),
		IsDeleted: false,
	}

	err := s.store.WithExclusive(ctx, func(txn portsrepo.AccountTxn) error {
		if err := txn.InsertAccount(account); err != nil {
			return err
		}
		return s.persistLocked(ctx, txn)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrPersistenceFailed) {
			// The account exists in memory; report it together with the failure.
			logger.Warn("Account created but not persisted", slog.String("account_id", account.AccountID), slog.String("error", err.Error()))
			return &account, err
		}
		logger.Error("Failed to create account", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	return &account, nil
}

// SoftDeleteAccount marks an account as deleted. The record stays in storage
// and in every later snapshot; only true absence is reported as not found, so
// deleting an already deleted account is an idempotent success.
func (s *LedgerService) SoftDeleteAccount(ctx context.Context, accountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if accountID == "" {
		return fmt.Errorf("%w: account id must not be empty", apperrors.ErrValidation)
	}

	alreadyDeleted := false
	err := s.store.WithExclusive(ctx, func(txn portsrepo.AccountTxn) error {
		if err := txn.MutateAccount(accountID, func(a *domain.Account) error {
			if a.IsDeleted {
				alreadyDeleted = true
				return nil
			}
			a.IsDeleted = true
			return nil
		}); err != nil {
			return err
		}
		if alreadyDeleted {
			// Nothing changed; skip the file rewrite.
			return nil
		}
		return s.persistLocked(ctx, txn)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrPersistenceFailed) {
			logger.Warn("Account deleted but not persisted", slog.String("account_id", accountID), slog.String("error", err.Error()))
		}
		return err
	}

	logger.Info("Account soft-deleted", slog.String("account_id", accountID), slog.Bool("already_deleted", alreadyDeleted))
	return nil
}

// Deposit adds amount to an active account and returns the new balance.
// A soft-deleted account is reported as not found.
func (s *LedgerService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if accountID == "" {
		return decimal.Zero, fmt.Errorf("%w: account id must not be empty", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	var newBalance decimal.Decimal
	err := s.store.WithExclusive(ctx, func(txn portsrepo.AccountTxn) error {
		if err := txn.MutateAccount(accountID, func(a *domain.Account) error {
			if a.IsDeleted {
				return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
			}
			a.Balance = a.Balance.Add(amount)
			newBalance = a.Balance
			return nil
		}); err != nil {
			return err
		}
		return s.persistLocked(ctx, txn)
	})
	if err != nil && !errors.Is(err, apperrors.ErrPersistenceFailed) {
		return decimal.Zero, err
	}
	if err != nil {
		logger.Warn("Deposit applied but not persisted", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return newBalance, err
	}

	logger.Info("Deposit completed", slog.String("account_id", accountID), slog.String("amount", amount.String()))
	return newBalance, nil
}

// Withdraw subtracts amount from an active account and returns the new
// balance. The balance never goes negative; a soft-deleted account is
// reported as not found.
func (s *LedgerService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if accountID == "" {
		return decimal.Zero, fmt.Errorf("%w: account id must not be empty", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	var newBalance decimal.Decimal
	err := s.store.WithExclusive(ctx, func(txn portsrepo.AccountTxn) error {
		if err := txn.MutateAccount(accountID, func(a *domain.Account) error {
			if a.IsDeleted {
				return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
			}
			if a.Balance.LessThan(amount) {
				return fmt.Errorf("balance %s, requested %s: %w", a.Balance, amount, apperrors.ErrInsufficientFunds)
			}
			a.Balance = a.Balance.Sub(amount)
			newBalance = a.Balance
			return nil
		}); err != nil {
			return err
		}
		return s.persistLocked(ctx, txn)
	})
	if err != nil && !errors.Is(err, apperrors.ErrPersistenceFailed) {
		return decimal.Zero, err
	}
	if err != nil {
		logger.Warn("Withdrawal applied but not persisted", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return newBalance, err
	}

	logger.Info("Withdrawal completed", slog.String("account_id", accountID), slog.String("amount", amount.String()))
	return newBalance, nil
}

// Transfer moves amount from sender to receiver as a single atomic step: both
// balance changes become visible together or not at all. Soft-deleted
// endpoints are reported per side.
func (s *LedgerService) Transfer(ctx context.Context, senderID, receiverID string, amount decimal.Decimal) (*dto.TransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if senderID == "" || receiverID == "" {
		return nil, fmt.Errorf("%w: sender and receiver ids must not be empty", apperrors.ErrValidation)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: sender and receiver must differ", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	var result dto.TransferResult
	err := s.store.WithExclusive(ctx, func(txn portsrepo.AccountTxn) error {
		sender, err := txn.FindAccountByID(senderID)
		if err != nil {
			return fmt.Errorf("sender account %s: %w", senderID, err)
		}
		receiver, err := txn.FindAccountByID(receiverID)
		if err != nil {
			return fmt.Errorf("receiver account %s: %w", receiverID, err)
		}
		if sender.IsDeleted {
			return fmt.Errorf("sender account %s: %w", senderID, apperrors.ErrAccountDeleted)
		}
		if receiver.IsDeleted {
			return fmt.Errorf("receiver account %s: %w", receiverID, apperrors.ErrAccountDeleted)
		}
		if sender.Balance.LessThan(amount) {
			return fmt.Errorf("sender balance %s, requested %s: %w", sender.Balance, amount, apperrors.ErrInsufficientFunds)
		}

		// All checks passed; both mutations happen inside this critical
		// section, so no observer can see money created or destroyed.
		if err := txn.MutateAccount(senderID, func(a *domain.Account) error {
			a.Balance = a.Balance.Sub(amount)
			result.SenderBalance = a.Balance
			return nil
		}); err != nil {
			return err
		}
		if err := txn.MutateAccount(receiverID, func(a *domain.Account) error {
			a.Balance = a.Balance.Add(amount)
			result.ReceiverBalance = a.Balance
			return nil
		}); err != nil {
			return err
		}
		result.SenderID = senderID
		result.ReceiverID = receiverID
		return s.persistLocked(ctx, txn)
	})
	if err != nil && !errors.Is(err, apperrors.ErrPersistenceFailed) {
		return nil, err
	}
	if err != nil {
		logger.Warn("Transfer applied but not persisted", slog.String("sender_id", senderID), slog.String("receiver_id", receiverID), slog.String("error", err.Error()))
		return &result, err
	}

	logger.Info("Transfer completed",
		slog.String("sender_id", senderID),
		slog.String("receiver_id", receiverID),
		slog.String("amount", amount.String()),
	)
	return &result, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
// Deleted accounts are returned with their flag set; callers decide.
func (s *LedgerService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.WithExclusive(ctx, func(txn portsrepo.AccountTxn) error {
		a, err := txn.FindAccountByID(accountID)
		if err != nil {
			return err
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves a point-in-time copy of every account.
func (s *LedgerService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.store.SnapshotAccounts(ctx)
}
