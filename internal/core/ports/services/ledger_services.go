package services

import (
	"context"

	"github.com/SscSPs/client_ledger_app/internal/core/domain"
	"github.com/SscSPs/client_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations over the account ledger.
type LedgerReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves every account, active and soft-deleted.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// LedgerWriterSvc defines the mutating ledger operations. Every operation is
// atomic with respect to the others and to backup snapshots, and persists the
// full store before returning. When persistence fails after the in-memory
// mutation was applied, the operation returns its usual result value together
// with an error wrapping apperrors.ErrPersistenceFailed.
type LedgerWriterSvc interface {
	// CreateAccount validates the request and creates an account with zero balance.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)

	// SoftDeleteAccount marks an account as deleted. Deleting an already
	// deleted account is an idempotent success.
	SoftDeleteAccount(ctx context.Context, accountID string) error

	// Deposit adds amount to an active account and returns the new balance.
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)

	// Withdraw subtracts amount from an active account and returns the new balance.
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)

	// Transfer moves amount between two active accounts as a single atomic step.
	Transfer(ctx context.Context, senderID, receiverID string, amount decimal.Decimal) (*dto.TransferResult, error)
}

// LedgerSvcFacade combines the ledger service interfaces for clients that need
// access to all operations.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
