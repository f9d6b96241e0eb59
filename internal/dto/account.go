package dto

import (
	"time"

	"github.com/SscSPs/client_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
// The gt=0 binding relies on the decimal type func registered at router setup.
type CreateAccountRequest struct {
	Name   string          `json:"name" binding:"required"`
	Salary decimal.Decimal `json:"salary" binding:"required,gt=0"`
}

// AmountRequest carries the amount for deposit and withdraw operations.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

// TransferRequest defines the data needed to move money between two accounts.
type TransferRequest struct {
	SenderID   string          `json:"senderID" binding:"required"`
	ReceiverID string          `json:"receiverID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Salary    decimal.Decimal `json:"salary"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	IsDeleted bool            `json:"isDeleted"`
}

// BalanceResponse is returned by deposit and withdraw operations.
type BalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
}

// TransferResult carries both post-transfer balances.
type TransferResult struct {
	SenderID        string          `json:"senderID"`
	SenderBalance   decimal.Decimal `json:"senderBalance"`
	ReceiverID      string          `json:"receiverID"`
	ReceiverBalance decimal.Decimal `json:"receiverBalance"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: acc.AccountID,
		Name:      acc.Name,
		Salary:    acc.Salary,
		Balance:   acc.Balance,
		CreatedAt: acc.CreatedAt,
		IsDeleted: acc.IsDeleted,
	}
}
