package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a client account within the core domain.
// This is the primary representation used by services and persisted snapshots.
type Account struct {
	AccountID string          `json:"accountID"` // Primary key (UUID), assigned at creation, never reused
	Name      string          `json:"name"`      // Display name, immutable after creation
	Salary    decimal.Decimal `json:"salary"`    // Recorded at creation, informational only
	Balance   decimal.Decimal `json:"balance"`   // Never negative; changed only by deposit/withdraw/transfer
	CreatedAt time.Time       `json:"createdAt"`
	IsDeleted bool            `json:"isDeleted"` // Soft delete flag; deleted accounts are frozen but stay in storage
}
