package services_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/SscSPs/client_ledger_app/internal/adapters/storage/csvfile"
	"github.com/SscSPs/client_ledger_app/internal/adapters/storage/memory"
	"github.com/SscSPs/client_ledger_app/internal/apperrors"
	"github.com/SscSPs/client_ledger_app/internal/core/domain"
	"github.com/SscSPs/client_ledger_app/internal/core/services"
	"github.com/SscSPs/client_ledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockSnapshotStore is a mock type for the SnapshotStore interface
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) LoadAccounts(ctx context.Context, path string) ([]domain.Account, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockSnapshotStore) SaveAccounts(ctx context.Context, path string, accounts []domain.Account) error {
	args := m.Called(ctx, path, accounts)
	return args.Error(0)
}

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	store       *memory.Store
	snapshots   *csvfile.Store
	primaryPath string
	service     *services.LedgerService
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.snapshots = csvfile.NewStore()
	suite.primaryPath = filepath.Join(suite.T().TempDir(), "accounts.csv")
	suite.service = services.NewLedgerService(suite.store, suite.snapshots, suite.primaryPath)
}

func (suite *LedgerServiceTestSuite) mustCreate(name string, salary int64) *domain.Account {
	account, err := suite.service.CreateAccount(context.Background(), dto.CreateAccountRequest{
		Name:   name,
		Salary: decimal.NewFromInt(salary),
	})
	suite.Require().NoError(err)
	return account
}

func (suite *LedgerServiceTestSuite) mustDeposit(accountID string, amount int64) decimal.Decimal {
	balance, err := suite.service.Deposit(context.Background(), accountID, decimal.NewFromInt(amount))
	suite.Require().NoError(err)
	return balance
}

func (suite *LedgerServiceTestSuite) loadPrimary() []domain.Account {
	accounts, err := suite.snapshots.LoadAccounts(context.Background(), suite.primaryPath)
	suite.Require().NoError(err)
	return accounts
}

// --- Create ---

func (suite *LedgerServiceTestSuite) TestCreateAccount_Success() {
	account := suite.mustCreate("Alice", 1000)

	suite.NotEmpty(account.AccountID)
	suite.Equal("Alice", account.Name)
	suite.True(account.Balance.IsZero())
	suite.False(account.IsDeleted)
	suite.False(account.CreatedAt.IsZero())

	// The create persisted the full store synchronously.
	persisted := suite.loadPrimary()
	suite.Require().Len(persisted, 1)
	suite.Equal(account.AccountID, persisted[0].AccountID)
}

func (suite *LedgerServiceTestSuite) TestCreateAccount_InvalidInput() {
	_, err := suite.service.CreateAccount(context.Background(), dto.CreateAccountRequest{Name: "  ", Salary: decimal.NewFromInt(100)})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.CreateAccount(context.Background(), dto.CreateAccountRequest{Name: "Alice", Salary: decimal.Zero})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.CreateAccount(context.Background(), dto.CreateAccountRequest{Name: "Alice", Salary: decimal.NewFromInt(-5)})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestCreateAccount_UniqueIDs() {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		account := suite.mustCreate("Client", 500)
		suite.False(seen[account.AccountID], "duplicate id %s", account.AccountID)
		seen[account.AccountID] = true
	}
}

// --- Soft delete ---

func (suite *LedgerServiceTestSuite) TestSoftDelete_FreezesAccountButKeepsRecord() {
	account := suite.mustCreate("Alice", 1000)
	suite.mustDeposit(account.AccountID, 50)

	suite.Require().NoError(suite.service.SoftDeleteAccount(context.Background(), account.AccountID))

	// Mutating operations now report the account as not found.
	_, err := suite.service.Deposit(context.Background(), account.AccountID, decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.service.Withdraw(context.Background(), account.AccountID, decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrNotFound)

	// The record survives in memory and on disk, balance frozen.
	listed, err := suite.service.ListAccounts(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(listed, 1)
	suite.True(listed[0].IsDeleted)
	suite.True(listed[0].Balance.Equal(decimal.NewFromInt(50)))

	persisted := suite.loadPrimary()
	suite.Require().Len(persisted, 1)
	suite.True(persisted[0].IsDeleted)
}

func (suite *LedgerServiceTestSuite) TestSoftDelete_IdempotentOnDoubleDelete() {
	account := suite.mustCreate("Alice", 1000)

	suite.NoError(suite.service.SoftDeleteAccount(context.Background(), account.AccountID))
	suite.NoError(suite.service.SoftDeleteAccount(context.Background(), account.AccountID))
}

func (suite *LedgerServiceTestSuite) TestSoftDelete_NotFoundOnTrueAbsence() {
	err := suite.service.SoftDeleteAccount(context.Background(), "no-such-id")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Deposit / Withdraw ---

func (suite *LedgerServiceTestSuite) TestDepositThenWithdrawRoundTrip() {
	account := suite.mustCreate("Alice", 1000)
	suite.mustDeposit(account.AccountID, 300)

	after, err := suite.service.Withdraw(context.Background(), account.AccountID, decimal.NewFromInt(300))
	suite.Require().NoError(err)
	suite.True(after.IsZero())
}

func (suite *LedgerServiceTestSuite) TestDeposit_InvalidAmount() {
	account := suite.mustCreate("Alice", 1000)

	_, err := suite.service.Deposit(context.Background(), account.AccountID, decimal.Zero)
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.service.Deposit(context.Background(), account.AccountID, decimal.NewFromInt(-1))
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestDeposit_NotFound() {
	_, err := suite.service.Deposit(context.Background(), "no-such-id", decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestWithdraw_InsufficientFundsLeavesBalanceUntouched() {
	account := suite.mustCreate("Alice", 1000)
	suite.mustDeposit(account.AccountID, 100)

	_, err := suite.service.Withdraw(context.Background(), account.AccountID, decimal.NewFromInt(101))
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)

	current, err := suite.service.GetAccountByID(context.Background(), account.AccountID)
	suite.Require().NoError(err)
	suite.True(current.Balance.Equal(decimal.NewFromInt(100)))

	// Withdrawing exactly the balance is allowed.
	after, err := suite.service.Withdraw(context.Background(), account.AccountID, decimal.NewFromInt(100))
	suite.Require().NoError(err)
	suite.True(after.IsZero())
}

// --- Transfer ---

func (suite *LedgerServiceTestSuite) TestTransfer_MovesExactAmountAtomically() {
	alice := suite.mustCreate("Alice", 1000)
	bob := suite.mustCreate("Bob", 800)
	suite.mustDeposit(alice.AccountID, 500)
	suite.mustDeposit(bob.AccountID, 200)

	result, err := suite.service.Transfer(context.Background(), alice.AccountID, bob.AccountID, decimal.NewFromInt(150))
	suite.Require().NoError(err)
	suite.True(result.SenderBalance.Equal(decimal.NewFromInt(350)))
	suite.True(result.ReceiverBalance.Equal(decimal.NewFromInt(350)))

	// Sum of both balances is invariant across the transfer.
	listed, err := suite.service.ListAccounts(context.Background())
	suite.Require().NoError(err)
	sum := decimal.Zero
	for _, a := range listed {
		sum = sum.Add(a.Balance)
	}
	suite.True(sum.Equal(decimal.NewFromInt(700)))
}

func (suite *LedgerServiceTestSuite) TestTransfer_InvalidInput() {
	alice := suite.mustCreate("Alice", 1000)

	_, err := suite.service.Transfer(context.Background(), "", alice.AccountID, decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.service.Transfer(context.Background(), alice.AccountID, "", decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.service.Transfer(context.Background(), alice.AccountID, alice.AccountID, decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.service.Transfer(context.Background(), alice.AccountID, "other", decimal.Zero)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestTransfer_NotFoundOnMissingEndpoint() {
	alice := suite.mustCreate("Alice", 1000)

	_, err := suite.service.Transfer(context.Background(), alice.AccountID, "no-such-id", decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.service.Transfer(context.Background(), "no-such-id", alice.AccountID, decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestTransfer_ReportsDeletedSide() {
	alice := suite.mustCreate("Alice", 1000)
	bob := suite.mustCreate("Bob", 800)
	suite.mustDeposit(alice.AccountID, 100)

	suite.Require().NoError(suite.service.SoftDeleteAccount(context.Background(), bob.AccountID))
	_, err := suite.service.Transfer(context.Background(), alice.AccountID, bob.AccountID, decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrAccountDeleted)
	suite.Contains(err.Error(), "receiver")

	_, err = suite.service.Transfer(context.Background(), bob.AccountID, alice.AccountID, decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrAccountDeleted)
	suite.Contains(err.Error(), "sender")
}

func (suite *LedgerServiceTestSuite) TestTransfer_InsufficientFundsHasNoPartialEffect() {
	alice := suite.mustCreate("Alice", 1000)
	bob := suite.mustCreate("Bob", 800)
	suite.mustDeposit(alice.AccountID, 50)

	_, err := suite.service.Transfer(context.Background(), alice.AccountID, bob.AccountID, decimal.NewFromInt(51))
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)

	a, err := suite.service.GetAccountByID(context.Background(), alice.AccountID)
	suite.Require().NoError(err)
	suite.True(a.Balance.Equal(decimal.NewFromInt(50)))
	b, err := suite.service.GetAccountByID(context.Background(), bob.AccountID)
	suite.Require().NoError(err)
	suite.True(b.Balance.IsZero())
}

// --- End-to-end scenario ---

func (suite *LedgerServiceTestSuite) TestAccountLifecycleScenario() {
	ctx := context.Background()

	alice := suite.mustCreate("Alice", 1000)
	suite.True(alice.Balance.IsZero())

	suite.True(suite.mustDeposit(alice.AccountID, 500).Equal(decimal.NewFromInt(500)))

	afterWithdraw, err := suite.service.Withdraw(ctx, alice.AccountID, decimal.NewFromInt(200))
	suite.Require().NoError(err)
	suite.True(afterWithdraw.Equal(decimal.NewFromInt(300)))

	bob := suite.mustCreate("Bob", 800)

	result, err := suite.service.Transfer(ctx, alice.AccountID, bob.AccountID, decimal.NewFromInt(100))
	suite.Require().NoError(err)
	suite.True(result.SenderBalance.Equal(decimal.NewFromInt(200)))
	suite.True(result.ReceiverBalance.Equal(decimal.NewFromInt(100)))

	suite.Require().NoError(suite.service.SoftDeleteAccount(ctx, alice.AccountID))
	_, err = suite.service.Deposit(ctx, alice.AccountID, decimal.NewFromInt(50))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Concurrency ---

func (suite *LedgerServiceTestSuite) TestConcurrentDepositsAreNotLost() {
	account := suite.mustCreate("Alice", 1000)

	const goroutines = 25
	amount := decimal.NewFromInt(10)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.Deposit(context.Background(), account.AccountID, amount)
			assert.NoError(suite.T(), err)
		}()
	}
	wg.Wait()

	want := decimal.NewFromInt(10 * goroutines)
	current, err := suite.service.GetAccountByID(context.Background(), account.AccountID)
	suite.Require().NoError(err)
	suite.True(current.Balance.Equal(want), "expected %s, got %s", want, current.Balance)

	// The last persisted snapshot reflects the final state.
	persisted := suite.loadPrimary()
	suite.Require().Len(persisted, 1)
	suite.True(persisted[0].Balance.Equal(want))
}

// --- Restore ---

func (suite *LedgerServiceTestSuite) TestRestoreRebuildsStoreFromPrimaryFile() {
	alice := suite.mustCreate("Alice", 1000)
	suite.mustDeposit(alice.AccountID, 75)
	suite.Require().NoError(suite.service.SoftDeleteAccount(context.Background(), alice.AccountID))

	restored := services.NewLedgerService(memory.NewStore(), suite.snapshots, suite.primaryPath)
	suite.Require().NoError(restored.Restore(context.Background()))

	listed, err := restored.ListAccounts(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(listed, 1)
	suite.Equal(alice.AccountID, listed[0].AccountID)
	suite.True(listed[0].Balance.Equal(decimal.NewFromInt(75)))
	suite.True(listed[0].IsDeleted)
}

func (suite *LedgerServiceTestSuite) TestRestoreMissingFileYieldsEmptyStore() {
	suite.Require().NoError(suite.service.Restore(context.Background()))

	listed, err := suite.service.ListAccounts(context.Background())
	suite.Require().NoError(err)
	suite.Empty(listed)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

// --- Persistence failure propagation (mocked snapshot store) ---

func TestMutationsSurvivePersistenceFailure(t *testing.T) {
	store := memory.NewStore()
	snapshots := new(MockSnapshotStore)
	service := services.NewLedgerService(store, snapshots, "accounts.csv")

	// First save (create) succeeds, later ones fail.
	snapshots.On("SaveAccounts", mock.Anything, "accounts.csv", mock.Anything).Return(nil).Once()
	snapshots.On("SaveAccounts", mock.Anything, "accounts.csv", mock.Anything).Return(assert.AnError)

	account, err := service.CreateAccount(context.Background(), dto.CreateAccountRequest{
		Name:   "Alice",
		Salary: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	balance, err := service.Deposit(context.Background(), account.AccountID, decimal.NewFromInt(40))
	assert.ErrorIs(t, err, apperrors.ErrPersistenceFailed)
	assert.True(t, balance.Equal(decimal.NewFromInt(40)))

	// The in-memory mutation stays applied despite the failed write.
	current, err := service.GetAccountByID(context.Background(), account.AccountID)
	require.NoError(t, err)
	assert.True(t, current.Balance.Equal(decimal.NewFromInt(40)))

	snapshots.AssertExpectations(t)
}

func TestCreateReportsPersistenceFailureWithAccount(t *testing.T) {
	store := memory.NewStore()
	snapshots := new(MockSnapshotStore)
	service := services.NewLedgerService(store, snapshots, "accounts.csv")

	snapshots.On("SaveAccounts", mock.Anything, "accounts.csv", mock.Anything).Return(assert.AnError)

	account, err := service.CreateAccount(context.Background(), dto.CreateAccountRequest{
		Name:   "Alice",
		Salary: decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, apperrors.ErrPersistenceFailed)
	require.NotNil(t, account)

	// The account exists in memory even though the write failed.
	current, getErr := service.GetAccountByID(context.Background(), account.AccountID)
	require.NoError(t, getErr)
	assert.Equal(t, account.AccountID, current.AccountID)
}

func TestRestoreSurfacesCorruptStore(t *testing.T) {
	store := memory.NewStore()
	snapshots := new(MockSnapshotStore)
	service := services.NewLedgerService(store, snapshots, "accounts.csv")

	snapshots.On("LoadAccounts", mock.Anything, "accounts.csv").Return(nil, apperrors.ErrCorruptStore)

	err := service.Restore(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCorruptStore)
}
