package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/client_ledger_app/internal/apperrors"
	portssvc "github.com/SscSPs/client_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/client_ledger_app/internal/dto"
	"github.com/SscSPs/client_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(ls portssvc.LedgerSvcFacade) *accountHandler {
	return &accountHandler{
		ledgerService: ls,
	}
}

// registerAccountRoutes registers routes related to accounts and transfers.
func registerAccountRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newAccountHandler(ledgerService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.DELETE("/:accountID", h.deleteAccount)
		accounts.POST("/:accountID/deposit", h.deposit)
		accounts.POST("/:accountID/withdraw", h.withdraw)
	}
	rg.POST("/transfers", h.transfer)
}

// respondOperationError maps ledger domain errors to stable HTTP statuses so
// the caller can distinguish bad input from absence from business-rule
// conflicts from storage faults.
func (h *accountHandler) respondOperationError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Account not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAccountDeleted):
		logger.Warn("Account deleted", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		logger.Warn("Insufficient funds", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Error("Duplicate account id", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		// Unexpected fault: never leak internal state to the caller.
		logger.Error("Operation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates a new client account with zero balance
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	newAccount, err := h.ledgerService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrPersistenceFailed) {
			// The account exists in memory but the store file write failed.
			logger.Error("Account created but not persisted", slog.String("account_id", newAccount.AccountID))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "account created but could not be persisted",
				"account": dto.ToAccountResponse(newAccount),
			})
			return
		}
		h.respondOperationError(c, logger, err)
		return
	}

	logger.Info("Account created", slog.String("account_id", newAccount.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(newAccount))
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves details for a specific account, deleted or active
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	account, err := h.ledgerService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		h.respondOperationError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List all accounts
// @Description Retrieves every account, active and soft-deleted
// @Tags accounts
// @Produce  json
// @Success 200 {array} dto.AccountResponse
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.ledgerService.ListAccounts(c.Request.Context())
	if err != nil {
		h.respondOperationError(c, logger, err)
		return
	}

	resp := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, dto.ToAccountResponse(&accounts[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// deleteAccount godoc
// @Summary Soft-delete an account
// @Description Marks an account as deleted; the record stays in storage
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	if err := h.ledgerService.SoftDeleteAccount(c.Request.Context(), accountID); err != nil {
		if errors.Is(err, apperrors.ErrPersistenceFailed) {
			logger.Error("Account deleted but not persisted", slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "account deleted but could not be persisted"})
			return
		}
		h.respondOperationError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account marked as deleted", "accountID": accountID})
}

// deposit godoc
// @Summary Deposit funds
// @Description Adds a positive amount to an active account's balance
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   request body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found or deleted"
// @Router /accounts/{accountID}/deposit [post]
func (h *accountHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	newBalance, err := h.ledgerService.Deposit(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		if errors.Is(err, apperrors.ErrPersistenceFailed) {
			logger.Error("Deposit applied but not persisted", slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "deposit applied but could not be persisted",
				"balance": newBalance,
			})
			return
		}
		h.respondOperationError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Balance: newBalance})
}

// withdraw godoc
// @Summary Withdraw funds
// @Description Subtracts a positive amount from an active account's balance
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   request body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found or deleted"
// @Failure 409 {object} map[string]string "Insufficient funds"
// @Router /accounts/{accountID}/withdraw [post]
func (h *accountHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	newBalance, err := h.ledgerService.Withdraw(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		if errors.Is(err, apperrors.ErrPersistenceFailed) {
			logger.Error("Withdrawal applied but not persisted", slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "withdrawal applied but could not be persisted",
				"balance": newBalance,
			})
			return
		}
		h.respondOperationError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Balance: newBalance})
}

// transfer godoc
// @Summary Transfer funds between accounts
// @Description Moves a positive amount from sender to receiver atomically
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   request body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.TransferResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Sender or receiver not found"
// @Failure 409 {object} map[string]string "Deleted endpoint or insufficient funds"
// @Router /transfers [post]
func (h *accountHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.ledgerService.Transfer(c.Request.Context(), req.SenderID, req.ReceiverID, req.Amount)
	if err != nil {
		if errors.Is(err, apperrors.ErrPersistenceFailed) {
			logger.Error("Transfer applied but not persisted",
				slog.String("sender_id", req.SenderID),
				slog.String("receiver_id", req.ReceiverID),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  "transfer applied but could not be persisted",
				"result": result,
			})
			return
		}
		h.respondOperationError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
