package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/securepay/ledger/internal/api/service"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	historyService service.HistoryService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService, historyService service.HistoryService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		historyService: historyService,
		logger:         logger,
	}
}

// Create handles creation of a new account
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), req.CustomerName, req.AccountNumber, req.InitialBalance, req.Currency)
	if err != nil {
		h.logger.Error("Failed to create account", "account_number", req.AccountNumber, "error", err)
		RespondFault(c, err)
		return
	}

	RespondCreated(c, "Account created", mapAccountToResponse(acc))
}

// GetAll retrieves every account
func (h *AccountHandler) GetAll(c *gin.Context) {
	accounts, err := h.accountService.GetAllAccounts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list accounts", "error", err)
		RespondFault(c, err)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		responses = append(responses, mapAccountToResponse(acc))
	}
	RespondOK(c, "Accounts retrieved", responses)
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	acc, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get account", "id", id, "error", err)
		RespondFault(c, err)
		return
	}

	RespondOK(c, "Account retrieved", mapAccountToResponse(acc))
}

// GetByNumber retrieves an account by its business account number
func (h *AccountHandler) GetByNumber(c *gin.Context) {
	accountNumber := c.Param("accountNumber")

	acc, err := h.accountService.GetAccountByNumber(c.Request.Context(), accountNumber)
	if err != nil {
		h.logger.Error("Failed to get account", "account_number", accountNumber, "error", err)
		RespondFault(c, err)
		return
	}

	RespondOK(c, "Account retrieved", mapAccountToResponse(acc))
}

// Update renames the account holder
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.accountService.UpdateAccount(c.Request.Context(), id, req.CustomerName)
	if err != nil {
		h.logger.Error("Failed to update account", "id", id, "error", err)
		RespondFault(c, err)
		return
	}

	RespondOK(c, "Account updated", mapAccountToResponse(acc))
}

// Delete removes an account whose balance is zero
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to delete account", "id", id, "error", err)
		RespondFault(c, err)
		return
	}

	RespondOK(c, "Account deleted", nil)
}

// GetHistory retrieves the archived transfer history for an account
func (h *AccountHandler) GetHistory(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	events, total, err := h.historyService.GetHistoryByAccountID(c.Request.Context(), id, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to get transfer history", "id", id, "error", err)
		RespondFault(c, err)
		return
	}

	responses := make([]HistoryEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, mapEventToResponse(event))
	}
	RespondPaginated(c, "Transfer history retrieved", responses, params.Page, params.PerPage, total)
}

// accountID parses the :id path parameter, answering 400 on garbage input
func (h *AccountHandler) accountID(c *gin.Context) (int64, bool) {
	idParam := c.Param("id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return 0, false
	}
	return id, true
}
