package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/securepay/ledger/internal/api/middleware"
	"github.com/securepay/ledger/internal/api/service"
	"github.com/securepay/ledger/internal/domain/transfer"
	"github.com/securepay/ledger/internal/engine"
)

// TransferHandler handles HTTP requests for funds transfers and ledger lookups
type TransferHandler struct {
	transferService service.TransferService
	logger          *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(logger *slog.Logger, transferService service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		logger:          logger,
	}
}

// Transfer executes a funds transfer between two accounts. Both terminal outcomes
// answer 200: a Failed outcome is a recorded rejection, not a transport error.
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	outcome, err := h.transferService.Transfer(c.Request.Context(), engine.Request{
		SenderID:      req.SenderID,
		ReceiverID:    req.ReceiverID,
		Amount:        req.Amount,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.logger.Error("Transfer failed",
			"sender_id", req.SenderID,
			"receiver_id", req.ReceiverID,
			"error", err,
		)
		RespondFault(c, err)
		return
	}

	response := TransferResponse{
		Status:        string(outcome.Status),
		ReferenceNo:   outcome.ReferenceNo,
		FailureReason: string(outcome.FailureReason),
	}
	if outcome.Status == transfer.StatusFailed {
		RespondOK(c, "Transfer rejected: "+string(outcome.FailureReason), response)
		return
	}
	RespondOK(c, "Transfer completed", response)
}

// GetByReferenceNo retrieves a single ledger entry by its reference number
func (h *TransferHandler) GetByReferenceNo(c *gin.Context) {
	referenceNo := c.Param("referenceNo")

	txn, err := h.transferService.GetTransactionByReferenceNo(c.Request.Context(), referenceNo)
	if err != nil {
		h.logger.Error("Failed to get transaction", "reference_no", referenceNo, "error", err)
		RespondFault(c, err)
		return
	}

	RespondOK(c, "Transaction retrieved", mapTransactionToResponse(txn))
}

// GetByAccountID retrieves a page of ledger entries where the account is sender
// or receiver
func (h *TransferHandler) GetByAccountID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	txns, total, err := h.transferService.GetTransactionsByAccountID(c.Request.Context(), id, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "id", id, "error", err)
		RespondFault(c, err)
		return
	}

	responses := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, mapTransactionToResponse(txn))
	}
	RespondPaginated(c, "Transactions retrieved", responses, params.Page, params.PerPage, total)
}
