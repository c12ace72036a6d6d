package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/securepay/ledger/internal/domain/account"
	"github.com/securepay/ledger/internal/domain/transfer"
)

// CreateAccountRequest represents a request to create a new account
type CreateAccountRequest struct {
	CustomerName   string          `json:"customerName" binding:"required"`
	AccountNumber  string          `json:"accountNumber" binding:"required"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Currency       string          `json:"currency" binding:"required,len=3"`
}

// UpdateAccountRequest represents a request to rename the account holder
type UpdateAccountRequest struct {
	CustomerName string `json:"customerName" binding:"required"`
}

// TransferRequest represents a request to move funds between two accounts
type TransferRequest struct {
	SenderID   int64           `json:"senderId" binding:"required"`
	ReceiverID int64           `json:"receiverId" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID            int64           `json:"id"`
	CustomerName  string          `json:"customerName"`
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	CreatedAt     string          `json:"createdAt"`
}

// TransferResponse represents the terminal outcome of a transfer
type TransferResponse struct {
	Status        string `json:"status"`
	ReferenceNo   string `json:"referenceNo"`
	FailureReason string `json:"failureReason,omitempty"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID                int64           `json:"id"`
	SenderAccountID   int64           `json:"senderAccountId"`
	ReceiverAccountID int64           `json:"receiverAccountId"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	FailureReason     string          `json:"failureReason,omitempty"`
	ReferenceNo       string          `json:"referenceNo"`
	TransactionDate   string          `json:"transactionDate"`
}

// HistoryEventResponse represents an archived transfer event in API responses
type HistoryEventResponse struct {
	ReferenceNo       string          `json:"referenceNo"`
	SenderAccountID   int64           `json:"senderAccountId"`
	ReceiverAccountID int64           `json:"receiverAccountId"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	FailureReason     string          `json:"failureReason,omitempty"`
	OccurredAt        string          `json:"occurredAt"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"perPage,default=10" binding:"min=1,max=100"`
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:            acc.ID,
		CustomerName:  acc.CustomerName,
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance,
		Currency:      acc.Currency,
		CreatedAt:     acc.CreatedAt.Format(time.RFC3339),
	}
}

// mapTransactionToResponse maps a ledger entry to a transaction response DTO
func mapTransactionToResponse(txn *transfer.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                txn.ID,
		SenderAccountID:   txn.SenderAccountID,
		ReceiverAccountID: txn.ReceiverAccountID,
		Amount:            txn.Amount,
		Type:              string(txn.Type),
		Status:            string(txn.Status),
		FailureReason:     string(txn.FailureReason),
		ReferenceNo:       txn.ReferenceNo,
		TransactionDate:   txn.TransactionDate.Format(time.RFC3339),
	}
}

// mapEventToResponse maps an archived transfer event to a response DTO
func mapEventToResponse(event *transfer.Event) HistoryEventResponse {
	return HistoryEventResponse{
		ReferenceNo:       event.ReferenceNo,
		SenderAccountID:   event.SenderAccountID,
		ReceiverAccountID: event.ReceiverAccountID,
		Amount:            event.Amount,
		Currency:          event.Currency,
		Status:            string(event.Status),
		FailureReason:     string(event.FailureReason),
		OccurredAt:        event.OccurredAt.Format(time.RFC3339),
	}
}
