package account

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyCustomerName     = errors.New("customer name cannot be empty")
	ErrEmptyAccountNumber    = errors.New("account number cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrNegativeBalance       = errors.New("balance cannot be negative")
	ErrBalanceTooPrecise     = errors.New("balance cannot have more than 4 decimal places")
)

// MoneyScale is the number of fraction digits the store keeps for monetary
// values (NUMERIC(19,4) columns). Values finer than this would be rounded on
// write, so they are rejected up front.
const MoneyScale = 4

// FitsMoneyScale reports whether v carries no significant digits beyond
// MoneyScale. Trailing zeros are fine: 25.50000 fits, 25.00005 does not.
func FitsMoneyScale(v decimal.Decimal) bool {
	return v.Truncate(MoneyScale).Equal(v)
}

// Account represents a customer account holding a monetary balance.
// ID is assigned by the store on creation; AccountNumber and Currency are immutable
// after creation, and Balance changes only through the transfer engine's atomic unit.
type Account struct {
	ID            int64           `json:"id"`
	CustomerName  string          `json:"customerName"`
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// New validates and builds an account ready to be persisted. The ID stays zero
// until the store assigns one.
func New(customerName, accountNumber string, balance decimal.Decimal, currency string) (*Account, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, ErrEmptyCustomerName
	}
	if strings.TrimSpace(accountNumber) == "" {
		return nil, ErrEmptyAccountNumber
	}
	if !isCurrencyCode(currency) {
		return nil, ErrInvalidCurrencyFormat
	}
	if balance.IsNegative() {
		return nil, ErrNegativeBalance
	}
	if !FitsMoneyScale(balance) {
		return nil, ErrBalanceTooPrecise
	}

	return &Account{
		CustomerName:  customerName,
		AccountNumber: accountNumber,
		Balance:       balance,
		Currency:      strings.ToUpper(currency),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// CanDebit reports whether the balance covers the given amount.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// isCurrencyCode reports whether s is exactly three ASCII letters.
func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
