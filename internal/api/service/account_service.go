package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/securepay/ledger/internal/domain/account"
	"github.com/securepay/ledger/internal/domain/fault"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
	}
}

// CreateAccount validates the details, persists the account and returns it with
// its store-assigned ID
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, customerName, accountNumber string, initialBalance decimal.Decimal, currency string) (*account.Account, error) {
	acc, err := account.New(customerName, accountNumber, initialBalance, currency)
	if err != nil {
		return nil, fault.Wrap(fault.KindValidation, err.Error(), err)
	}

	id, err := s.accountRepo.Create(ctx, acc)
	if err != nil {
		return nil, fault.Classify(err)
	}
	acc.ID = id

	return acc, nil
}

// GetAccountByID retrieves an account by its ID
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id int64) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fault.Classify(err)
	}
	return acc, nil
}

// GetAccountByNumber retrieves an account by its account number
func (s *AccountServiceImpl) GetAccountByNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	acc, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, fault.Classify(err)
	}
	return acc, nil
}

// GetAllAccounts retrieves every account
func (s *AccountServiceImpl) GetAllAccounts(ctx context.Context) ([]*account.Account, error) {
	accounts, err := s.accountRepo.GetAll(ctx)
	if err != nil {
		return nil, fault.Classify(err)
	}
	return accounts, nil
}

// UpdateAccount renames the account holder
func (s *AccountServiceImpl) UpdateAccount(ctx context.Context, id int64, customerName string) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fault.Classify(err)
	}

	if _, err := account.New(customerName, acc.AccountNumber, acc.Balance, acc.Currency); err != nil {
		return nil, fault.Wrap(fault.KindValidation, err.Error(), err)
	}

	acc.CustomerName = customerName
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, fault.Classify(err)
	}

	return acc, nil
}

// DeleteAccount removes an account whose balance is zero
func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return fault.Classify(err)
	}
	return nil
}
