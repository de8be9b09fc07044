package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FilipeTerra/MyFinance/internal/domain"
	"github.com/FilipeTerra/MyFinance/internal/repository"
)

// Service orchestrates account management.
type Service struct {
	accounts     repository.AccountRepository
	transactions repository.TransactionRepository
	logger       *slog.Logger
}

// New returns an account service.
func New(accounts repository.AccountRepository, transactions repository.TransactionRepository, logger *slog.Logger) Service {
	return Service{accounts: accounts, transactions: transactions, logger: logger}
}

var (
	// ErrHasTransactions blocks deleting an account that transactions
	// still reference.
	ErrHasTransactions = errors.New("account has associated transactions")

	errNameRequired           = fmt.Errorf("%w: account name is required", domain.ErrInvalidInput)
	errNegativeInitialBalance = fmt.Errorf("%w: initial balance must not be negative", domain.ErrInvalidInput)
)

// CreateInput encapsulates account creation attributes.
type CreateInput struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// UpdateInput carries the fields an update may overwrite. The initial
// balance is immutable after creation.
type UpdateInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Account is the response shape: the stored record plus the derived
// current balance (initial balance adjusted by the account's
// transactions).
type Account struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Create registers a new account owned by the user. The current balance
// of a fresh account equals its initial balance.
func (s Service) Create(ctx context.Context, userID string, input CreateInput) (*Account, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errNameRequired
	}
	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}
	if input.InitialBalance.IsNegative() {
		return nil, errNegativeInitialBalance
	}
	account := &domain.Account{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           strings.TrimSpace(input.Name),
		Type:           accountType,
		InitialBalance: input.InitialBalance,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account created", "account_id", account.ID, "user_id", userID)
	return mapAccount(account, decimal.Zero), nil
}

// Get returns a single account with its derived balance. A foreign
// owner's account is reported as not found.
func (s Service) Get(ctx context.Context, userID, accountID string) (*Account, error) {
	account, err := s.accounts.GetAccountByID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	net, err := s.transactions.NetAmountForAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return mapAccount(account, net), nil
}

// ListAll returns every account owned by the user. Balances are derived
// in one aggregate pass rather than per account.
func (s Service) ListAll(ctx context.Context, userID string) ([]Account, error) {
	accounts, err := s.accounts.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	nets, err := s.transactions.NetAmountsByAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]Account, 0, len(accounts))
	for i := range accounts {
		net, ok := nets[accounts[i].ID]
		if !ok {
			net = decimal.Zero
		}
		result = append(result, *mapAccount(&accounts[i], net))
	}
	return result, nil
}

// Update overwrites name and type only.
func (s Service) Update(ctx context.Context, userID, accountID string, input UpdateInput) (*Account, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errNameRequired
	}
	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetAccountByID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	account.Name = strings.TrimSpace(input.Name)
	account.Type = accountType
	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	net, err := s.transactions.NetAmountForAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account updated", "account_id", account.ID, "user_id", userID)
	return mapAccount(account, net), nil
}

// Delete removes an account that no transaction references.
func (s Service) Delete(ctx context.Context, userID, accountID string) error {
	account, err := s.accounts.GetAccountByID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	inUse, err := s.transactions.AccountHasTransactions(ctx, account.ID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrHasTransactions
	}
	if err := s.accounts.DeleteAccount(ctx, account.ID); err != nil {
		return err
	}
	s.logger.Info("account deleted", "account_id", account.ID, "user_id", userID)
	return nil
}

func mapAccount(account *domain.Account, net decimal.Decimal) *Account {
	return &Account{
		ID:             account.ID,
		Name:           account.Name,
		Type:           string(account.Type),
		InitialBalance: account.InitialBalance,
		CurrentBalance: account.InitialBalance.Add(net),
		CreatedAt:      account.CreatedAt,
	}
}
