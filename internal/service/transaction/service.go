package transaction

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

// Service orchestrates transaction management. Ownership of a
// transaction always flows through its account, never through the
// transaction row itself.
type Service struct {
	transactions repository.TransactionRepository
	accounts     repository.AccountRepository
	categories   repository.CategoryRepository
	logger       *slog.Logger
}

// New returns a transaction service.
func New(transactions repository.TransactionRepository, accounts repository.AccountRepository, categories repository.CategoryRepository, logger *slog.Logger) Service {
	return Service{transactions: transactions, accounts: accounts, categories: categories, logger: logger}
}

var (
	// ErrAccountNotFound is returned when the referenced account is
	// absent or owned by another user.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCategoryNotFound is the category counterpart of
	// ErrAccountNotFound.
	ErrCategoryNotFound = errors.New("category not found")

	errDescriptionRequired = fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	errAmountNotPositive   = fmt.Errorf("%w: amount must be greater than zero", domain.ErrInvalidInput)
	errAccountIDRequired   = fmt.Errorf("%w: account id is required", domain.ErrInvalidInput)
	errCategoryIDRequired  = fmt.Errorf("%w: category id is required", domain.ErrInvalidInput)
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Input carries the caller-supplied transaction fields, shared by create
// and update.
type Input struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        time.Time       `json:"date"`
	AccountID   string          `json:"accountId"`
	CategoryID  string          `json:"categoryId"`
}

// SearchInput narrows a transaction search. AccountID is required.
type SearchInput struct {
	AccountID  string
	SearchText string
	Date       *time.Time
	Amount     *decimal.Decimal
	Page       int
	PageSize   int
}

// Transaction is the response shape, enriched with the owning account's
// and category's display names.
type Transaction struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
	TypeName     string          `json:"typeName"`
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"createdAt"`
	AccountID    string          `json:"accountId"`
	AccountName  string          `json:"accountName"`
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
}

// Create persists a transaction after verifying the target account and
// category belong to the user. The occurrence date is normalized to a
// UTC calendar date; the creation time is server-stamped.
func (s Service) Create(ctx context.Context, userID string, input Input) (*Transaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	txType, err := domain.ParseTransactionType(input.Type)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetAccountByID(ctx, input.AccountID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	category, err := s.categories.GetCategoryByID(ctx, input.CategoryID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	tx := &domain.Transaction{
		ID:           uuid.NewString(),
		AccountID:    account.ID,
		CategoryID:   category.ID,
		Description:  strings.TrimSpace(input.Description),
		Amount:       input.Amount,
		Type:         txType,
		Date:         normalizeDate(input.Date),
		CreatedAt:    time.Now().UTC(),
		AccountName:  account.Name,
		CategoryName: category.Name,
	}
	if err := s.transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	s.logger.Info("transaction created", "transaction_id", tx.ID, "account_id", account.ID, "user_id", userID)
	return mapTransaction(tx), nil
}

// GetByAccount returns the account's transactions newest first. An
// account the user does not own yields an empty result, not an error.
func (s Service) GetByAccount(ctx context.Context, userID, accountID string) ([]Transaction, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, errAccountIDRequired
	}
	transactions, err := s.transactions.ListTransactionsByAccount(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	return mapTransactions(transactions), nil
}

// GetByID returns a single transaction owned (via its account) by the
// user.
func (s Service) GetByID(ctx context.Context, userID, transactionID string) (*Transaction, error) {
	tx, err := s.transactions.GetTransactionByID(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	return mapTransaction(tx), nil
}

// Update overwrites every mutable field. When the transaction moves to a
// different account or category, the new target is re-validated against
// the caller.
func (s Service) Update(ctx context.Context, userID, transactionID string, input Input) (*Transaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	txType, err := domain.ParseTransactionType(input.Type)
	if err != nil {
		return nil, err
	}
	tx, err := s.transactions.GetTransactionByID(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}
	if tx.AccountID != input.AccountID {
		if _, err := s.accounts.GetAccountByID(ctx, input.AccountID, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
	}
	if tx.CategoryID != input.CategoryID {
		if _, err := s.categories.GetCategoryByID(ctx, input.CategoryID, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}
	tx.AccountID = input.AccountID
	tx.CategoryID = input.CategoryID
	tx.Description = strings.TrimSpace(input.Description)
	tx.Amount = input.Amount
	tx.Type = txType
	tx.Date = normalizeDate(input.Date)
	if err := s.transactions.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	// Reload so the enriched names reflect a moved account or category.
	updated, err := s.transactions.GetTransactionByID(ctx, tx.ID, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("transaction updated", "transaction_id", tx.ID, "user_id", userID)
	return mapTransaction(updated), nil
}

// Delete removes a transaction owned (via its account) by the user.
func (s Service) Delete(ctx context.Context, userID, transactionID string) error {
	tx, err := s.transactions.GetTransactionByID(ctx, transactionID, userID)
	if err != nil {
		return err
	}
	if err := s.transactions.DeleteTransaction(ctx, tx.ID); err != nil {
		return err
	}
	s.logger.Info("transaction deleted", "transaction_id", tx.ID, "user_id", userID)
	return nil
}

// Search filters the account's transactions. Ordering matches
// GetByAccount exactly; an account the user does not own yields an empty
// result.
func (s Service) Search(ctx context.Context, userID string, input SearchInput) ([]Transaction, error) {
	if strings.TrimSpace(input.AccountID) == "" {
		return nil, errAccountIDRequired
	}
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	filter := domain.TransactionFilter{
		AccountID:  input.AccountID,
		SearchText: strings.TrimSpace(input.SearchText),
		Amount:     input.Amount,
		Page:       page,
		PageSize:   pageSize,
	}
	if input.Date != nil {
		normalized := normalizeDate(*input.Date)
		filter.Date = &normalized
	}
	transactions, err := s.transactions.SearchTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return mapTransactions(transactions), nil
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.Description) == "" {
		return errDescriptionRequired
	}
	if !input.Amount.IsPositive() {
		return errAmountNotPositive
	}
	if strings.TrimSpace(input.AccountID) == "" {
		return errAccountIDRequired
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		return errCategoryIDRequired
	}
	return nil
}

// normalizeDate strips the time-of-day component and pins the occurrence
// date to UTC.
func normalizeDate(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

func mapTransaction(tx *domain.Transaction) *Transaction {
	return &Transaction{
		ID:           tx.ID,
		Description:  tx.Description,
		Amount:       tx.Amount,
		Type:         string(tx.Type),
		TypeName:     string(tx.Type),
		Date:         tx.Date,
		CreatedAt:    tx.CreatedAt,
		AccountID:    tx.AccountID,
		AccountName:  tx.AccountName,
		CategoryID:   tx.CategoryID,
		CategoryName: tx.CategoryName,
	}
}

func mapTransactions(transactions []domain.Transaction) []Transaction {
	result := make([]Transaction, 0, len(transactions))
	for i := range transactions {
		result = append(result, *mapTransaction(&transactions[i]))
	}
	return result
}
