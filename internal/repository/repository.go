package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/FilipeTerra/MyFinance/internal/domain"
)

// UserRepository persists users. Email lookups are case-insensitive.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// AccountRepository persists accounts. Lookups taking a userID are
// ownership-scoped: a mismatch is reported as ErrNotFound, never as a
// permission error.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccountByID(ctx context.Context, accountID, userID string) (*domain.Account, error)
	ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, account *domain.Account) error
	DeleteAccount(ctx context.Context, accountID string) error
}

// CategoryRepository persists categories with the same ownership scoping
// as AccountRepository.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategoryByID(ctx context.Context, categoryID, userID string) (*domain.Category, error)
	ListCategoriesByUser(ctx context.Context, userID string) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
}

// TransactionRepository persists transactions. Ownership is derived via
// the owning account: reads join on accounts and filter by the account's
// user. List and search return an empty slice, not an error, when the
// account does not belong to the user.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	GetTransactionByID(ctx context.Context, transactionID, userID string) (*domain.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID, userID string) ([]domain.Transaction, error)
	SearchTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error
	AccountHasTransactions(ctx context.Context, accountID string) (bool, error)
	CategoryHasTransactions(ctx context.Context, categoryID string) (bool, error)
	NetAmountsByAccount(ctx context.Context, userID string) (map[string]decimal.Decimal, error)
	NetAmountForAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}
