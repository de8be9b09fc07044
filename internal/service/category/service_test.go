package category

import (
	"context"
	"errors"
	"io"
	"testing"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/FilipeTerra/MyFinance/internal/domain"
	"github.com/FilipeTerra/MyFinance/internal/repository"
)

type categoryRepoStub struct {
	categories map[string]*domain.Category
}

func newCategoryRepoStub() *categoryRepoStub {
	return &categoryRepoStub{categories: make(map[string]*domain.Category)}
}

func (s *categoryRepoStub) CreateCategory(ctx context.Context, category *domain.Category) error {
	copied := *category
	s.categories[category.ID] = &copied
	return nil
}

func (s *categoryRepoStub) GetCategoryByID(ctx context.Context, categoryID, userID string) (*domain.Category, error) {
	category, ok := s.categories[categoryID]
	if !ok || category.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copied := *category
	return &copied, nil
}

func (s *categoryRepoStub) ListCategoriesByUser(ctx context.Context, userID string) ([]domain.Category, error) {
	var result []domain.Category
	for _, category := range s.categories {
		if category.UserID == userID {
			result = append(result, *category)
		}
	}
	return result, nil
}

func (s *categoryRepoStub) UpdateCategory(ctx context.Context, category *domain.Category) error {
	if _, ok := s.categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *category
	s.categories[category.ID] = &copied
	return nil
}

func (s *categoryRepoStub) DeleteCategory(ctx context.Context, categoryID string) error {
	if _, ok := s.categories[categoryID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.categories, categoryID)
	return nil
}

type transactionRepoStub struct {
	inUse map[string]bool
}

func newTransactionRepoStub() *transactionRepoStub {
	return &transactionRepoStub{inUse: make(map[string]bool)}
}

func (s *transactionRepoStub) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	return nil
}

func (s *transactionRepoStub) GetTransactionByID(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	return nil, repository.ErrNotFound
}

func (s *transactionRepoStub) ListTransactionsByAccount(ctx context.Context, accountID, userID string) ([]domain.Transaction, error) {
	return nil, nil
}

func (s *transactionRepoStub) SearchTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	return nil, nil
}

func (s *transactionRepoStub) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	return nil
}

func (s *transactionRepoStub) DeleteTransaction(ctx context.Context, transactionID string) error {
	return nil
}

func (s *transactionRepoStub) AccountHasTransactions(ctx context.Context, accountID string) (bool, error) {
	return false, nil
}

func (s *transactionRepoStub) CategoryHasTransactions(ctx context.Context, categoryID string) (bool, error) {
	return s.inUse[categoryID], nil
}

func (s *transactionRepoStub) NetAmountsByAccount(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	return nil, nil
}

func (s *transactionRepoStub) NetAmountForAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateTrimsAndRequiresName(t *testing.T) {
	svc := New(newCategoryRepoStub(), newTransactionRepoStub(), newLogger())

	created, err := svc.Create(context.Background(), "user-a", "  Food  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Name != "Food" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if _, err := svc.Create(context.Background(), "user-a", "   "); !errors.Is(err, errNameRequired) {
		t.Fatalf("expected name error, got %v", err)
	}
}

func TestUpdateScopedToOwner(t *testing.T) {
	svc := New(newCategoryRepoStub(), newTransactionRepoStub(), newLogger())

	created, err := svc.Create(context.Background(), "user-a", "Food")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Update(context.Background(), "user-b", created.ID, "Groceries"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	updated, err := svc.Update(context.Background(), "user-a", created.ID, "Groceries")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Groceries" {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestDeleteBlockedWhileInUse(t *testing.T) {
	categories := newCategoryRepoStub()
	transactions := newTransactionRepoStub()
	svc := New(categories, transactions, newLogger())

	created, err := svc.Create(context.Background(), "user-a", "Food")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	transactions.inUse[created.ID] = true

	if err := svc.Delete(context.Background(), "user-a", created.ID); !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	if _, ok := categories.categories[created.ID]; !ok {
		t.Fatalf("category removed despite being in use")
	}

	transactions.inUse[created.ID] = false
	if err := svc.Delete(context.Background(), "user-a", created.ID); err != nil {
		t.Fatalf("delete after release failed: %v", err)
	}
}

func TestListAllReturnsOnlyOwnCategories(t *testing.T) {
	svc := New(newCategoryRepoStub(), newTransactionRepoStub(), newLogger())

	if _, err := svc.Create(context.Background(), "user-a", "Food"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-b", "Rent"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	listed, err := svc.ListAll(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "Food" {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}
