package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/FilipeTerra/MyFinance/internal/domain"
	"github.com/FilipeTerra/MyFinance/internal/repository"
)

// Service orchestrates category management.
type Service struct {
	categories   repository.CategoryRepository
	transactions repository.TransactionRepository
	logger       *slog.Logger
}

// New returns a category service.
func New(categories repository.CategoryRepository, transactions repository.TransactionRepository, logger *slog.Logger) Service {
	return Service{categories: categories, transactions: transactions, logger: logger}
}

var (
	// ErrInUse blocks deleting a category that transactions still
	// reference.
	ErrInUse = errors.New("category has associated transactions")

	errNameRequired = fmt.Errorf("%w: category name is required", domain.ErrInvalidInput)
)

// Category is the response shape.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Create registers a new category owned by the user.
func (s Service) Create(ctx context.Context, userID, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errNameRequired
	}
	category := &domain.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.logger.Info("category created", "category_id", category.ID, "user_id", userID)
	return mapCategory(category), nil
}

// Get returns a single category. A foreign owner's category is reported
// as not found.
func (s Service) Get(ctx context.Context, userID, categoryID string) (*Category, error) {
	category, err := s.categories.GetCategoryByID(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}
	return mapCategory(category), nil
}

// ListAll returns every category owned by the user.
func (s Service) ListAll(ctx context.Context, userID string) ([]Category, error) {
	categories, err := s.categories.ListCategoriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]Category, 0, len(categories))
	for i := range categories {
		result = append(result, *mapCategory(&categories[i]))
	}
	return result, nil
}

// Update overwrites the category name.
func (s Service) Update(ctx context.Context, userID, categoryID, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errNameRequired
	}
	category, err := s.categories.GetCategoryByID(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.categories.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.logger.Info("category updated", "category_id", category.ID, "user_id", userID)
	return mapCategory(category), nil
}

// Delete removes a category that no transaction references.
func (s Service) Delete(ctx context.Context, userID, categoryID string) error {
	category, err := s.categories.GetCategoryByID(ctx, categoryID, userID)
	if err != nil {
		return err
	}
	inUse, err := s.transactions.CategoryHasTransactions(ctx, category.ID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrInUse
	}
	if err := s.categories.DeleteCategory(ctx, category.ID); err != nil {
		return err
	}
	s.logger.Info("category deleted", "category_id", category.ID, "user_id", userID)
	return nil
}

func mapCategory(category *domain.Category) *Category {
	return &Category{ID: category.ID, Name: category.Name, CreatedAt: category.CreatedAt}
}
