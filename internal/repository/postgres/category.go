package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/FilipeTerra/MyFinance/internal/domain"
	"github.com/FilipeTerra/MyFinance/internal/repository"
)

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	const query = `INSERT INTO categories (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, category.ID, category.UserID, category.Name, category.CreatedAt)
	return err
}

// GetCategoryByID fetches a category scoped to its owner.
func (r *Repository) GetCategoryByID(ctx context.Context, categoryID, userID string) (*domain.Category, error) {
	const query = `SELECT id, user_id, name, created_at
		FROM categories WHERE id = $1 AND user_id = $2`
	row := r.pool.QueryRow(ctx, query, categoryID, userID)
	var c domain.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCategoriesByUser returns every category owned by the user.
func (r *Repository) ListCategoriesByUser(ctx context.Context, userID string) ([]domain.Category, error) {
	const query = `SELECT id, user_id, name, created_at
		FROM categories WHERE user_id = $1 ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory overwrites the category name.
func (r *Repository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	const query = `UPDATE categories SET name = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, category.ID, category.Name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category. Ownership and the in-use rule must
// already be verified.
func (r *Repository) DeleteCategory(ctx context.Context, categoryID string) error {
	const query = `DELETE FROM categories WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, categoryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
