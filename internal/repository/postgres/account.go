package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/FilipeTerra/MyFinance/internal/domain"
	"github.com/FilipeTerra/MyFinance/internal/repository"
)

// CreateAccount inserts an account.
func (r *Repository) CreateAccount(ctx context.Context, account *domain.Account) error {
	const query = `INSERT INTO accounts (id, user_id, name, type, initial_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, account.ID, account.UserID, account.Name, string(account.Type), account.InitialBalance, account.CreatedAt)
	return err
}

// GetAccountByID fetches an account scoped to its owner. A foreign owner
// is indistinguishable from an absent row.
func (r *Repository) GetAccountByID(ctx context.Context, accountID, userID string) (*domain.Account, error) {
	const query = `SELECT id, user_id, name, type, initial_balance, created_at
		FROM accounts WHERE id = $1 AND user_id = $2`
	row := r.pool.QueryRow(ctx, query, accountID, userID)
	var a domain.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.InitialBalance, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListAccountsByUser returns every account owned by the user.
func (r *Repository) ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	const query = `SELECT id, user_id, name, type, initial_balance, created_at
		FROM accounts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.InitialBalance, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount overwrites the mutable fields. The initial balance is
// deliberately excluded: it is fixed at creation.
func (r *Repository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	const query = `UPDATE accounts SET name = $2, type = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, account.ID, account.Name, string(account.Type))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account. Ownership must already be verified.
func (r *Repository) DeleteAccount(ctx context.Context, accountID string) error {
	const query = `DELETE FROM accounts WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
