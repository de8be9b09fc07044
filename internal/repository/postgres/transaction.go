package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/FilipeTerra/MyFinance/internal/domain"
	"github.com/FilipeTerra/MyFinance/internal/repository"
)

const transactionColumns = `t.id, t.account_id, t.category_id, t.description, t.amount, t.type, t.date, t.created_at, a.name, c.name`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(&tx.ID, &tx.AccountID, &tx.CategoryID, &tx.Description, &tx.Amount, &tx.Type,
		&tx.Date, &tx.CreatedAt, &tx.AccountName, &tx.CategoryName)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreateTransaction inserts a transaction.
func (r *Repository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	const query = `INSERT INTO transactions (id, account_id, category_id, description, amount, type, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query, tx.ID, tx.AccountID, tx.CategoryID, tx.Description,
		tx.Amount, string(tx.Type), tx.Date, tx.CreatedAt)
	return err
}

// GetTransactionByID fetches a transaction enriched with its account and
// category names. Ownership is derived through the owning account.
func (r *Repository) GetTransactionByID(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		INNER JOIN accounts a ON a.id = t.account_id
		INNER JOIN categories c ON c.id = t.category_id
		WHERE t.id = $1 AND a.user_id = $2`
	tx, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

// ListTransactionsByAccount returns the account's transactions newest
// first, with record time as the tie-breaker. An account the user does
// not own yields an empty slice.
func (r *Repository) ListTransactionsByAccount(ctx context.Context, accountID, userID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		INNER JOIN accounts a ON a.id = t.account_id
		INNER JOIN categories c ON c.id = t.category_id
		WHERE t.account_id = $1 AND a.user_id = $2
		ORDER BY t.date DESC, t.created_at DESC`
	rows, err := r.pool.Query(ctx, query, accountID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// SearchTransactions applies the filter on top of the by-account listing:
// case-insensitive substring match on description, exact date and amount
// matches, then skip/take pagination. Ordering matches
// ListTransactionsByAccount exactly.
func (r *Repository) SearchTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + `
		FROM transactions t
		INNER JOIN accounts a ON a.id = t.account_id
		INNER JOIN categories c ON c.id = t.category_id
		WHERE t.account_id = $1 AND a.user_id = $2`)
	args := []any{filter.AccountID, userID}

	if text := strings.TrimSpace(filter.SearchText); text != "" {
		args = append(args, "%"+text+"%")
		fmt.Fprintf(&sb, " AND t.description ILIKE $%d", len(args))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		fmt.Fprintf(&sb, " AND t.date = $%d", len(args))
	}
	if filter.Amount != nil {
		args = append(args, *filter.Amount)
		fmt.Fprintf(&sb, " AND t.amount = $%d", len(args))
	}

	sb.WriteString(" ORDER BY t.date DESC, t.created_at DESC")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, (page-1)*pageSize)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// UpdateTransaction overwrites all mutable fields.
func (r *Repository) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	const query = `UPDATE transactions
		SET account_id = $2, category_id = $3, description = $4, amount = $5, type = $6, date = $7
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, tx.ID, tx.AccountID, tx.CategoryID, tx.Description,
		tx.Amount, string(tx.Type), tx.Date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction. Ownership must already be
// verified.
func (r *Repository) DeleteTransaction(ctx context.Context, transactionID string) error {
	const query = `DELETE FROM transactions WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, transactionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AccountHasTransactions reports whether any transaction references the
// account.
func (r *Repository) AccountHasTransactions(ctx context.Context, accountID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM transactions WHERE account_id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CategoryHasTransactions reports whether any transaction references the
// category.
func (r *Repository) CategoryHasTransactions(ctx context.Context, categoryID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, categoryID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// NetAmountsByAccount aggregates the net transaction effect (income adds,
// expense subtracts) per account for every account the user owns.
// Accounts without transactions are absent from the map.
func (r *Repository) NetAmountsByAccount(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	const query = `SELECT t.account_id,
			SUM(CASE WHEN t.type = 'Income' THEN t.amount ELSE -t.amount END)
		FROM transactions t
		INNER JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1
		GROUP BY t.account_id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nets := make(map[string]decimal.Decimal)
	for rows.Next() {
		var accountID string
		var net decimal.Decimal
		if err := rows.Scan(&accountID, &net); err != nil {
			return nil, err
		}
		nets[accountID] = net
	}
	return nets, rows.Err()
}

// NetAmountForAccount aggregates the net transaction effect for a single
// account. An account without transactions nets to zero.
func (r *Repository) NetAmountForAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(CASE WHEN type = 'Income' THEN amount ELSE -amount END), 0)
		FROM transactions WHERE account_id = $1`
	var net decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&net); err != nil {
		return decimal.Decimal{}, err
	}
	return net, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}
