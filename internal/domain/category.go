package domain

import "time"

// Category labels transactions (e.g. "Groceries") and belongs to one user.
type Category struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}
