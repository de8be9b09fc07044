package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType carries the direction of a transaction. Amounts are
// always stored as positive magnitudes; sign never encodes direction.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "Income"
	TransactionTypeExpense TransactionType = "Expense"
)

// ErrUnknownTransactionType reports an unrecognized transaction type.
var ErrUnknownTransactionType = fmt.Errorf("%w: unknown transaction type", ErrInvalidInput)

// ParseTransactionType normalizes a caller-supplied transaction type.
func ParseTransactionType(raw string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "income":
		return TransactionTypeIncome, nil
	case "expense":
		return TransactionTypeExpense, nil
	}
	return "", ErrUnknownTransactionType
}

// Transaction records a single movement of money on an account. Date is
// the caller-supplied occurrence date (UTC, date-only); CreatedAt is the
// server-stamped record time. AccountName and CategoryName are populated
// by joined reads for response enrichment.
type Transaction struct {
	ID           string
	AccountID    string
	CategoryID   string
	Description  string
	Amount       decimal.Decimal
	Type         TransactionType
	Date         time.Time
	CreatedAt    time.Time
	AccountName  string
	CategoryName string
}

// TransactionFilter narrows a transaction search. AccountID is mandatory
// and is checked against the owning user; the optional fields apply a
// case-insensitive substring match on the description and exact matches
// on date and amount. Page is 1-based.
type TransactionFilter struct {
	AccountID  string
	SearchText string
	Date       *time.Time
	Amount     *decimal.Decimal
	Page       int
	PageSize   int
}
