package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a financial account. Values are stored by name.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCash       AccountType = "cash"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// ErrUnknownAccountType reports an unrecognized account type tag.
var ErrUnknownAccountType = fmt.Errorf("%w: unknown account type", ErrInvalidInput)

// ParseAccountType normalizes a caller-supplied account type tag.
func ParseAccountType(raw string) (AccountType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch AccountType(normalized) {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCash,
		AccountTypeCreditCard, AccountTypeInvestment, AccountTypeOther:
		return AccountType(normalized), nil
	}
	return "", ErrUnknownAccountType
}

// Account is a financial account owned by a single user. The initial
// balance is fixed at creation; the current balance is derived from the
// account's transactions at read time.
type Account struct {
	ID             string
	UserID         string
	Name           string
	Type           AccountType
	InitialBalance decimal.Decimal
	CreatedAt      time.Time
}
