package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a customer account as the transfer engine sees it.
// The engine only reads and conditionally rewrites Balance; ownership of
// every other field rests with the surrounding account management code.
type Account struct {
	ID         int64
	Number     string
	HolderName string
	Balance    decimal.Decimal
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.Number == "" {
		return errors.New("account number cannot be empty")
	}
	if a.Balance.IsNegative() {
		return errors.New("account balance cannot be negative")
	}
	return nil
}
