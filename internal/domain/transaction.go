package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of ledger movement
type TransactionType string

const (
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// TransactionStatus represents the final state of a ledger record
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

// Transaction is one append-only ledger record. It is created exactly
// once per committed transfer and never mutated afterward.
type Transaction struct {
	ID            uuid.UUID
	FromAccountID int64
	ToAccountID   int64
	Type          TransactionType
	Amount        decimal.Decimal // always positive
	Description   string
	Reference     string // optional caller-supplied idempotency key
	Status        TransactionStatus
	CreatedAt     time.Time
}

// Validate ensures the record adheres to domain rules before it is
// appended to the ledger.
func (t *Transaction) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return fmt.Errorf("%w: source and destination accounts must differ", ErrInvalidTransaction)
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	if t.Type != TransactionTypeTransfer {
		return fmt.Errorf("%w: unsupported transaction type %q", ErrInvalidTransaction, t.Type)
	}
	return nil
}
