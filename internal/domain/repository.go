package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id int64) (*Account, error)

	// Create creates a new account
	Create(ctx context.Context, account *Account) error

	// List retrieves all accounts ordered by ID
	List(ctx context.Context) ([]*Account, error)
}

// TransactionRepository defines the interface for reading the ledger
type TransactionRepository interface {
	// ListByAccount retrieves the most recent transactions touching the
	// given account, newest first. limit <= 0 applies a default.
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*Transaction, error)
}

// TransferTx is the set of operations available inside one atomic
// storage transaction. Either every write performed through it becomes
// visible on commit or none does.
type TransferTx interface {
	// GetBalance reads the current balance of an active account.
	// Returns ErrAccountNotFound when the account is missing or inactive.
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)

	// SetBalance rewrites the balance of an account.
	SetBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error

	// AppendTransaction appends one record to the ledger.
	AppendTransaction(ctx context.Context, tx *Transaction) error

	// ReferenceExists reports whether a committed ledger record already
	// carries the given idempotency reference.
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}

// TransferStore runs fn inside one atomic storage transaction. When fn
// returns an error the transaction is rolled back and that error is
// returned unchanged; commit failures surface as the store's own error.
type TransferStore interface {
	InTransaction(ctx context.Context, fn func(TransferTx) error) error
}
