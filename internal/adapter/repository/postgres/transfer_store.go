package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mazebank/mazebank-backend/internal/domain"
)

// transferStore implements domain.TransferStore. Row-level isolation is
// provided by the database transaction; serialization of the
// read-then-write sequence across two rows is the caller's lock table,
// not this layer.
type transferStore struct {
	db *DB
}

// NewTransferStore creates a new transfer store
func NewTransferStore(db *DB) domain.TransferStore {
	return &transferStore{db: db}
}

// InTransaction runs fn inside one database transaction. fn errors roll
// the transaction back and pass through unchanged; begin/commit failures
// surface wrapped.
func (s *transferStore) InTransaction(ctx context.Context, fn func(domain.TransferTx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := fn(&transferTx{tx: dbTx}); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// transferTx implements domain.TransferTx over one *sql.Tx
type transferTx struct {
	tx *sql.Tx
}

// GetBalance reads the balance of an active account.
func (t *transferTx) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	query := `SELECT balance FROM accounts WHERE account_id = $1 AND is_active = TRUE`

	var balanceStr string
	err := t.tx.QueryRowContext(ctx, query, accountID).Scan(&balanceStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: account %d", domain.ErrAccountNotFound, accountID)
		}
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance: %w", err)
	}
	return balance, nil
}

// SetBalance rewrites the balance of an account.
func (t *transferTx) SetBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	query := `UPDATE accounts SET balance = $1, updated_at = CURRENT_TIMESTAMP WHERE account_id = $2`

	res, err := t.tx.ExecContext(ctx, query, balance.String(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: account %d", domain.ErrAccountNotFound, accountID)
	}
	return nil
}

// AppendTransaction appends one ledger record.
func (t *transferTx) AppendTransaction(ctx context.Context, rec *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, from_account_id, to_account_id, transaction_type, amount, description, reference, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var reference interface{}
	if rec.Reference != "" {
		reference = rec.Reference
	}

	_, err := t.tx.ExecContext(ctx, query,
		rec.ID,
		rec.FromAccountID,
		rec.ToAccountID,
		string(rec.Type),
		rec.Amount.String(),
		rec.Description,
		reference,
		string(rec.Status),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ReferenceExists reports whether a committed record carries the key.
func (t *transferTx) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE reference = $1)`

	var exists bool
	if err := t.tx.QueryRowContext(ctx, query, reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reference: %w", err)
	}
	return exists, nil
}
