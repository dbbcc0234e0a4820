// Package memory provides an in-memory implementation of the account
// store and ledger. It backs unit tests and the STORAGE_DRIVER=memory
// local-run mode; semantics mirror the postgres adapter, including
// all-or-nothing visibility of transfer writes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mazebank/mazebank-backend/internal/domain"
)

// Store implements domain.AccountRepository, domain.TransactionRepository
// and domain.TransferStore over mutex-guarded maps.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*domain.Account
	ledger   []*domain.Transaction
	refs     map[string]bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]*domain.Account),
		refs:     make(map[string]bool),
	}
}

// GetByID retrieves a copy of the account so callers cannot mutate
// internal state.
func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

// Create stores a new account, assigning the next free ID when the
// account carries none.
func (s *Store) Create(ctx context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.ID == 0 {
		s.nextID++
		account.ID = s.nextID
	} else if account.ID > s.nextID {
		s.nextID = account.ID
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

// List returns copies of all accounts ordered by ID.
func (s *Store) List(ctx context.Context) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		cp := *acc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListByAccount returns the most recent ledger records touching the
// account, newest first.
func (s *Store) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Transaction, 0, limit)
	for i := len(s.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.ledger[i]
		if rec.FromAccountID == accountID || rec.ToAccountID == accountID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// InTransaction runs fn against a staged view of the store. Writes are
// buffered and applied only when fn succeeds, so a failed transfer
// leaves every balance bit-for-bit unchanged.
func (s *Store) InTransaction(ctx context.Context, fn func(domain.TransferTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, balances: make(map[int64]decimal.Decimal)}
	if err := fn(tx); err != nil {
		return err
	}

	now := time.Now()
	for id, balance := range tx.balances {
		if acc, ok := s.accounts[id]; ok {
			acc.Balance = balance
			acc.UpdatedAt = now
		}
	}
	for _, rec := range tx.appended {
		cp := *rec
		s.ledger = append(s.ledger, &cp)
		if cp.Reference != "" {
			s.refs[cp.Reference] = true
		}
	}
	return nil
}

// memTx stages writes for one storage transaction. All methods run with
// the store mutex already held by InTransaction.
type memTx struct {
	store    *Store
	balances map[int64]decimal.Decimal
	appended []*domain.Transaction
}

func (t *memTx) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if balance, ok := t.balances[accountID]; ok {
		return balance, nil
	}
	acc, ok := t.store.accounts[accountID]
	if !ok || !acc.Active {
		return decimal.Zero, domain.ErrAccountNotFound
	}
	return acc.Balance, nil
}

func (t *memTx) SetBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	if _, ok := t.store.accounts[accountID]; !ok {
		return domain.ErrAccountNotFound
	}
	t.balances[accountID] = balance
	return nil
}

func (t *memTx) AppendTransaction(ctx context.Context, rec *domain.Transaction) error {
	t.appended = append(t.appended, rec)
	return nil
}

func (t *memTx) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	return t.store.refs[reference], nil
}
