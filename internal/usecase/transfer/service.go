package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mazebank/mazebank-backend/internal/domain"
	"github.com/mazebank/mazebank-backend/internal/observability"
)

// Request describes one funds transfer. Immutable once constructed.
type Request struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
	Description   string
	// Reference is an optional caller-supplied idempotency key. When it
	// is non-empty and a committed ledger record already carries it, the
	// transfer is treated as a replay and applied exactly zero times.
	Reference string
}

// Validate checks the request before any lock is taken
func (r Request) Validate() error {
	if r.FromAccountID == r.ToAccountID {
		return fmt.Errorf("%w: source and destination accounts must differ", domain.ErrInvalidTransaction)
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidTransaction)
	}
	return nil
}

// errAlreadyApplied aborts the storage transaction of an idempotent
// replay without surfacing an error to the caller.
var errAlreadyApplied = errors.New("transfer already applied")

// Service moves money between two accounts such that the combined
// balance is invariant. Concurrent transfers touching overlapping
// accounts are serialized through the lock table, and the balance
// mutations plus the ledger append commit in one storage transaction.
type Service struct {
	store   domain.TransferStore
	locks   *LockTable
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a new transfer Service instance. metrics may be
// nil when no registry is wired (tests).
func NewService(store domain.TransferStore, locks *LockTable, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		locks:   locks,
		logger:  logger,
		metrics: metrics,
	}
}

// Transfer executes one funds transfer synchronously.
//
// Preconditions are checked before any lock is taken. Both account
// stripes are then held for the duration of one atomic storage
// transaction that reads both balances, checks funds, rewrites both
// balances and appends the COMPLETED ledger record. On any failure the
// storage transaction rolls back and both balances stay exactly as
// before the call.
//
// Errors are classified through the domain taxonomy:
// ErrInvalidTransaction, ErrInsufficientFunds and ErrStorageFailure.
func (s *Service) Transfer(ctx context.Context, req Request) error {
	if s.metrics != nil {
		s.metrics.TransfersTotal.Inc()
	}
	if err := req.Validate(); err != nil {
		if s.metrics != nil {
			s.metrics.TransfersFailed.Inc()
		}
		return err
	}

	start := time.Now()

	release := s.locks.LockPair(req.FromAccountID, req.ToAccountID)
	defer release()

	err := s.store.InTransaction(ctx, func(tx domain.TransferTx) error {
		return s.apply(ctx, tx, req)
	})

	switch {
	case err == nil:
		if s.metrics != nil {
			s.metrics.TransferLatency.Observe(time.Since(start).Seconds())
		}
		return nil
	case errors.Is(err, errAlreadyApplied):
		s.logger.Info("transfer reference already committed, replay is a no-op",
			"reference", req.Reference,
			"from_account_id", req.FromAccountID,
			"to_account_id", req.ToAccountID)
		return nil
	case errors.Is(err, domain.ErrInvalidTransaction),
		errors.Is(err, domain.ErrInsufficientFunds):
		if s.metrics != nil {
			s.metrics.TransfersFailed.Inc()
		}
		return err
	default:
		if s.metrics != nil {
			s.metrics.TransfersFailed.Inc()
		}
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
}

// apply runs inside the storage transaction with both stripes held.
func (s *Service) apply(ctx context.Context, tx domain.TransferTx, req Request) error {
	if req.Reference != "" {
		seen, err := tx.ReferenceExists(ctx, req.Reference)
		if err != nil {
			return err
		}
		if seen {
			return errAlreadyApplied
		}
	}

	fromBalance, err := tx.GetBalance(ctx, req.FromAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf("%w: source account %d not found", domain.ErrInvalidTransaction, req.FromAccountID)
		}
		return err
	}

	toBalance, err := tx.GetBalance(ctx, req.ToAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf("%w: destination account %d not found", domain.ErrInvalidTransaction, req.ToAccountID)
		}
		return err
	}

	newFromBalance := fromBalance.Sub(req.Amount)
	if newFromBalance.IsNegative() {
		return domain.ErrInsufficientFunds
	}

	if err := tx.SetBalance(ctx, req.FromAccountID, newFromBalance); err != nil {
		return err
	}
	if err := tx.SetBalance(ctx, req.ToAccountID, toBalance.Add(req.Amount)); err != nil {
		return err
	}

	record := &domain.Transaction{
		ID:            uuid.New(),
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Type:          domain.TransactionTypeTransfer,
		Amount:        req.Amount,
		Description:   req.Description,
		Reference:     req.Reference,
		Status:        domain.TransactionStatusCompleted,
		CreatedAt:     time.Now(),
	}
	if err := record.Validate(); err != nil {
		return err
	}

	return tx.AppendTransaction(ctx, record)
}
