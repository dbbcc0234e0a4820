// Package events publishes the outcome of asynchronously executed
// transfers so fire-and-forget submissions stay observable without
// forcing callers back onto the synchronous path.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome labels for TransferEvent.Status.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// TransferEvent is the JSON payload published after each async transfer
// attempt.
type TransferEvent struct {
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Status        string          `json:"status"`
	Reason        string          `json:"reason,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Publisher is the interface implemented by types that can publish
// transfer outcomes.
type Publisher interface {
	PublishTransferResult(ctx context.Context, event TransferEvent) error
	Close()
}

// NopPublisher is used when no broker is configured; every publish is a
// no-op.
type NopPublisher struct{}

func (NopPublisher) PublishTransferResult(context.Context, TransferEvent) error { return nil }

func (NopPublisher) Close() {}
