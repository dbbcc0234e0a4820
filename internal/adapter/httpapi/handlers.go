package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mazebank/mazebank-backend/internal/domain"
	"github.com/mazebank/mazebank-backend/internal/usecase/processor"
	"github.com/mazebank/mazebank-backend/internal/usecase/transfer"
)

// TransferExecutor runs a transfer synchronously.
type TransferExecutor interface {
	Transfer(ctx context.Context, req transfer.Request) error
}

// TransferSubmitter enqueues a transfer for background execution.
type TransferSubmitter interface {
	Submit(req transfer.Request) error
}

// Handlers holds the use cases the HTTP layer delegates to.
type Handlers struct {
	transfers TransferExecutor
	queue     TransferSubmitter
	accounts  domain.AccountRepository
	ledger    domain.TransactionRepository
	logger    *slog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(
	transfers TransferExecutor,
	queue TransferSubmitter,
	accounts domain.AccountRepository,
	ledger domain.TransactionRepository,
	logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		transfers: transfers,
		queue:     queue,
		accounts:  accounts,
		ledger:    ledger,
		logger:    logger,
	}
}

type transferRequestBody struct {
	FromAccountID int64  `json:"from_account_id"`
	ToAccountID   int64  `json:"to_account_id"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	Reference     string `json:"reference"`
	// Async enqueues the transfer instead of executing it in the request.
	// The response then only acknowledges acceptance, never the outcome.
	Async bool `json:"async"`
}

type transferResponse struct {
	Status string `json:"status"`
}

type accountResponse struct {
	AccountID  int64  `json:"account_id"`
	Number     string `json:"account_number"`
	HolderName string `json:"holder_name"`
	Balance    string `json:"balance"`
	Active     bool   `json:"active"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	FromAccountID int64     `json:"from_account_id"`
	ToAccountID   int64     `json:"to_account_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Description   string    `json:"description,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateTransfer handles POST /api/v1/transfers
func (h *Handlers) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var body transferRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid amount format")
		return
	}

	req := transfer.Request{
		FromAccountID: body.FromAccountID,
		ToAccountID:   body.ToAccountID,
		Amount:        amount,
		Description:   body.Description,
		Reference:     body.Reference,
	}

	if body.Async {
		if err := h.queue.Submit(req); err != nil {
			if errors.Is(err, processor.ErrProcessorStopped) {
				h.writeError(w, http.StatusServiceUnavailable, "transfer processor is stopped")
				return
			}
			h.logger.Error("failed to enqueue transfer", "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to enqueue transfer")
			return
		}
		h.writeJSON(w, http.StatusAccepted, transferResponse{Status: "queued"})
		return
	}

	if err := h.transfers.Transfer(r.Context(), req); err != nil {
		h.writeTransferError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, transferResponse{Status: "completed"})
}

// GetAccount handles GET /api/v1/accounts/{accountID}
func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			h.writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.Error("failed to load account", "account_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}

	h.writeJSON(w, http.StatusOK, accountResponse{
		AccountID:  account.ID,
		Number:     account.Number,
		HolderName: account.HolderName,
		Balance:    account.Balance.String(),
		Active:     account.Active,
	})
}

// ListAccountTransactions handles GET /api/v1/accounts/{accountID}/transactions
func (h *Handlers) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.ledger.ListByAccount(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("failed to list transactions", "account_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	out := make([]transactionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, transactionResponse{
			ID:            rec.ID.String(),
			FromAccountID: rec.FromAccountID,
			ToAccountID:   rec.ToAccountID,
			Type:          string(rec.Type),
			Amount:        rec.Amount.String(),
			Description:   rec.Description,
			Reference:     rec.Reference,
			Status:        string(rec.Status),
			CreatedAt:     rec.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "accountID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid account id")
		return 0, false
	}
	return id, true
}

// writeTransferError maps the engine's error taxonomy onto status codes.
func (h *Handlers) writeTransferError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTransaction):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		h.writeError(w, http.StatusConflict, "insufficient funds")
	case errors.Is(err, domain.ErrStorageFailure):
		h.logger.Error("transfer storage failure", "error", err)
		h.writeError(w, http.StatusBadGateway, "transfer could not be committed")
	default:
		h.logger.Error("transfer failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "transfer failed")
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
