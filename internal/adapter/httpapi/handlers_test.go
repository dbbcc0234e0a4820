package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mazebank/mazebank-backend/internal/domain"
	"github.com/mazebank/mazebank-backend/internal/usecase/processor"
	"github.com/mazebank/mazebank-backend/internal/usecase/transfer"
)

// MockTransferExecutor is a mock implementation of TransferExecutor for testing
type MockTransferExecutor struct {
	mock.Mock
}

func (m *MockTransferExecutor) Transfer(ctx context.Context, req transfer.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockTransferSubmitter is a mock implementation of TransferSubmitter for testing
type MockTransferSubmitter struct {
	mock.Mock
}

func (m *MockTransferSubmitter) Submit(req transfer.Request) error {
	args := m.Called(req)
	return args.Error(0)
}

// MockAccountRepository is a mock implementation of domain.AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*domain.Transaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

type fixture struct {
	executor  *MockTransferExecutor
	submitter *MockTransferSubmitter
	accounts  *MockAccountRepository
	ledger    *MockTransactionRepository
	router    http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		executor:  new(MockTransferExecutor),
		submitter: new(MockTransferSubmitter),
		accounts:  new(MockAccountRepository),
		ledger:    new(MockTransactionRepository),
	}
	f.router = Routes(NewHandlers(f.executor, f.submitter, f.accounts, f.ledger, nil))
	return f
}

func (f *fixture) postTransfer(t *testing.T, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateTransfer_Success(t *testing.T) {
	f := newFixture()
	f.executor.On("Transfer", mock.Anything, mock.MatchedBy(func(req transfer.Request) bool {
		return req.FromAccountID == 1 && req.ToAccountID == 2 && req.Amount.Equal(decimal.NewFromFloat(100.50))
	})).Return(nil)

	rec := f.postTransfer(t, map[string]interface{}{
		"from_account_id": 1,
		"to_account_id":   2,
		"amount":          "100.50",
		"description":     "rent",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	f.executor.AssertExpectations(t)
}

func TestCreateTransfer_InvalidAmountFormat(t *testing.T) {
	f := newFixture()

	rec := f.postTransfer(t, map[string]interface{}{
		"from_account_id": 1,
		"to_account_id":   2,
		"amount":          "not-a-number",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.executor.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
}

func TestCreateTransfer_InvalidTransaction(t *testing.T) {
	f := newFixture()
	f.executor.On("Transfer", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: source and destination accounts must differ", domain.ErrInvalidTransaction))

	rec := f.postTransfer(t, map[string]interface{}{
		"from_account_id": 1,
		"to_account_id":   1,
		"amount":          "10",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTransfer_InsufficientFunds(t *testing.T) {
	f := newFixture()
	f.executor.On("Transfer", mock.Anything, mock.Anything).Return(domain.ErrInsufficientFunds)

	rec := f.postTransfer(t, map[string]interface{}{
		"from_account_id": 1,
		"to_account_id":   2,
		"amount":          "1000",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateTransfer_StorageFailure(t *testing.T) {
	f := newFixture()
	f.executor.On("Transfer", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: connection lost", domain.ErrStorageFailure))

	rec := f.postTransfer(t, map[string]interface{}{
		"from_account_id": 1,
		"to_account_id":   2,
		"amount":          "10",
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCreateTransfer_AsyncQueued(t *testing.T) {
	f := newFixture()
	f.submitter.On("Submit", mock.MatchedBy(func(req transfer.Request) bool {
		return req.FromAccountID == 1 && req.ToAccountID == 2
	})).Return(nil)

	rec := f.postTransfer(t, map[string]interface{}{
		"from_account_id": 1,
		"to_account_id":   2,
		"amount":          "20",
		"async":           true,
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	f.executor.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
	f.submitter.AssertExpectations(t)
}

func TestCreateTransfer_AsyncRejectedWhenStopped(t *testing.T) {
	f := newFixture()
	f.submitter.On("Submit", mock.Anything).Return(processor.ErrProcessorStopped)

	rec := f.postTransfer(t, map[string]interface{}{
		"from_account_id": 1,
		"to_account_id":   2,
		"amount":          "20",
		"async":           true,
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetAccount_Success(t *testing.T) {
	f := newFixture()
	f.accounts.On("GetByID", mock.Anything, int64(5)).Return(&domain.Account{
		ID:      5,
		Number:  "ACC-1005",
		Balance: decimal.NewFromFloat(400.00),
		Active:  true,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/5", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body accountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(5), body.AccountID)
	balance, err := decimal.NewFromString(body.Balance)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(400)))
}

func TestGetAccount_NotFound(t *testing.T) {
	f := newFixture()
	f.accounts.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrAccountNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/99", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAccount_BadID(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/abc", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAccountTransactions(t *testing.T) {
	f := newFixture()
	f.ledger.On("ListByAccount", mock.Anything, int64(1), 5).Return([]*domain.Transaction{
		{
			ID:            uuid.New(),
			FromAccountID: 1,
			ToAccountID:   2,
			Type:          domain.TransactionTypeTransfer,
			Amount:        decimal.NewFromInt(100),
			Status:        domain.TransactionStatusCompleted,
			CreatedAt:     time.Now(),
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1/transactions?limit=5", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "TRANSFER", body[0].Type)
	assert.Equal(t, "COMPLETED", body[0].Status)
}
