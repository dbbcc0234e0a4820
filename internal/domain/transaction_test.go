package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validRecord() *Transaction {
	return &Transaction{
		ID:            uuid.New(),
		FromAccountID: 1,
		ToAccountID:   2,
		Type:          TransactionTypeTransfer,
		Amount:        decimal.NewFromInt(100),
		Description:   "rent",
		Status:        TransactionStatusCompleted,
	}
}

func TestTransactionValidate_Valid(t *testing.T) {
	assert.NoError(t, validRecord().Validate())
}

func TestTransactionValidate_SameAccount(t *testing.T) {
	rec := validRecord()
	rec.ToAccountID = rec.FromAccountID

	err := rec.Validate()

	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestTransactionValidate_NonPositiveAmount(t *testing.T) {
	rec := validRecord()
	rec.Amount = decimal.Zero
	assert.ErrorIs(t, rec.Validate(), ErrInvalidTransaction)

	rec.Amount = decimal.NewFromInt(-5)
	assert.ErrorIs(t, rec.Validate(), ErrInvalidTransaction)
}

func TestTransactionValidate_UnsupportedType(t *testing.T) {
	rec := validRecord()
	rec.Type = TransactionType("WITHDRAWAL")

	assert.ErrorIs(t, rec.Validate(), ErrInvalidTransaction)
}

func TestAccountValidate(t *testing.T) {
	acc := &Account{Number: "ACC-1001", Balance: decimal.NewFromInt(500)}
	assert.NoError(t, acc.Validate())

	acc.Number = ""
	assert.Error(t, acc.Validate())

	acc.Number = "ACC-1001"
	acc.Balance = decimal.NewFromInt(-1)
	assert.Error(t, acc.Validate())
}
