package service

import (
	"context"
	"errors"
	"testing"

	"nebulines/events"
	"nebulines/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordLedgerEntry_PublishesBalanceChange(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()

	eventID := TestEventID
	entry := &models.LedgerEntry{
		UserID:        TestUser1ID,
		Type:          models.TransactionTypeBetWin,
		Amount:        150,
		BalanceBefore: 50,
		BalanceAfter:  200,
		EventID:       &eventID,
	}

	m.LedgerRepo.On("Append", ctx, entry).Return(nil)
	m.EventPublisher.On("Publish", events.BalanceChangeEvent{
		UserID:          TestUser1ID,
		OldBalance:      50,
		NewBalance:      200,
		TransactionType: models.TransactionTypeBetWin,
		Amount:          150,
		EventID:         &eventID,
	}).Return()

	require.NoError(t, RecordLedgerEntry(ctx, m.UoW, entry))
	m.AssertAllExpectations(t)
}

func TestRecordLedgerEntry_RejectsBadEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry *models.LedgerEntry
	}{
		{"unknown type", &models.LedgerEntry{Type: "refund", Amount: 1, BalanceBefore: 0, BalanceAfter: 1}},
		{"negative amount", &models.LedgerEntry{Type: models.TransactionTypeBetLoss, Amount: -1}},
		{"balances do not match the amount", &models.LedgerEntry{Type: models.TransactionTypeDeposit, Amount: 10, BalanceBefore: 0, BalanceAfter: 5}},
		{"loss that moves the balance", &models.LedgerEntry{Type: models.TransactionTypeBetLoss, Amount: 10, BalanceBefore: 20, BalanceAfter: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTestMocks()

			err := RecordLedgerEntry(context.Background(), m.UoW, tt.entry)

			assert.Error(t, err)
			m.LedgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
			m.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
		})
	}
}

func TestDebitWithEntry_FillsBalances(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	m.ExpectAnyPublish()

	m.AccountRepo.On("Debit", ctx, TestUser1ID, int64(30)).Return(int64(70), nil)
	m.LedgerRepo.On("Append", ctx, mock.Anything).Return(nil)

	entry := &models.LedgerEntry{Type: models.TransactionTypeWithdraw}
	require.NoError(t, debitWithEntry(ctx, m.UoW, TestUser1ID, 30, entry))

	assert.Equal(t, TestUser1ID, entry.UserID)
	assert.Equal(t, int64(100), entry.BalanceBefore)
	assert.Equal(t, int64(70), entry.BalanceAfter)
	m.AssertAllExpectations(t)
}

func TestCreditWithEntry_PropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	storeErr := errors.New("deadlock")

	m.AccountRepo.On("Credit", ctx, TestUser1ID, int64(30)).Return(int64(0), storeErr)

	err := creditWithEntry(ctx, m.UoW, TestUser1ID, 30, &models.LedgerEntry{Type: models.TransactionTypeDeposit})

	assert.ErrorIs(t, err, storeErr)
	m.LedgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}
