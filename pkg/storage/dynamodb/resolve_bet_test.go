package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

func resolutionBatch(payouts int) storage.ResolutionBatch {
	now := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	batch := storage.ResolutionBatch{
		Bet:    models.Bet{BetID: "bet-1", Status: models.BetStatusActive, StakeCount: int64(payouts)},
		Status: models.BetStatusCompleted,
		Resolution: models.Resolution{
			ResolutionID: "11111111-2222-3333-4444-555555555555",
			BetID:        "bet-1",
			Outcome:      models.OutcomeYes,
			ResolvedBy:   "alice",
			ResolvedAt:   now,
		},
		Reputation: []storage.ReputationDelta{{UserID: "alice", BetsCompleted: 1, VibeScore: 10}},
	}
	for i := 0; i < payouts; i++ {
		user := string(rune('a' + i))
		batch.Changes = append(batch.Changes, storage.BalanceChange{
			UserID:          user,
			ExpectedVersion: 2,
			Amount:          30,
			EarnedDelta:     30,
			Transaction:     models.Transaction{TransactionID: "tx-" + user, UserID: user, Amount: 30, Type: models.TransactionTypePayout, CreatedAt: now},
		})
	}
	return batch
}

func TestResolveBet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		batch := resolutionBatch(2)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			items := in.TransactItems
			return len(items) == 7 &&
				*in.ClientRequestToken == batch.Resolution.ResolutionID &&
				*items[0].Update.TableName == "bets" &&
				*items[1].Put.TableName == "resolutions" &&
				*items[2].Update.TableName == "accounts" &&
				*items[3].Put.TableName == "transactions" &&
				*items[6].Update.TableName == "reputation"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		assert.NoError(t, store.ResolveBet(context.Background(), batch))
	})

	t.Run("Batch Too Large", func(t *testing.T) {
		store, _ := newTestStore(t)

		err := store.ResolveBet(context.Background(), resolutionBatch(50))
		assert.ErrorIs(t, err, storage.ErrBatchTooLarge)
	})

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "Already Resolved",
			err:  canceled(reason(reasonConditionalCheckFailed, models.Bet{BetID: "bet-1", Status: models.BetStatusExpired}), none(), none(), none(), none()),
			want: storage.ErrAlreadyResolved,
		},
		{
			name: "Stake Landed",
			err:  canceled(reason(reasonConditionalCheckFailed, models.Bet{BetID: "bet-1", Status: models.BetStatusActive, StakeCount: 2}), none(), none(), none(), none()),
			want: storage.ErrVersionConflict,
		},
		{
			name: "Bet Missing",
			err:  canceled(reason(reasonConditionalCheckFailed, nil), none(), none(), none(), none()),
			want: storage.ErrBetNotFound,
		},
		{
			name: "Resolution Exists",
			err:  canceled(none(), reason(reasonConditionalCheckFailed, nil), none(), none(), none()),
			want: storage.ErrAlreadyResolved,
		},
		{
			name: "Payee Balance Moved",
			err:  canceled(none(), none(), reason(reasonConditionalCheckFailed, models.Account{UserID: "a", Version: 3}), none(), none()),
			want: storage.ErrVersionConflict,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, mockClient := newTestStore(t)
			mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, tc.err)

			assert.ErrorIs(t, store.ResolveBet(context.Background(), resolutionBatch(1)), tc.want)
		})
	}
}

func TestGetResolution(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		res := resolutionBatch(0).Resolution
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: marshal(t, res)}, nil)

		got, err := store.GetResolution(context.Background(), "bet-1")
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeYes, got.Outcome)
		assert.True(t, res.ResolvedAt.Equal(got.ResolvedAt))
	})

	t.Run("Not Found", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, err := store.GetResolution(context.Background(), "bet-1")
		assert.ErrorIs(t, err, storage.ErrResolutionNotFound)
	})
}
