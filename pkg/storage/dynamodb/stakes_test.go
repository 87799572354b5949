package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

func TestPlaceStake(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	placement := storage.StakePlacement{
		Stake:           models.Stake{ParticipantID: "p-1", BetID: "bet-1", UserID: "bob", Side: models.SideYes, Amount: 20, CreatedAt: now},
		MaxParticipants: 40,
		Now:             now,
		Debit: storage.BalanceChange{
			UserID:          "bob",
			ExpectedVersion: 2,
			Amount:          -20,
			SpentDelta:      20,
			Transaction:     models.Transaction{TransactionID: "tx-1", UserID: "bob", Amount: -20, BalanceAfter: 80, Type: models.TransactionTypeStake, ReferenceID: "bet-1", CreatedAt: now},
		},
	}

	t.Run("Success", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			items := in.TransactItems
			return len(items) == 4 &&
				*items[0].Update.TableName == "bets" &&
				items[0].Update.ExpressionAttributeValues[":max"].(*types.AttributeValueMemberN).Value == "40" &&
				*items[1].Put.TableName == "stakes" &&
				*items[2].Update.TableName == "accounts" &&
				*items[3].Put.TableName == "transactions"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		assert.NoError(t, store.PlaceStake(context.Background(), placement))
	})

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "Bet Closed",
			err:  canceled(reason(reasonConditionalCheckFailed, nil), none(), none(), none()),
			want: storage.ErrBetNotActive,
		},
		{
			name: "Bet Closed And Already Staked",
			err:  canceled(reason(reasonConditionalCheckFailed, nil), reason(reasonConditionalCheckFailed, nil), none(), none()),
			want: storage.ErrBetNotActive,
		},
		{
			name: "Already Staked",
			err:  canceled(none(), reason(reasonConditionalCheckFailed, nil), none(), none()),
			want: storage.ErrAlreadyStaked,
		},
		{
			name: "Insufficient Funds",
			err: canceled(none(), none(),
				reason(reasonConditionalCheckFailed, models.Account{UserID: "bob", AuraBalance: 10, Version: 2}), none()),
			want: storage.ErrInsufficientFunds,
		},
		{
			name: "Account Moved",
			err: canceled(none(), none(),
				reason(reasonConditionalCheckFailed, models.Account{UserID: "bob", AuraBalance: 100, Version: 3}), none()),
			want: storage.ErrVersionConflict,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, mockClient := newTestStore(t)
			mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, tc.err)

			assert.ErrorIs(t, store.PlaceStake(context.Background(), placement), tc.want)
		})
	}
}

func TestGetStake(t *testing.T) {
	t.Run("Not Found", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, err := store.GetStake(context.Background(), "bet-1", "bob")
		assert.ErrorIs(t, err, storage.ErrStakeNotFound)
	})
}

func TestListStakes(t *testing.T) {
	store, mockClient := newTestStore(t)
	t0 := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	// DynamoDB returns stakes ordered by the user_id sort key.
	page1 := []map[string]types.AttributeValue{
		marshal(t, models.Stake{BetID: "bet-1", UserID: "alice", Amount: 5, CreatedAt: t0.Add(2 * time.Second)}),
	}
	page2 := []map[string]types.AttributeValue{
		marshal(t, models.Stake{BetID: "bet-1", UserID: "bob", Amount: 7, CreatedAt: t0}),
	}
	lastKey := map[string]types.AttributeValue{"bet_id": str("bet-1"), "user_id": str("alice")}
	mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{Items: page1, LastEvaluatedKey: lastKey}, nil).Once()
	mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{Items: page2}, nil).Once()

	stakes, err := store.ListStakes(context.Background(), "bet-1")
	require.NoError(t, err)
	require.Len(t, stakes, 2)
	assert.Equal(t, "bob", stakes[0].UserID)
	assert.Equal(t, "alice", stakes[1].UserID)
}
