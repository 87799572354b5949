package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

func TestCreateProof(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	proof := &models.Proof{ProofID: "pr-1", BetID: "bet-1", UserID: "alice", MediaType: models.MediaTypePhoto, MediaURL: "u", MediaKey: "k", CreatedAt: now}

	t.Run("Success", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			return *in.TransactItems[0].ConditionCheck.TableName == "bets" &&
				*in.TransactItems[1].Put.TableName == "proofs"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		assert.NoError(t, store.CreateProof(context.Background(), proof, now))
	})

	t.Run("Bet Closed", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, canceled(reason(reasonConditionalCheckFailed, nil), none()))

		assert.ErrorIs(t, store.CreateProof(context.Background(), proof, now), storage.ErrBetNotActive)
	})
}

func TestDeleteProof(t *testing.T) {
	proof := &models.Proof{ProofID: "pr-1", BetID: "bet-1", UserID: "alice"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "Bet Resolved", err: canceled(reason(reasonConditionalCheckFailed, nil), none()), want: storage.ErrBetNotActive},
		{name: "Already Gone", err: canceled(none(), reason(reasonConditionalCheckFailed, nil)), want: storage.ErrProofNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, mockClient := newTestStore(t)
			mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, tc.err)

			assert.ErrorIs(t, store.DeleteProof(context.Background(), proof), tc.want)
		})
	}
}

func TestGetProofNotFound(t *testing.T) {
	store, mockClient := newTestStore(t)
	mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := store.GetProof(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrProofNotFound)
}
