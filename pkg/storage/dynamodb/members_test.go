package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chris/aura-wagers/pkg/models"
)

func TestIsUserInChat(t *testing.T) {
	t.Run("Member", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		mockClient.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return *in.TableName == "chat_members"
		})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{"user_id": str("bob")}}, nil)

		ok, err := store.IsUserInChat(context.Background(), "bob", "chat-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Not Member", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		ok, err := store.IsUserInChat(context.Background(), "eve", "chat-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGetReputation(t *testing.T) {
	t.Run("Unknown User", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		rep, err := store.GetReputation(context.Background(), "bob")
		require.NoError(t, err)
		assert.Equal(t, models.Reputation{UserID: "bob"}, *rep)
	})

	t.Run("Existing", func(t *testing.T) {
		store, mockClient := newTestStore(t)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
			"user_id":          str("bob"),
			"callouts_ignored": num(2),
			"vibe_score":       num(-30),
		}}, nil)

		rep, err := store.GetReputation(context.Background(), "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(2), rep.CalloutsIgnored)
		assert.Equal(t, int64(-30), rep.VibeScore)
	})
}

func TestGetAllConnections(t *testing.T) {
	store, mockClient := newTestStore(t)
	mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil && *in.IndexName == connectionsIndex
	})).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{{"connection_id": str("c1")}},
		LastEvaluatedKey: map[string]types.AttributeValue{"connection_id": str("c1")},
	}, nil).Once()
	mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		{"connection_id": str("c2")},
	}}, nil).Once()

	ids, err := store.GetAllConnections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)
}

func TestAddConnection(t *testing.T) {
	store, mockClient := newTestStore(t)
	mockClient.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		expires, ok := in.Item["expires_at"].(*types.AttributeValueMemberN)
		return ok && expires.Value != "" && in.Item["pk"].(*types.AttributeValueMemberS).Value == connectionsPK
	})).Return(&dynamodb.PutItemOutput{}, nil)

	require.NoError(t, store.AddConnection(context.Background(), "c1"))
}
