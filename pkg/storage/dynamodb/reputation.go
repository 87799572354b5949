package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

// GetReputation retrieves a user's counters. A missing item reads as all zeros.
func (s *Store) GetReputation(ctx context.Context, userID string) (*models.Reputation, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Reputation),
		Key:       map[string]types.AttributeValue{"user_id": str(userID)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get reputation from DynamoDB: %w", err)
	}

	rep := models.Reputation{UserID: userID}
	if result.Item == nil {
		return &rep, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reputation: %w", err)
	}
	return &rep, nil
}

// reputationUpdate adds delta to the user's counters, creating the item on first use.
func (s *Store) reputationUpdate(delta storage.ReputationDelta) types.TransactWriteItem {
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:        aws.String(s.Tables.Reputation),
			Key:              map[string]types.AttributeValue{"user_id": str(delta.UserID)},
			UpdateExpression: aws.String("ADD bets_completed :completed, bets_failed :failed, callouts_ignored :ignored, vibe_score :vibe"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":completed": num(delta.BetsCompleted),
				":failed":    num(delta.BetsFailed),
				":ignored":   num(delta.CalloutsIgnored),
				":vibe":      num(delta.VibeScore),
			},
		},
	}
}
