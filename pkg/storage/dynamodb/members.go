package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IsUserInChat reports whether the chat service registered userID in chatID.
func (s *Store) IsUserInChat(ctx context.Context, userID, chatID string) (bool, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.ChatMembers),
		Key: map[string]types.AttributeValue{
			"chat_id": str(chatID),
			"user_id": str(userID),
		},
		ProjectionExpression: aws.String("user_id"),
	})
	if err != nil {
		return false, fmt.Errorf("failed to get chat membership from DynamoDB: %w", err)
	}
	return result.Item != nil, nil
}
