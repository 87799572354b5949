package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

// CreateBet stores a new bet. When fee is set the creator is charged in the same transaction.
func (s *Store) CreateBet(ctx context.Context, bet *models.Bet, fee *storage.BalanceChange) error {
	betAV, err := attributevalue.MarshalMap(bet)
	if err != nil {
		return fmt.Errorf("failed to marshal bet: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Bets),
				Item:                betAV,
				ConditionExpression: aws.String("attribute_not_exists(bet_id)"),
			},
		},
	}
	if fee != nil {
		feeItems, err := s.balanceChangeItems(*fee)
		if err != nil {
			return err
		}
		items = append(items, feeItems...)
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if c, ok := asCancellation(err); ok {
			if c.failed(0) {
				return fmt.Errorf("bet %s already exists", bet.BetID)
			}
			if fee != nil {
				if mapped := c.changeFailure(1, *fee); mapped != nil {
					return mapped
				}
			}
			if c.conflicted() {
				return storage.ErrVersionConflict
			}
		}
		return fmt.Errorf("failed to create bet: %w", err)
	}
	return nil
}

// GetBet retrieves a bet by its ID.
func (s *Store) GetBet(ctx context.Context, betID string) (*models.Bet, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Bets),
		Key:            map[string]types.AttributeValue{"bet_id": str(betID)},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get bet from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrBetNotFound
	}

	var bet models.Bet
	if err := attributevalue.UnmarshalMap(result.Item, &bet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bet: %w", err)
	}
	return &bet, nil
}

// ListBetsByChat retrieves a chat's bets newest first. A status filter is applied after the
// key condition, so pages are read until limit bets match.
func (s *Store) ListBetsByChat(ctx context.Context, chatID string, status *models.BetStatus, limit int32) ([]models.Bet, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Bets),
		IndexName:              aws.String(chatCreatedAtIndex),
		KeyConditionExpression: aws.String("chat_id = :chatID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":chatID": str(chatID),
		},
		ScanIndexForward: aws.Bool(false),
	}
	if status != nil {
		input.FilterExpression = aws.String("#status = :status")
		input.ExpressionAttributeNames = map[string]string{"#status": "status"}
		input.ExpressionAttributeValues[":status"] = str(string(*status))
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	items, err := s.queryItems(ctx, input, int(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query bets by chat: %w", err)
	}

	var bets []models.Bet
	if err := attributevalue.UnmarshalListOfMaps(items, &bets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bets: %w", err)
	}
	return bets, nil
}

// ListExpiredBets retrieves active bets whose deadline is before now.
func (s *Store) ListExpiredBets(ctx context.Context, now time.Time) ([]models.Bet, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Bets),
		IndexName:              aws.String(statusDeadlineIndex),
		KeyConditionExpression: aws.String("#status = :active AND deadline < :now"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active": str(string(models.BetStatusActive)),
			":now":    num(now.Unix()),
		},
	}

	items, err := s.queryItems(ctx, input, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query for expired bets: %w", err)
	}

	var bets []models.Bet
	if err := attributevalue.UnmarshalListOfMaps(items, &bets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal expired bets: %w", err)
	}
	return bets, nil
}
