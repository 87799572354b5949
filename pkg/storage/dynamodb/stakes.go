package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

// PlaceStake atomically performs three writes:
//  1. bumps the bet's stake_count while it is active, before its deadline and below the cap
//  2. inserts the stake, keyed by (bet_id, user_id)
//  3. debits the staker and records the stake transaction
func (s *Store) PlaceStake(ctx context.Context, p storage.StakePlacement) error {
	stakeAV, err := attributevalue.MarshalMap(p.Stake)
	if err != nil {
		return fmt.Errorf("failed to marshal stake: %w", err)
	}
	nowAV, err := attributevalue.Marshal(p.Now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for stake: %w", err)
	}
	debitItems, err := s.balanceChangeItems(p.Debit)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Claim a participant slot on the bet.
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Bets),
				Key:                 map[string]types.AttributeValue{"bet_id": str(p.Stake.BetID)},
				UpdateExpression:    aws.String("SET stake_count = stake_count + :inc, updated_at = :now"),
				ConditionExpression: aws.String("#status = :active AND deadline >= :now_unix AND stake_count < :max"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":inc":      num(1),
					":now":      nowAV,
					":active":   str(string(models.BetStatusActive)),
					":now_unix": num(p.Now.Unix()),
					":max":      num(p.MaxParticipants),
				},
			},
		},
		{
			// Operation 2: Insert the stake. One per user per bet.
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Stakes),
				Item:                stakeAV,
				ConditionExpression: aws.String("attribute_not_exists(bet_id)"),
			},
		},
	}
	// Operations 3 and 4: Debit the staker.
	items = append(items, debitItems...)

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if c, ok := asCancellation(err); ok {
			switch {
			case c.failed(0):
				return storage.ErrBetNotActive
			case c.failed(1):
				return storage.ErrAlreadyStaked
			}
			if mapped := c.changeFailure(2, p.Debit); mapped != nil {
				return mapped
			}
			if c.conflicted() {
				return storage.ErrVersionConflict
			}
		}
		return fmt.Errorf("failed to place stake: %w", err)
	}
	return nil
}

// GetStake retrieves a user's stake on a bet.
func (s *Store) GetStake(ctx context.Context, betID, userID string) (*models.Stake, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Stakes),
		Key: map[string]types.AttributeValue{
			"bet_id":  str(betID),
			"user_id": str(userID),
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get stake from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrStakeNotFound
	}

	var stake models.Stake
	if err := attributevalue.UnmarshalMap(result.Item, &stake); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stake: %w", err)
	}
	return &stake, nil
}

// ListStakes retrieves every stake on a bet in placement order.
func (s *Store) ListStakes(ctx context.Context, betID string) ([]models.Stake, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Stakes),
		KeyConditionExpression: aws.String("bet_id = :betID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":betID": str(betID),
		},
		ConsistentRead: aws.Bool(true),
	}

	items, err := s.queryItems(ctx, input, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query stakes: %w", err)
	}

	var stakes []models.Stake
	if err := attributevalue.UnmarshalListOfMaps(items, &stakes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stakes: %w", err)
	}

	sort.SliceStable(stakes, func(i, j int) bool {
		if stakes[i].CreatedAt.Equal(stakes[j].CreatedAt) {
			return stakes[i].UserID < stakes[j].UserID
		}
		return stakes[i].CreatedAt.Before(stakes[j].CreatedAt)
	})
	return stakes, nil
}
