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

// ResolveBet commits a resolution batch in one TransactWriteItems call:
//  1. moves the bet to its terminal status, only if it is still active with the stake count
//     the batch was computed from
//  2. inserts the resolution, one per bet
//  3. credits every payout or refund, each version-checked, with its transaction
//  4. adds the reputation deltas
//
// The resolution ID doubles as the client request token, so a retried call is idempotent.
func (s *Store) ResolveBet(ctx context.Context, batch storage.ResolutionBatch) error {
	size := 2 + 2*len(batch.Changes) + len(batch.Reputation)
	if size > maxTransactItems {
		return fmt.Errorf("%w: %d items", storage.ErrBatchTooLarge, size)
	}

	resolutionAV, err := attributevalue.MarshalMap(batch.Resolution)
	if err != nil {
		return fmt.Errorf("failed to marshal resolution: %w", err)
	}
	nowAV, err := attributevalue.Marshal(batch.Resolution.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for resolution: %w", err)
	}

	items := make([]types.TransactWriteItem, 0, size)
	items = append(items,
		types.TransactWriteItem{
			// Operation 1: Close the bet.
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Bets),
				Key:                 map[string]types.AttributeValue{"bet_id": str(batch.Bet.BetID)},
				UpdateExpression:    aws.String("SET #status = :status, updated_at = :now, resolved_at = :now"),
				ConditionExpression: aws.String("#status = :active AND stake_count = :stake_count"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":status":      str(string(batch.Status)),
					":active":      str(string(models.BetStatusActive)),
					":stake_count": num(batch.Bet.StakeCount),
					":now":         nowAV,
				},
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			},
		},
		types.TransactWriteItem{
			// Operation 2: Record the resolution.
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Resolutions),
				Item:                resolutionAV,
				ConditionExpression: aws.String("attribute_not_exists(bet_id)"),
			},
		},
	)
	for _, change := range batch.Changes {
		changeItems, err := s.balanceChangeItems(change)
		if err != nil {
			return err
		}
		items = append(items, changeItems...)
	}
	for _, delta := range batch.Reputation {
		items = append(items, s.reputationUpdate(delta))
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems:      items,
		ClientRequestToken: aws.String(batch.Resolution.ResolutionID),
	})
	if err != nil {
		if c, ok := asCancellation(err); ok {
			return c.resolutionFailure(batch, err)
		}
		return fmt.Errorf("failed to execute resolution transaction: %w", err)
	}
	return nil
}

func (c *cancellation) resolutionFailure(batch storage.ResolutionBatch, err error) error {
	if c.failed(0) {
		item := c.reasons[0].Item
		if len(item) == 0 {
			return storage.ErrBetNotFound
		}
		var bet models.Bet
		if uerr := attributevalue.UnmarshalMap(item, &bet); uerr == nil && bet.Status != models.BetStatusActive {
			return storage.ErrAlreadyResolved
		}
		// Still active, so a stake landed after the snapshot.
		return storage.ErrVersionConflict
	}
	if c.failed(1) {
		return storage.ErrAlreadyResolved
	}
	for i, change := range batch.Changes {
		if mapped := c.changeFailure(2+2*i, change); mapped != nil {
			return mapped
		}
	}
	if c.conflicted() {
		return storage.ErrVersionConflict
	}
	return fmt.Errorf("failed to execute resolution transaction: %w", err)
}

// GetResolution retrieves a bet's resolution.
func (s *Store) GetResolution(ctx context.Context, betID string) (*models.Resolution, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Resolutions),
		Key:            map[string]types.AttributeValue{"bet_id": str(betID)},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrResolutionNotFound
	}

	var res models.Resolution
	if err := attributevalue.UnmarshalMap(result.Item, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resolution: %w", err)
	}
	return &res, nil
}
