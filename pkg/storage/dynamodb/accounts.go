package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

// GetAccount retrieves a user's account from DynamoDB by their user ID.
func (s *Store) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Accounts),
		Key:            map[string]types.AttributeValue{"user_id": str(userID)},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrAccountNotFound
	}

	var acct models.Account
	if err := attributevalue.UnmarshalMap(result.Item, &acct); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &acct, nil
}

// OpenAccount creates an account record, together with its opening grant when one is given.
func (s *Store) OpenAccount(ctx context.Context, account *models.Account, grant *models.Transaction) error {
	acctAV, err := attributevalue.MarshalMap(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	put := &types.Put{
		TableName:           aws.String(s.Tables.Accounts),
		Item:                acctAV,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"), // Prevent overwriting existing accounts.
	}

	if grant == nil {
		_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           put.TableName,
			Item:                put.Item,
			ConditionExpression: put.ConditionExpression,
		})
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrAccountExists
		}
		if err != nil {
			return fmt.Errorf("failed to create account in DynamoDB: %w", err)
		}
		return nil
	}

	txPut, err := s.transactionPut(*grant)
	if err != nil {
		return err
	}
	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{{Put: put}, txPut},
	})
	if err != nil {
		if c, ok := asCancellation(err); ok && c.failed(0) {
			return storage.ErrAccountExists
		}
		return fmt.Errorf("failed to open account: %w", err)
	}
	return nil
}

// ApplyBalanceChange updates the account and appends the transaction in one TransactWriteItems call.
func (s *Store) ApplyBalanceChange(ctx context.Context, change storage.BalanceChange) error {
	items, err := s.balanceChangeItems(change)
	if err != nil {
		return err
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if c, ok := asCancellation(err); ok {
			if mapped := c.changeFailure(0, change); mapped != nil {
				return mapped
			}
			if c.conflicted() {
				return storage.ErrVersionConflict
			}
		}
		return fmt.Errorf("failed to apply balance change: %w", err)
	}
	return nil
}

// ListTransactionsByUserID retrieves a user's transactions newest first.
func (s *Store) ListTransactionsByUserID(ctx context.Context, userID string, limit int32) ([]models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Transactions),
		IndexName:              aws.String(userCreatedAtIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": str(userID),
		},
		ScanIndexForward: aws.Bool(false), // Sort by created_at in descending order
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for transactions by user ID: %w", err)
	}

	var transactions []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
	}
	return transactions, nil
}

// balanceChangeItems builds the conditional account update and the transaction put.
func (s *Store) balanceChangeItems(change storage.BalanceChange) ([]types.TransactWriteItem, error) {
	nowAV, err := attributevalue.Marshal(change.Transaction.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp for balance change: %w", err)
	}

	update := "SET aura_balance = aura_balance + :amount, lifetime_earned = lifetime_earned + :earned, " +
		"lifetime_spent = lifetime_spent + :spent, version = version + :inc, updated_at = :now"
	condition := "version = :version AND aura_balance >= :min"
	values := map[string]types.AttributeValue{
		":amount":  num(change.Amount),
		":earned":  num(change.EarnedDelta),
		":spent":   num(change.SpentDelta),
		":inc":     num(1),
		":now":     nowAV,
		":version": num(change.ExpectedVersion),
		":min":     num(-change.Amount),
	}
	if change.BonusDate != "" {
		update += ", last_bonus_date = :bonus_date"
		condition += " AND (attribute_not_exists(last_bonus_date) OR last_bonus_date <> :bonus_date)"
		values[":bonus_date"] = str(change.BonusDate)
	}

	txPut, err := s.transactionPut(change.Transaction)
	if err != nil {
		return nil, err
	}

	return []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName:                           aws.String(s.Tables.Accounts),
				Key:                                 map[string]types.AttributeValue{"user_id": str(change.UserID)},
				UpdateExpression:                    aws.String(update),
				ConditionExpression:                 aws.String(condition),
				ExpressionAttributeValues:           values,
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			},
		},
		txPut,
	}, nil
}

func (s *Store) transactionPut(tx models.Transaction) (types.TransactWriteItem, error) {
	txAV, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to marshal transaction: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.Tables.Transactions),
			Item:                txAV,
			ConditionExpression: aws.String("attribute_not_exists(transaction_id)"),
		},
	}, nil
}
