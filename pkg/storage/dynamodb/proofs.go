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

// CreateProof stores a proof while its bet is active and before its deadline.
func (s *Store) CreateProof(ctx context.Context, proof *models.Proof, now time.Time) error {
	proofAV, err := attributevalue.MarshalMap(proof)
	if err != nil {
		return fmt.Errorf("failed to marshal proof: %w", err)
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				ConditionCheck: &types.ConditionCheck{
					TableName:           aws.String(s.Tables.Bets),
					Key:                 map[string]types.AttributeValue{"bet_id": str(proof.BetID)},
					ConditionExpression: aws.String("#status = :active AND deadline >= :now_unix"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":active":   str(string(models.BetStatusActive)),
						":now_unix": num(now.Unix()),
					},
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.Tables.Proofs),
					Item:                proofAV,
					ConditionExpression: aws.String("attribute_not_exists(proof_id)"),
				},
			},
		},
	})
	if err != nil {
		if c, ok := asCancellation(err); ok && c.failed(0) {
			return storage.ErrBetNotActive
		}
		return fmt.Errorf("failed to create proof: %w", err)
	}
	return nil
}

// GetProof retrieves a proof by its ID.
func (s *Store) GetProof(ctx context.Context, proofID string) (*models.Proof, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Proofs),
		Key:       map[string]types.AttributeValue{"proof_id": str(proofID)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get proof from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrProofNotFound
	}

	var proof models.Proof
	if err := attributevalue.UnmarshalMap(result.Item, &proof); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proof: %w", err)
	}
	return &proof, nil
}

// ListProofs retrieves a bet's proofs newest first.
func (s *Store) ListProofs(ctx context.Context, betID string) ([]models.Proof, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Proofs),
		IndexName:              aws.String(betProofCreatedAtIndex),
		KeyConditionExpression: aws.String("bet_id = :betID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":betID": str(betID),
		},
		ScanIndexForward: aws.Bool(false),
	}

	items, err := s.queryItems(ctx, input, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query proofs: %w", err)
	}

	var proofs []models.Proof
	if err := attributevalue.UnmarshalListOfMaps(items, &proofs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proofs: %w", err)
	}
	return proofs, nil
}

// DeleteProof removes a proof while its bet is still active.
func (s *Store) DeleteProof(ctx context.Context, proof *models.Proof) error {
	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				ConditionCheck: &types.ConditionCheck{
					TableName:           aws.String(s.Tables.Bets),
					Key:                 map[string]types.AttributeValue{"bet_id": str(proof.BetID)},
					ConditionExpression: aws.String("#status = :active"),
					ExpressionAttributeNames: map[string]string{
						"#status": "status",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":active": str(string(models.BetStatusActive)),
					},
				},
			},
			{
				Delete: &types.Delete{
					TableName:           aws.String(s.Tables.Proofs),
					Key:                 map[string]types.AttributeValue{"proof_id": str(proof.ProofID)},
					ConditionExpression: aws.String("attribute_exists(proof_id)"),
				},
			},
		},
	})
	if err != nil {
		if c, ok := asCancellation(err); ok {
			switch {
			case c.failed(0):
				return storage.ErrBetNotActive
			case c.failed(1):
				return storage.ErrProofNotFound
			}
		}
		return fmt.Errorf("failed to delete proof: %w", err)
	}
	return nil
}
