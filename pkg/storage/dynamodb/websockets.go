package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// connectionsPK groups every subscriber under one partition of the pk-index.
	connectionsPK = "connections"
	// connectionTTL bounds how long a subscriber whose disconnect was never delivered lingers.
	// API Gateway closes websocket connections after two hours.
	connectionTTL = 2 * time.Hour
)

// subscriberItem is a row of the connections table. expires_at is the table's TTL attribute.
type subscriberItem struct {
	ConnectionID string    `dynamodbav:"connection_id"`
	PK           string    `dynamodbav:"pk"`
	ConnectedAt  time.Time `dynamodbav:"connected_at"`
	ExpiresAt    time.Time `dynamodbav:"expires_at,unixtime"`
}

// AddConnection registers a subscriber for bet events.
func (s *Store) AddConnection(ctx context.Context, connectionID string) error {
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(subscriberItem{
		ConnectionID: connectionID,
		PK:           connectionsPK,
		ConnectedAt:  now,
		ExpiresAt:    now.Add(connectionTTL),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal subscriber: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Connections),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put subscriber: %w", err)
	}
	return nil
}

// RemoveConnection drops a subscriber. Removing an unknown connection is not an error.
func (s *Store) RemoveConnection(ctx context.Context, connectionID string) error {
	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.Tables.Connections),
		Key:       map[string]types.AttributeValue{"connection_id": str(connectionID)},
	})
	if err != nil {
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}
	return nil
}

// GetAllConnections lists every subscriber that has not yet expired.
// TTL deletion lags, so expired rows are filtered out here as well.
func (s *Store) GetAllConnections(ctx context.Context) ([]string, error) {
	items, err := s.queryItems(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Connections),
		IndexName:              aws.String(connectionsIndex),
		KeyConditionExpression: aws.String("pk = :pk"),
		FilterExpression:       aws.String("attribute_not_exists(expires_at) OR expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":  str(connectionsPK),
			":now": num(time.Now().Unix()),
		},
		ProjectionExpression: aws.String("connection_id"),
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}

	var subscribers []subscriberItem
	if err := attributevalue.UnmarshalListOfMaps(items, &subscribers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscribers: %w", err)
	}

	ids := make([]string, len(subscribers))
	for i, sub := range subscribers {
		ids[i] = sub.ConnectionID
	}
	return ids, nil
}
