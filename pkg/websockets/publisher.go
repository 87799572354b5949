package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
)

// AllConnectionsGetter defines an interface for getting all connection IDs.
type AllConnectionsGetter interface {
	GetAllConnections(ctx context.Context) ([]string, error)
}

// ConnectionPoster is the subset of the API Gateway management client the publisher uses.
type ConnectionPoster interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// DefaultPublisher broadcasts messages to every connection registered through API Gateway.
type DefaultPublisher struct {
	store       AllConnectionsGetter
	connManager ConnectionManager
	poster      ConnectionPoster
}

// NewPublisher creates a DefaultPublisher posting through an API Gateway client bound to apiEndpoint.
func NewPublisher(cfg aws.Config, store AllConnectionsGetter, connManager ConnectionManager, apiEndpoint string) *DefaultPublisher {
	client := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(apiEndpoint)
	})
	return NewPublisherWithPoster(store, connManager, client)
}

// NewPublisherWithPoster creates a DefaultPublisher over an existing poster.
func NewPublisherWithPoster(store AllConnectionsGetter, connManager ConnectionManager, poster ConnectionPoster) *DefaultPublisher {
	return &DefaultPublisher{
		store:       store,
		connManager: connManager,
		poster:      poster,
	}
}

// Publish sends a message to all connected clients. Stale connections are pruned.
func (p *DefaultPublisher) Publish(ctx context.Context, message Message) error {
	connectionIDs, err := p.store.GetAllConnections(ctx)
	if err != nil {
		return fmt.Errorf("failed to get all connections: %w", err)
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	for _, connectionID := range connectionIDs {
		_, err := p.poster.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(connectionID),
			Data:         payload,
		})
		if err == nil {
			continue
		}

		var goneErr *apigwtypes.GoneException
		if errors.As(err, &goneErr) {
			slog.Info("stale connection found, deleting", "connectionId", connectionID)
			if err := p.connManager.RemoveConnection(ctx, connectionID); err != nil {
				slog.Error("failed to delete stale connection", "error", err)
			}
			continue
		}
		slog.Error("failed to post to connection", "connectionId", connectionID, "messageType", message.Type, "error", err)
	}

	return nil
}
