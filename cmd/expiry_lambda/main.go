package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/config"
	"github.com/chris/aura-wagers/pkg/scheduler"
	"github.com/chris/aura-wagers/pkg/wiring"
)

// betExpirer is the part of the engine this lambda drives.
type betExpirer interface {
	ExpireBet(ctx context.Context, betID string) (bool, error)
}

var engine betExpirer

// setup wires the engine from the environment.
func setup() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	// Re-scheduling checks for far-off deadlines needs the queue.
	if cfg.SQSQueueURL == "" {
		log.Fatal("SQS_QUEUE_URL environment variable not set")
	}

	app, err := wiring.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to wire dependencies: %v", err)
	}
	engine = app.Engine
}

// HandleRequest expires the bets named by delayed expiry checks.
// A returned error makes SQS redeliver the batch, and ExpireBet is safe to repeat.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		var check scheduler.ExpiryCheck
		if err := json.Unmarshal([]byte(message.Body), &check); err != nil {
			// A malformed body will never parse; redelivering it only feeds the DLQ.
			slog.ErrorContext(ctx, "dropping malformed expiry check", "messageId", message.MessageId, "error", err)
			continue
		}

		expired, err := engine.ExpireBet(ctx, check.BetID)
		if errors.Is(err, aura.ErrBetNotFound) {
			// Nothing to expire and nothing a retry could change.
			slog.WarnContext(ctx, "dropping expiry check for unknown bet", "messageId", message.MessageId, "betId", check.BetID)
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to expire bet", "messageId", message.MessageId, "betId", check.BetID, "error", err)
			return err
		}
		slog.InfoContext(ctx, "processed expiry check", "betId", check.BetID, "expired", expired)
	}
	return nil
}

func main() {
	setup()
	lambda.Start(HandleRequest)
}
