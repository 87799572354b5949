package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/config"
	"github.com/chris/aura-wagers/pkg/wiring"
)

var engine *aura.Engine

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	app, err := wiring.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to wire dependencies: %v", err)
	}
	engine = app.Engine
}

// HandleRequest is triggered by an EventBridge schedule and expires every overdue bet.
func HandleRequest(ctx context.Context) error {
	slog.InfoContext(ctx, "starting expiry sweep")

	expired, err := engine.AutoExpire(ctx)
	if err != nil {
		// Bets that failed stay active and are picked up by the next run.
		slog.ErrorContext(ctx, "expiry sweep finished with failures", "expired", expired, "error", err)
		return err
	}

	slog.InfoContext(ctx, "expiry sweep finished", "expired", expired)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
