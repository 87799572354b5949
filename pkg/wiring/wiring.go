// Package wiring builds the storage backend and engine every binary runs on.
package wiring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/config"
	"github.com/chris/aura-wagers/pkg/scheduler"
	"github.com/chris/aura-wagers/pkg/storage"
	dydbstore "github.com/chris/aura-wagers/pkg/storage/dynamodb"
	"github.com/chris/aura-wagers/pkg/storage/memory"
	"github.com/chris/aura-wagers/pkg/storage/postgres"
	"github.com/chris/aura-wagers/pkg/websockets"
)

// Store is a storage backend that also tracks websocket subscribers.
type Store interface {
	storage.Storage
	storage.WebSocketManager
}

// App holds the wired dependencies of a binary.
type App struct {
	Config *config.Config
	Store  Store
	Engine *aura.Engine
	Logger *slog.Logger

	closers []func()
}

// Close releases backend resources.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New opens the configured backend and builds the engine over it. The SQS scheduler and the
// websocket publisher are attached only when their endpoints are configured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg == nil {
			c, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
			}
			awsCfg = &c
		}
		return *awsCfg, nil
	}

	switch cfg.Backend {
	case config.BackendDynamoDB:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		app.Store = dydbstore.New(dynamodb.NewFromConfig(c), cfg.Tables)
	case config.BackendPostgres:
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			app.Close()
			return nil, err
		}
		app.Store = pg
	case config.BackendMemory:
		mem := memory.New()
		for _, m := range cfg.SeedMembers {
			mem.AddChatMember(m.ChatID, m.UserID)
		}
		app.Store = mem
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	opts := []aura.Option{aura.WithLogger(logger)}
	if cfg.SQSQueueURL != "" {
		c, err := loadAWS()
		if err != nil {
			app.Close()
			return nil, err
		}
		opts = append(opts, aura.WithScheduler(scheduler.NewSQSScheduler(sqs.NewFromConfig(c), cfg.SQSQueueURL)))
	}
	if cfg.WebSocketEndpoint != "" {
		c, err := loadAWS()
		if err != nil {
			app.Close()
			return nil, err
		}
		opts = append(opts, aura.WithPublisher(websockets.NewPublisher(c, app.Store, app.Store, cfg.WebSocketEndpoint)))
	}

	app.Engine = aura.New(app.Store, cfg.Policy, opts...)
	logger.Info("engine ready", "backend", cfg.Backend, "scheduler", cfg.SQSQueueURL != "", "publisher", cfg.WebSocketEndpoint != "")
	return app, nil
}
