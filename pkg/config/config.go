// Package config loads process configuration from the environment (optionally seeded from a
// .env file) and engine policy from an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/storage/dynamodb"
)

// Backend selects the storage implementation.
type Backend string

const (
	BackendDynamoDB Backend = "dynamodb"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// Config is everything the binaries need to wire themselves.
type Config struct {
	Backend           Backend
	HTTPPort          string
	LogLevel          slog.Level
	JWTSecret         string
	DatabaseURL       string
	SQSQueueURL       string
	WebSocketEndpoint string
	Tables            dynamodb.Tables
	Policy            aura.Policy
	// SeedMembers preloads chat membership into the memory backend.
	SeedMembers []ChatMember
}

// ChatMember is one chat:user pair from MEMORY_CHAT_MEMBERS.
type ChatMember struct {
	ChatID string
	UserID string
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Backend:           Backend(strings.ToLower(getenv("STORAGE_BACKEND"))),
		HTTPPort:          getenv("HTTP_PORT"),
		JWTSecret:         getenv("JWT_SECRET"),
		DatabaseURL:       getenv("DATABASE_URL"),
		SQSQueueURL:       getenv("SQS_QUEUE_URL"),
		WebSocketEndpoint: getenv("WEBSOCKET_API_ENDPOINT"),
		Tables: dynamodb.Tables{
			Accounts:     getenv("DYNAMODB_ACCOUNTS_TABLE_NAME"),
			Transactions: getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME"),
			Bets:         getenv("DYNAMODB_BETS_TABLE_NAME"),
			Stakes:       getenv("DYNAMODB_STAKES_TABLE_NAME"),
			Proofs:       getenv("DYNAMODB_PROOFS_TABLE_NAME"),
			Resolutions:  getenv("DYNAMODB_RESOLUTIONS_TABLE_NAME"),
			Reputation:   getenv("DYNAMODB_REPUTATION_TABLE_NAME"),
			ChatMembers:  getenv("DYNAMODB_CHAT_MEMBERS_TABLE_NAME"),
			Connections:  getenv("DYNAMODB_CONNECTIONS_TABLE_NAME"),
		},
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendDynamoDB
	}
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}

	if level := getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
	}

	switch cfg.Backend {
	case BackendDynamoDB:
		if missing := cfg.missingTables(); len(missing) > 0 {
			return nil, fmt.Errorf("DynamoDB table name environment variables not set: %s", strings.Join(missing, ", "))
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL environment variable is required for the postgres backend")
		}
	case BackendMemory:
		members, err := parseMembers(getenv("MEMORY_CHAT_MEMBERS"))
		if err != nil {
			return nil, err
		}
		cfg.SeedMembers = members
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Backend)
	}

	cfg.Policy = aura.DefaultPolicy()
	if path := getenv("AURA_POLICY_FILE"); path != "" {
		policy, err := LoadPolicyFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Policy = policy
	}
	return cfg, nil
}

func (c *Config) missingTables() []string {
	var missing []string
	for name, value := range map[string]string{
		"DYNAMODB_ACCOUNTS_TABLE_NAME":     c.Tables.Accounts,
		"DYNAMODB_TRANSACTIONS_TABLE_NAME": c.Tables.Transactions,
		"DYNAMODB_BETS_TABLE_NAME":         c.Tables.Bets,
		"DYNAMODB_STAKES_TABLE_NAME":       c.Tables.Stakes,
		"DYNAMODB_PROOFS_TABLE_NAME":       c.Tables.Proofs,
		"DYNAMODB_RESOLUTIONS_TABLE_NAME":  c.Tables.Resolutions,
		"DYNAMODB_REPUTATION_TABLE_NAME":   c.Tables.Reputation,
		"DYNAMODB_CHAT_MEMBERS_TABLE_NAME": c.Tables.ChatMembers,
		"DYNAMODB_CONNECTIONS_TABLE_NAME":  c.Tables.Connections,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// parseMembers reads a comma separated list of chat:user pairs.
func parseMembers(raw string) ([]ChatMember, error) {
	var members []ChatMember
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		chatID, userID, ok := strings.Cut(pair, ":")
		if !ok || chatID == "" || userID == "" {
			return nil, fmt.Errorf("invalid MEMORY_CHAT_MEMBERS entry %q, want chat:user", pair)
		}
		members = append(members, ChatMember{ChatID: chatID, UserID: userID})
	}
	return members, nil
}

// LoadPolicyFile reads a YAML policy. Keys it omits keep their defaults.
func LoadPolicyFile(path string) (aura.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return aura.Policy{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes a YAML policy over aura.DefaultPolicy. Unknown keys are rejected.
func ParsePolicy(data []byte) (aura.Policy, error) {
	policy := aura.DefaultPolicy()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&policy); err != nil && !errors.Is(err, io.EOF) {
		return aura.Policy{}, fmt.Errorf("failed to parse policy: %w", err)
	}
	if policy.StartingBalance < 0 || policy.DailyBonus < 0 || policy.BetCreationCost < 0 {
		return aura.Policy{}, errors.New("policy amounts must not be negative")
	}
	return policy, nil
}

// NewLogger returns the JSON logger the binaries install as the slog default.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel}))
}
