// Package events announces finished runs on a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/maltedev/wheel-catalog-scraper/internal/models"
	"github.com/maltedev/wheel-catalog-scraper/internal/table"
	"github.com/redis/go-redis/v9"
)

const EventRunCompleted = "SCRAPE_RUN_COMPLETED"

// RedisClient is the subset of the redis client the publisher needs.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Close() error
}

type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "events"),
	}
}

// Connect returns a client after checking the server answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (p *Publisher) Name() string {
	return "redis stream"
}

// Record publishes a completion event for run.
func (p *Publisher) Record(ctx context.Context, run *models.Run, tbl *table.Table) error {
	payload := map[string]interface{}{
		"run_id":       run.ID.String(),
		"category_url": run.CategoryURL,
		"output_path":  run.OutputPath,
		"links":        run.Links,
		"records":      run.Records,
		"rows":         tbl.Len(),
		"duplicates":   tbl.Duplicates(),
		"columns":      tbl.Columns,
		"duration_ms":  run.Duration().Milliseconds(),
	}

	dataJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":       string(dataJSON),
			"event_type": EventRunCompleted,
			"run_id":     run.ID.String(),
			"timestamp":  fmt.Sprintf("%d", run.FinishedAt.UnixNano()),
			"source":     "wheelscrape",
		},
	}

	id, err := p.redis.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Info("run event published",
		"stream", p.stream,
		"message_id", id,
		"run_id", run.ID,
		"published_at", time.Now().Format(time.RFC3339))
	return nil
}

func (p *Publisher) Close() error {
	return p.redis.Close()
}
