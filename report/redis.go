package report

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultReportList is the Redis list reports are pushed to.
	DefaultReportList = "riskgraph:reports"

	// DefaultReportChannel is the pub/sub channel report events are
	// published to.
	DefaultReportChannel = "riskgraph:reports:events"
)

// RedisOptions configures the Redis connection for a RedisSink.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// List is the Redis list reports are pushed to. Defaults to
	// DefaultReportList.
	List string

	// Channel is the pub/sub channel report events are published to.
	// Defaults to DefaultReportChannel.
	Channel string

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// RedisSink delivers reports to Redis: the full report is pushed to a
// list for durable consumers, and a lightweight event is published to a
// pub/sub channel for live subscribers.
type RedisSink struct {
	client  *redis.Client
	list    string
	channel string
}

// reportEvent is the pub/sub payload announcing a delivered report.
type reportEvent struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	TotalUsers  int       `json:"total_users"`
	Incomplete  bool      `json:"incomplete"`
}

// NewRedisSink creates a Redis report sink with the given options.
func NewRedisSink(opts RedisOptions) (*RedisSink, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.List == "" {
		opts.List = DefaultReportList
	}
	if opts.Channel == "" {
		opts.Channel = DefaultReportChannel
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSink{client: client, list: opts.List, channel: opts.Channel}, nil
}

// Write implements Sink.
func (s *RedisSink) Write(ctx context.Context, r *Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", r.RunID, err)
	}

	if err := s.client.LPush(ctx, s.list, data).Err(); err != nil {
		return fmt.Errorf("failed to push report to %s: %w", s.list, err)
	}

	event, err := json.Marshal(reportEvent{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		TotalUsers:  r.Summary.TotalUsers,
		Incomplete:  r.Incomplete,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal report event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, event).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", s.channel, err)
	}

	return nil
}

// Close closes the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
