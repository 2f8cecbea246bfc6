package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"dialer_backend/internal/dialer/engine"
	"dialer_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues dialer background tasks. It implements the engine's
// OutcomeRecorder port so concluded calls are persisted off the command
// path.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// RecordOutcome enqueues persistence of a concluded call.
func (c *Client) RecordOutcome(ctx context.Context, rec engine.OutcomeRecord) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewRecordCallOutcomeTask(RecordCallOutcomePayload{
		LeadID:          rec.LeadID.String(),
		Outcome:         string(rec.Outcome),
		DurationSeconds: rec.DurationSeconds,
		Notes:           rec.Notes,
		EndedAt:         rec.EndedAt,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(5))
	return err
}

// EnqueueDNCReverify schedules a registry lookup for one lead's number.
func (c *Client) EnqueueDNCReverify(ctx context.Context, payload DNCReverifyPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewDNCReverifyTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
