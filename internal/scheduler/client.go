// Package scheduler runs deferred work on asynq: the follow-up email
// sequence for fresh leads and the periodic automated closing pass.
package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"vendexa_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// followUpOffsets is the delay of each follow-up step after lead creation.
// Step 0 (the welcome email) is sent immediately by the notification module,
// so the sequence here starts at two days.
var followUpOffsets = []time.Duration{
	48 * time.Hour,
	120 * time.Hour,
	168 * time.Hour,
}

// FollowUpScheduler enqueues the follow-up sequence for a lead.
type FollowUpScheduler interface {
	ScheduleLeadFollowUps(ctx context.Context, leadID uuid.UUID, createdAt time.Time) error
}

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

// ScheduleLeadFollowUps enqueues one task per follow-up step, spaced out
// from the lead's creation time. Steps whose send time has already passed
// run immediately.
func (c *Client) ScheduleLeadFollowUps(ctx context.Context, leadID uuid.UUID, createdAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	for stage, offset := range followUpOffsets {
		task, err := NewLeadFollowUpTask(LeadFollowUpPayload{
			LeadID: leadID.String(),
			Stage:  stage + 1,
		})
		if err != nil {
			return err
		}

		runAt := createdAt.Add(offset)
		if _, err := c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue)); err != nil {
			return err
		}
	}
	return nil
}

// EnqueueCloseBatch enqueues one closing pass for immediate processing.
func (c *Client) EnqueueCloseBatch(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.EnqueueContext(ctx, NewCloseBatchTask(), asynq.Queue(c.queue))
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

var _ FollowUpScheduler = (*Client)(nil)
