package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fairtix/internal/model"
	"fairtix/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	OrderEventStreamKey = "orders:completed"
	OrderEventGroup     = "order-event-workers"
	orderEventField     = "event"
)

// RedisStreamConfig 零值欄位使用預設值
type RedisStreamConfig struct {
	ClaimMinIdleTime time.Duration // PEL 中閒置超過此時間才由 XAUTOCLAIM 領回
	MaxRetryCount    int           // 超過即視為毒藥訊息並 ack 丟棄
	BlockTime        time.Duration // XReadGroup 阻塞時間
	BatchSize        int64
}

func (c RedisStreamConfig) withDefaults() RedisStreamConfig {
	if c.ClaimMinIdleTime <= 0 {
		c.ClaimMinIdleTime = 5 * time.Second
	}
	if c.MaxRetryCount <= 0 {
		c.MaxRetryCount = 5
	}
	if c.BlockTime <= 0 {
		c.BlockTime = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	return c
}

type RedisStreamOrderEventQueue struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	cfg      RedisStreamConfig
}

// NewRedisStreamOrderEventQueue consumerID 為空時產生隨機 ID
func NewRedisStreamOrderEventQueue(ctx context.Context, client *redis.Client, consumerID string, cfg RedisStreamConfig) (*RedisStreamOrderEventQueue, error) {
	if consumerID == "" {
		consumerID = uuid.NewString()
	}
	q := &RedisStreamOrderEventQueue{
		client:   client,
		stream:   OrderEventStreamKey,
		group:    OrderEventGroup,
		consumer: "worker:" + consumerID,
		cfg:      cfg.withDefaults(),
	}

	err := client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamOrderEventQueue) Publish(ctx context.Context, event *model.OrderCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		ID:     "*",
		Values: map[string]any{orderEventField: string(body)},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

func (q *RedisStreamOrderEventQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		done := make(chan struct{})
		go func() {
			defer close(done)
			q.claimLoop(ctx, out)
		}()
		q.readLoop(ctx, out)
		<-done
	}()
	return out, nil
}

// readLoop 只讀新訊息 (">")；已投遞但未 ack 的訊息由 claimLoop 逾時後領回重試
func (q *RedisStreamOrderEventQueue) readLoop(ctx context.Context, out chan<- Delivery) {
	log := logger.WithComponent("order-events")
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: q.consumer,
			Streams:  []string{q.stream, ">"},
			Count:    q.cfg.BatchSize,
			Block:    q.cfg.BlockTime,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("XReadGroup failed", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				if !q.deliver(ctx, out, msg) {
					return
				}
			}
		}
	}
}

func (q *RedisStreamOrderEventQueue) claimLoop(ctx context.Context, out chan<- Delivery) {
	log := logger.WithComponent("order-events")
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()
	start := "0-0"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   q.stream,
			Group:    q.group,
			Consumer: q.consumer,
			MinIdle:  q.cfg.ClaimMinIdleTime,
			Count:    q.cfg.BatchSize,
			Start:    start,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() == nil {
				log.Error("XAutoClaim failed", zap.Error(err))
			}
			continue
		}
		start = next
		if start == "" {
			start = "0-0"
		}

		for _, msg := range claimed {
			if q.exhausted(ctx, msg.ID) {
				continue
			}
			if !q.deliver(ctx, out, msg) {
				return
			}
		}
	}
}

// exhausted 超過重試上限的訊息直接 ack 掉
func (q *RedisStreamOrderEventQueue) exhausted(ctx context.Context, id string) bool {
	log := logger.WithComponent("order-events")
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.stream,
		Group:  q.group,
		Start:  id,
		End:    id,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		return false
	}

	retries := int(pending[0].RetryCount)
	if retries < q.cfg.MaxRetryCount {
		return false
	}

	log.Warn("discard poison message",
		zap.String("message_id", id),
		zap.Int("retries", retries),
	)
	_ = q.client.XAck(ctx, q.stream, q.group, id).Err()
	return true
}

// deliver 回傳 false 代表 ctx 已結束
func (q *RedisStreamOrderEventQueue) deliver(ctx context.Context, out chan<- Delivery, msg redis.XMessage) bool {
	d, ok := q.newDelivery(ctx, msg)
	if !ok {
		return true
	}
	select {
	case out <- d:
		return true
	case <-ctx.Done():
		return false
	}
}

func (q *RedisStreamOrderEventQueue) newDelivery(ctx context.Context, msg redis.XMessage) (Delivery, bool) {
	log := logger.WithComponent("order-events")

	raw, ok := msg.Values[orderEventField].(string)
	if !ok {
		log.Warn("invalid message: missing event field", zap.String("message_id", msg.ID))
		_ = q.client.XAck(ctx, q.stream, q.group, msg.ID).Err()
		return Delivery{}, false
	}
	var event model.OrderCompletedEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		log.Warn("unmarshal order event failed", zap.String("message_id", msg.ID), zap.Error(err))
		_ = q.client.XAck(ctx, q.stream, q.group, msg.ID).Err()
		return Delivery{}, false
	}

	id := msg.ID
	ack := func() {
		if err := q.client.XAck(context.WithoutCancel(ctx), q.stream, q.group, id).Err(); err != nil {
			log.Error("XAck failed", zap.String("message_id", id), zap.Error(err))
		}
	}
	return Delivery{
		Data: &event,
		Ack:  ack,
		Nack: func(requeue bool) {
			if requeue {
				// 留在 PEL，等 ClaimMinIdleTime 後由 XAUTOCLAIM 領回
				log.Info("message nacked, will retry", zap.String("message_id", id))
				return
			}
			ack()
		},
	}, true
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
