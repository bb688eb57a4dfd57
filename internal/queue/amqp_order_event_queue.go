package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fairtix/internal/model"
	"fairtix/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const maxReconnectBackoff = 30 * time.Second

// AMQPOrderEventQueue 透過 RabbitMQ durable queue 傳遞訂單完成事件
type AMQPOrderEventQueue struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPOrderEventQueue(url, queueName string) *AMQPOrderEventQueue {
	return &AMQPOrderEventQueue{url: url, queue: queueName}
}

// channel 需持有 q.mu；連線斷開後重新建立
func (q *AMQPOrderEventQueue) channel() (*amqp.Channel, error) {
	if q.ch != nil && !q.ch.IsClosed() {
		return q.ch, nil
	}
	if q.conn == nil || q.conn.IsClosed() {
		conn, err := amqp.Dial(q.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		q.conn = conn
	}
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declare(ch, q.queue); err != nil {
		_ = ch.Close()
		return nil, err
	}
	q.ch = ch
	return ch, nil
}

func declare(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}

func (q *AMQPOrderEventQueue) Publish(ctx context.Context, event *model.OrderCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	ch, err := q.channel()
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Subscribe 使用獨立連線消費，斷線時以指數退避重連直到 ctx 結束
func (q *AMQPOrderEventQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		log := logger.WithComponent("order-events")
		backoff := time.Second

		for ctx.Err() == nil {
			conn, err := amqp.Dial(q.url)
			if err != nil {
				log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
				sleep(ctx, backoff)
				backoff = min(backoff*2, maxReconnectBackoff)
				continue
			}
			backoff = time.Second

			err = q.consume(ctx, conn, out)
			_ = conn.Close()
			if err != nil && ctx.Err() == nil {
				log.Warn("consume loop ended, reconnecting", zap.Error(err))
				sleep(ctx, 2*time.Second)
			}
		}
	}()

	return out, nil
}

func (q *AMQPOrderEventQueue) consume(ctx context.Context, conn *amqp.Connection, out chan<- Delivery) error {
	log := logger.WithComponent("order-events")

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", zap.Error(err))
	}
	if err := declare(ch, q.queue); err != nil {
		return err
	}

	msgs, err := ch.ConsumeWithContext(ctx, q.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}

			var event model.OrderCompletedEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				log.Warn("unmarshal order event failed", zap.Error(err))
				_ = msg.Nack(false, false)
				continue
			}

			d := Delivery{
				Data: &event,
				Ack:  func() { _ = msg.Ack(false) },
				Nack: func(requeue bool) { _ = msg.Nack(false, requeue) },
			}
			select {
			case out <- d:
			case <-ctx.Done():
				_ = msg.Nack(false, true)
				return nil
			}
		}
	}
}

func (q *AMQPOrderEventQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.conn == nil {
		return nil
	}
	err := q.conn.Close()
	q.conn, q.ch = nil, nil
	return err
}
