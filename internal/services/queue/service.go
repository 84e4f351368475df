package queue

import (
	"fmt"

	"github.com/phambaophuc/image-enhance/internal/config"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DefaultQueue receives batch events when no queue name is configured.
const DefaultQueue = "image_processed"

// QueueService publishes batch events to RabbitMQ.
type QueueService struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	logger    *zap.Logger
	queueName string
}

func NewQueueService(cfg config.RabbitMQConfig, logger *zap.Logger) (*QueueService, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("rabbitmq url is not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	q := &QueueService{logger: logger, queueName: cfg.Queue}
	if q.queueName == "" {
		q.queueName = DefaultQueue
	}

	if err := q.connect(cfg.URL); err != nil {
		q.Close()
		return nil, err
	}

	logger.Info("Batch events enabled", zap.String("queue", q.queueName))
	return q, nil
}

// connect dials the broker and declares a durable event queue.
func (q *QueueService) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	q.conn = conn

	if q.channel, err = conn.Channel(); err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err = q.channel.QueueDeclare(q.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", q.queueName, err)
	}
	return nil
}

// Close releases the channel and connection. Safe on a partially
// connected service.
func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
		q.channel = nil
	}
	if q.conn != nil {
		err := q.conn.Close()
		q.conn = nil
		return err
	}
	return nil
}
