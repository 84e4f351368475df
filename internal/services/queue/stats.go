package queue

import "fmt"

// GetQueueStats reports the depth of the event queue.
func (q *QueueService) GetQueueStats() (map[string]interface{}, error) {
	if q.channel == nil {
		return nil, fmt.Errorf("channel not available")
	}

	info, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue: %w", err)
	}

	return map[string]interface{}{
		"queue":     info.Name,
		"pending":   info.Messages,
		"consumers": info.Consumers,
		"status":    q.HealthCheck(),
	}, nil
}

// HealthCheck reports whether batch events can be published.
func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: connection closed"
	case q.channel == nil:
		return "unhealthy: channel not available"
	default:
		return "healthy"
	}
}
