package messaging

import "context"

// PublisherInterface is the event publishing contract shared by the real
// RabbitMQ publisher and test doubles.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, eventData interface{}) error
	Close() error
}

// Ensure Publisher implements PublisherInterface
var _ PublisherInterface = (*Publisher)(nil)
