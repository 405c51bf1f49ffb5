package queue

import (
	"fmt"

	"go.uber.org/zap"
)

// MessageQueue defines the interface for a message queue adapter
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Ping() error
	Close() error
}

// Options selects and configures a queue backend.
type Options struct {
	Driver string // "nats" or "rabbitmq"
	NATS   NATSOptions
	AMQP   string
}

// New connects to the backend named by opts.Driver.
func New(opts Options, log *zap.Logger) (MessageQueue, error) {
	switch opts.Driver {
	case "", "nats":
		return NewNATSQueue(opts.NATS, log)
	case "rabbitmq", "amqp":
		return NewRabbitMQQueue(opts.AMQP, log)
	default:
		return nil, fmt.Errorf("unknown queue driver %q", opts.Driver)
	}
}
