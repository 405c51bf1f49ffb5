package queue

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSOptions configures the NATS connection.
type NATSOptions struct {
	URL           string
	Name          string
	QueueGroup    string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

type NATSQueue struct {
	conn       *nats.Conn
	queueGroup string
	log        *zap.Logger
}

func NewNATSQueue(opts NATSOptions, log *zap.Logger) (MessageQueue, error) {
	natsOpts := []nats.Option{
		nats.Name(opts.Name),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("Disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	if opts.MaxReconnects != 0 {
		natsOpts = append(natsOpts, nats.MaxReconnects(opts.MaxReconnects))
	}
	if opts.ReconnectWait > 0 {
		natsOpts = append(natsOpts, nats.ReconnectWait(opts.ReconnectWait))
	}
	if opts.Timeout > 0 {
		natsOpts = append(natsOpts, nats.Timeout(opts.Timeout))
	}

	nc, err := nats.Connect(opts.URL, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Successfully connected to NATS", zap.String("url", opts.URL))
	return &NATSQueue{
		conn:       nc,
		queueGroup: opts.QueueGroup,
		log:        log,
	}, nil
}

func (q *NATSQueue) Publish(subject string, data []byte) error {
	return q.conn.Publish(subject, data)
}

// Subscribe joins the configured queue group so each message reaches one instance.
func (q *NATSQueue) Subscribe(subject string, handler func(data []byte) error) error {
	cb := func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			q.log.Error("Error processing message", zap.String("subject", subject), zap.Error(err))
		}
	}

	var err error
	if q.queueGroup != "" {
		_, err = q.conn.QueueSubscribe(subject, q.queueGroup, cb)
	} else {
		_, err = q.conn.Subscribe(subject, cb)
	}
	if err != nil {
		return err
	}
	// the subscription is registered on the server once Flush returns
	return q.conn.Flush()
}

// Ping reports whether the connection is currently usable.
func (q *NATSQueue) Ping() error {
	if !q.conn.IsConnected() {
		return fmt.Errorf("nats: not connected (status %s)", q.conn.Status())
	}
	return nil
}

func (q *NATSQueue) Close() error {
	return q.conn.Drain()
}
