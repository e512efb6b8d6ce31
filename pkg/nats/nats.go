package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/itbpos/restaurant-backend/pkg/config"
)

// Publisher sends event payloads to a NATS subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, msg []byte) error
	Close() error
}

// HandlerFunc processes one delivered message.
type HandlerFunc func(ctx context.Context, msg []byte) error

type Client struct {
	conn *nats.Conn
}

// New connects to the configured NATS server.
func New(cfg config.NATSConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}
	conn, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Publish(_ context.Context, subject string, msg []byte) error {
	if subject == "" {
		return errors.New("subject is required")
	}
	return c.conn.Publish(subject, msg)
}

// Subscribe registers a handler for the subject. Handler errors are left to
// the handler's own logging; core NATS has no redelivery.
func (c *Client) Subscribe(ctx context.Context, subject string, handler HandlerFunc) (*nats.Subscription, error) {
	if subject == "" {
		return nil, errors.New("subject is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	return c.conn.Subscribe(subject, func(msg *nats.Msg) {
		_ = handler(ctx, msg.Data)
	})
}

func (c *Client) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}
