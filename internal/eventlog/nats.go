package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"

	"github.com/osi4iot/hookkit/internal/config"
)

const natsFlushTimeout = 5 * time.Second

// NATSSink publishes each record as JSON on a subject
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSink connects to the server named in cfg
func NewNATSSink(cfg config.NATSConfig) (*NATSSink, error) {
	if cfg.URL == "" || cfg.Subject == "" {
		return nil, fmt.Errorf("nats sink needs both url and subject")
	}

	opts := []nats.Option{
		nats.Name("hookkit"),
		nats.Timeout(natsFlushTimeout),
	}
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", cfg.URL, err)
	}
	return &NATSSink{conn: conn, subject: cfg.Subject}, nil
}

// Write publishes rec and waits for the server to acknowledge the flush
func (s *NATSSink) Write(ctx context.Context, rec Record) error {
	data, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", s.subject, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, natsFlushTimeout)
		defer cancel()
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing nats connection: %w", err)
	}
	return nil
}

func (s *NATSSink) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}
