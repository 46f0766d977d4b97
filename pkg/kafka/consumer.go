package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Default redelivery backoff bounds.
const (
	DefaultRetryBackoff    = 200 * time.Millisecond
	DefaultMaxRetryBackoff = 30 * time.Second
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// messageReader is the subset of *kafkago.Reader the consumer drives.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Config() kafkago.ReaderConfig
	Close() error
}

// Consumer wraps a kafka-go reader bound to a single topic and consumer group.
type Consumer struct {
	reader     messageReader
	handler    Handler
	logger     *slog.Logger
	backoff    time.Duration
	maxBackoff time.Duration
}

// NewConsumer creates a Consumer for topic that dispatches to handler.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	mechanism, err := cfg.saslMechanism()
	if err != nil {
		return nil, err
	}

	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024,
	}
	if cfg.TLS || mechanism != nil {
		readerCfg.Dialer = &kafkago.Dialer{
			TLS:           cfg.tlsConfig(),
			SASLMechanism: mechanism,
			DualStack:     true,
		}
	}

	return newConsumer(kafkago.NewReader(readerCfg), handler, logger, cfg.RetryBackoff, cfg.MaxRetryBackoff), nil
}

func newConsumer(reader messageReader, handler Handler, logger *slog.Logger, backoff, maxBackoff time.Duration) *Consumer {
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	if maxBackoff < backoff {
		maxBackoff = max(DefaultMaxRetryBackoff, backoff)
	}
	return &Consumer{
		reader:     reader,
		handler:    handler,
		logger:     logger,
		backoff:    backoff,
		maxBackoff: maxBackoff,
	}
}

// Start consumes until ctx is canceled. A message is committed only after
// its handler succeeds; a failing handler is retried on the same message
// with exponential backoff, so later offsets never commit past it.
func (c *Consumer) Start(ctx context.Context) error {
	cfg := c.reader.Config()
	c.logger.Info("consumer starting", "topic", cfg.Topic, "group", cfg.GroupID)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if isContextErr(err) {
				c.logger.Info("consumer stopping", "topic", cfg.Topic)
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.handle(ctx, m); err != nil {
			c.logger.Info("consumer stopping with message unhandled",
				"topic", m.Topic, "partition", m.Partition, "offset", m.Offset)
			return nil
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if isContextErr(err) {
				return nil
			}
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// handle runs the handler until it succeeds. It returns only ctx.Err().
func (c *Consumer) handle(ctx context.Context, m kafkago.Message) error {
	msg := toMessage(m)
	for attempt := 0; ; attempt++ {
		err := c.handler(ctx, msg)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := c.retryDelay(attempt)
		c.logger.Error("handler error, retrying",
			"topic", m.Topic,
			"partition", m.Partition,
			"offset", m.Offset,
			"attempt", attempt+1,
			"retry_in", wait,
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// retryDelay doubles from the base up to the cap, plus up to 50% jitter.
func (c *Consumer) retryDelay(attempt int) time.Duration {
	d := c.backoff
	for i := 0; i < attempt && d < c.maxBackoff; i++ {
		d *= 2
	}
	d = min(d, c.maxBackoff)
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}
	return d
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}

func toMessage(m kafkago.Message) Message {
	msg := Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
