package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages, then blocks until ctx ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafkago.Message
	committed []int64
	fetchErr  error
	commitErr error
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if r.fetchErr != nil {
		err := r.fetchErr
		r.mu.Unlock()
		return kafkago.Message{}, err
	}
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitErr != nil {
		return r.commitErr
	}
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Config() kafkago.ReaderConfig {
	return kafkago.ReaderConfig{Topic: "subscriber.snapshots", GroupID: "churn"}
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func msgAt(offset int64, value string) kafkago.Message {
	return kafkago.Message{Topic: "subscriber.snapshots", Offset: offset, Value: []byte(value)}
}

func TestConsumer_RetriesFailedMessageBeforeMovingOn(t *testing.T) {
	reader := &fakeReader{queue: []kafkago.Message{msgAt(10, "a"), msgAt(11, "b")}}

	var mu sync.Mutex
	var seen []string
	failuresLeft := 2
	handler := func(_ context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(msg.Value))
		if string(msg.Value) == "a" && failuresLeft > 0 {
			failuresLeft--
			return errors.New("database unavailable")
		}
		return nil
	}

	c := newConsumer(reader, handler, quietLogger(), time.Millisecond, 2*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	assert.Eventually(t, func() bool { return len(reader.commits()) == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "a", "a", "b"}, seen)
	assert.Equal(t, []int64{10, 11}, reader.commits())
}

func TestConsumer_CancelDuringRetryLeavesMessageUncommitted(t *testing.T) {
	reader := &fakeReader{queue: []kafkago.Message{msgAt(5, "x"), msgAt(6, "y")}}

	attempts := make(chan struct{}, 16)
	handler := func(_ context.Context, msg Message) error {
		attempts <- struct{}{}
		return errors.New("redis unavailable")
	}

	c := newConsumer(reader, handler, quietLogger(), time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	<-attempts
	cancel()
	require.NoError(t, <-done)

	assert.Empty(t, reader.commits())
	reader.mu.Lock()
	defer reader.mu.Unlock()
	require.Len(t, reader.queue, 1, "the next offset must not be fetched while a message is unhandled")
	assert.Equal(t, int64(6), reader.queue[0].Offset)
}

func TestConsumer_FetchErrorStops(t *testing.T) {
	reader := &fakeReader{fetchErr: errors.New("broker gone")}
	c := newConsumer(reader, func(context.Context, Message) error { return nil }, quietLogger(), 0, 0)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker gone")

	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
}

func TestConsumer_RetryDelay(t *testing.T) {
	c := newConsumer(&fakeReader{}, nil, quietLogger(), 100*time.Millisecond, 400*time.Millisecond)

	bounds := []struct {
		attempt  int
		min, max time.Duration
	}{
		{0, 100 * time.Millisecond, 150 * time.Millisecond},
		{1, 200 * time.Millisecond, 300 * time.Millisecond},
		{2, 400 * time.Millisecond, 600 * time.Millisecond},
		{10, 400 * time.Millisecond, 600 * time.Millisecond},
	}
	for _, b := range bounds {
		d := c.retryDelay(b.attempt)
		assert.GreaterOrEqual(t, d, b.min, "attempt %d", b.attempt)
		assert.Less(t, d, b.max, "attempt %d", b.attempt)
	}
}

func TestNewConsumer_Defaults(t *testing.T) {
	c, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}, ConsumerGroup: "churn"}, "t", nil, quietLogger())
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, DefaultRetryBackoff, c.backoff)
	assert.Equal(t, DefaultMaxRetryBackoff, c.maxBackoff)

	_, err = NewConsumer(Config{SASLEnabled: true, SASLMechanism: "GSSAPI"}, "t", nil, quietLogger())
	require.Error(t, err)
}
