package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/user-management/internal/config"
	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishUserEvent(t *testing.T) {
	w := &fakeWriter{}
	c := &KafkaProducerClient{UserEventsWriter: w, topic: "user.events", logger: logger.NewNopLogger()}

	ev := user.NewEvent(user.EventTypeRestored, 42, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, c.PublishUserEvent(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))

	decoded, err := DecodeUserEvent(w.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, ev, decoded)
	assert.JSONEq(t,
		`{"event_id":"`+ev.ID.String()+`","event_type":"user.restored","user_id":42,"occurred_at":"2026-03-14T00:00:00Z"}`,
		string(w.msgs[0].Value))

	c.Close()
	assert.True(t, w.closed)
}

func TestPublishUserEvent_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	c := &KafkaProducerClient{UserEventsWriter: w, topic: "user.events", logger: logger.NewNopLogger()}

	err := c.PublishUserEvent(context.Background(), user.NewEvent(user.EventTypeCreated, 1, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user.events")
}

func TestDecodeUserEvent_Malformed(t *testing.T) {
	_, err := DecodeUserEvent(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)

	_, err = DecodeUserEvent(kafka.Message{Value: []byte(`{"event_type":"user.created"}`)})
	assert.Error(t, err)
}

func TestNewKafkaProducerClient_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaProducerClient(config.Config{}, logger.NewNopLogger())
	assert.Error(t, err)
}
