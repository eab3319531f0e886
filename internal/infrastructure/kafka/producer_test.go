package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/marble-shop/go-backend/internal/cfg"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (r *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func (r *recordingWriter) Close() error { return nil }

func TestProducer_WriteRawMessage(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{writer: w, logger: logger.NewNop(), cfg: &cfg.KafkaCfg{Topic: "orders.placed"}}

	err := p.WriteRawMessage(context.Background(), &usecase.WriteRawMessageReq{
		Key:       "42",
		EventType: usecase.EventOrderPlaced,
		EventID:   "5f0c",
		Payload:   []byte(`{"order_id":42}`),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.JSONEq(t, `{"order_id":42}`, string(msg.Value))
	assert.Equal(t, []kafka.Header{
		{Key: headerEventType, Value: []byte("order.placed")},
		{Key: headerEventID, Value: []byte("5f0c")},
	}, msg.Headers)
}

func TestProducer_WriteError(t *testing.T) {
	p := &Producer{writer: &recordingWriter{err: errors.New("boom")}, logger: logger.NewNop()}

	err := p.WriteRawMessage(context.Background(), &usecase.WriteRawMessageReq{Key: "1"})
	assert.ErrorContains(t, err, "boom")
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(logger.NewNop(), &cfg.KafkaCfg{Topic: "t"})
	assert.Error(t, err)
}
