package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acks     int
	nacks    int
	requeued bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error { f.acks++; return nil }

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacks++
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error { return nil }

type fakeDeadLetterer struct {
	published [][]byte
	err       error
}

func (f *fakeDeadLetterer) Publish(routingKey string, payload []byte, cause error) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, payload)
	return nil
}

func newTestConsumer(handler MessageHandler) *Consumer {
	return &Consumer{
		routingKey: KeyPublicationRecorded,
		handler:    handler,
		logger:     zap.NewNop(),
	}
}

func delivery(ack amqp091.Acknowledger, body []byte) amqp091.Delivery {
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func decodeHandler(ctx context.Context, data json.RawMessage) error {
	var p PublicationRecordedPayload
	return json.Unmarshal(data, &p)
}

func TestHandleDelivery_SuccessAcks(t *testing.T) {
	c := newTestConsumer(func(ctx context.Context, data json.RawMessage) error { return nil })
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), delivery(ack, []byte(`{}`)))

	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 0, ack.nacks)
}

func TestHandleDelivery_MalformedPayloadDeadLettersAndAcks(t *testing.T) {
	c := newTestConsumer(decodeHandler)
	dlq := &fakeDeadLetterer{}
	c.SetDeadLetterer(dlq)
	ack := &fakeAcknowledger{}

	body := []byte(`{"process_id": "not a number"`)
	c.handleDelivery(context.Background(), delivery(ack, body))

	// The payload will never decode; redelivery would loop forever. It
	// must leave the main queue and land on the DLQ intact.
	require.Len(t, dlq.published, 1)
	assert.Equal(t, body, dlq.published[0])
	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 0, ack.nacks)
}

func TestHandleDelivery_MalformedPayloadWithoutDLQStillDropped(t *testing.T) {
	c := newTestConsumer(decodeHandler)
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), delivery(ack, []byte(`not json`)))

	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 0, ack.nacks)
}

func TestHandleDelivery_TransientErrorRequeues(t *testing.T) {
	c := newTestConsumer(func(ctx context.Context, data json.RawMessage) error {
		return errors.New("failed to connect to database: connection refused")
	})
	dlq := &fakeDeadLetterer{}
	c.SetDeadLetterer(dlq)
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), delivery(ack, []byte(`{}`)))

	assert.Empty(t, dlq.published)
	assert.Equal(t, 0, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeued)
}

func TestHandleDelivery_DeadLetterFailureRequeues(t *testing.T) {
	c := newTestConsumer(decodeHandler)
	c.SetDeadLetterer(&fakeDeadLetterer{err: errors.New("channel closed")})
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), delivery(ack, []byte(`not json`)))

	// Losing the payload is worse than retrying: if the DLQ publish
	// fails the message goes back on the queue.
	assert.Equal(t, 0, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeued)
}

func TestHandleDelivery_PanicRequeues(t *testing.T) {
	c := newTestConsumer(func(ctx context.Context, data json.RawMessage) error {
		panic("boom")
	})
	ack := &fakeAcknowledger{}

	c.handleDelivery(context.Background(), delivery(ack, []byte(`{}`)))

	assert.Equal(t, 0, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeued)
}
