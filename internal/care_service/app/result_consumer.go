package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/platform/messagebroker"
)

// NATS subjects carrying raw gateway callbacks, published by the HTTP edge.
const (
	SubjectSentRaw      = "sms.sent.raw"
	SubjectDeliveredRaw = "sms.delivered.raw"
	SubjectIncomingRaw  = "sms.incoming.raw"

	ResultQueueGroup = "care_result_processors"
	ReplyQueueGroup  = "care_reply_processors"
)

// ResultConsumer feeds sent and delivery callbacks from NATS into the
// ResultProcessor. Both StartConsuming methods block until ctx is cancelled
// and are meant to run in their own goroutines.
type ResultConsumer struct {
	natsClient messagebroker.NATSClient
	processor  *ResultProcessor
	logger     *slog.Logger
}

func NewResultConsumer(natsClient messagebroker.NATSClient, processor *ResultProcessor, logger *slog.Logger) *ResultConsumer {
	return &ResultConsumer{
		natsClient: natsClient,
		processor:  processor,
		logger:     logger.With("component", "result_consumer"),
	}
}

func (c *ResultConsumer) StartConsumingSent(ctx context.Context) error {
	handler := func(msg *nats.Msg) {
		var ev domain.SentEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			c.logger.ErrorContext(ctx, "failed to deserialize sent event",
				"error", err, "subject", msg.Subject, "data", string(msg.Data))
			return
		}
		if err := c.processor.ProcessSentEvent(ctx, ev); err != nil {
			c.logger.ErrorContext(ctx, "failed to process sent event",
				"message_id", ev.Ref.MessageID, "error", err)
		}
	}

	c.logger.InfoContext(ctx, "starting sent event subscription", "subject", SubjectSentRaw)
	return c.natsClient.SubscribeToSubjectWithQueue(ctx, SubjectSentRaw, ResultQueueGroup, handler)
}

func (c *ResultConsumer) StartConsumingDelivered(ctx context.Context) error {
	handler := func(msg *nats.Msg) {
		var ev domain.DeliveryEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			c.logger.ErrorContext(ctx, "failed to deserialize delivery event",
				"error", err, "subject", msg.Subject, "data", string(msg.Data))
			return
		}
		if err := c.processor.ProcessDeliveryEvent(ctx, ev); err != nil {
			c.logger.ErrorContext(ctx, "failed to process delivery event",
				"message_id", ev.MessageID, "error", err)
		}
	}

	c.logger.InfoContext(ctx, "starting delivery event subscription", "subject", SubjectDeliveredRaw)
	return c.natsClient.SubscribeToSubjectWithQueue(ctx, SubjectDeliveredRaw, ResultQueueGroup, handler)
}
