package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/platform/messagebroker"
)

// ReplyConsumer feeds incoming SMS from NATS into the ReplyProcessor.
type ReplyConsumer struct {
	natsClient messagebroker.NATSClient
	processor  *ReplyProcessor
	logger     *slog.Logger
}

func NewReplyConsumer(natsClient messagebroker.NATSClient, processor *ReplyProcessor, logger *slog.Logger) *ReplyConsumer {
	return &ReplyConsumer{
		natsClient: natsClient,
		processor:  processor,
		logger:     logger.With("component", "reply_consumer"),
	}
}

// StartConsuming blocks until ctx is cancelled.
func (c *ReplyConsumer) StartConsuming(ctx context.Context) error {
	handler := func(msg *nats.Msg) {
		var sms domain.IncomingSMS
		if err := json.Unmarshal(msg.Data, &sms); err != nil {
			c.logger.ErrorContext(ctx, "failed to deserialize incoming sms",
				"error", err, "subject", msg.Subject, "data", string(msg.Data))
			return
		}
		if err := c.processor.ProcessIncomingSMS(ctx, sms); err != nil {
			c.logger.ErrorContext(ctx, "failed to process incoming sms",
				"sender", sms.Sender, "error", err)
		}
	}

	c.logger.InfoContext(ctx, "starting incoming sms subscription", "subject", SubjectIncomingRaw)
	return c.natsClient.SubscribeToSubjectWithQueue(ctx, SubjectIncomingRaw, ReplyQueueGroup, handler)
}
