package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/boostgo/customercare/internal/care_service/adapters/smsgateway"
	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/core_domain"
)

// Dispatcher turns an order into a persisted multipart SMS submission.
type Dispatcher struct {
	messages domain.MessageRepository
	settings domain.SettingsRepository
	gateway  smsgateway.Gateway
	logger   *slog.Logger
}

func NewDispatcher(
	messages domain.MessageRepository,
	settings domain.SettingsRepository,
	gateway smsgateway.Gateway,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		messages: messages,
		settings: settings,
		gateway:  gateway,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Dispatch renders the notification for order and submits it part by part.
// The message row is written before the first part goes out so a callback
// arriving immediately always finds it. The returned message reflects the
// state at submission time; later status changes arrive via callbacks.
func (d *Dispatcher) Dispatch(ctx context.Context, order core_domain.Order) (*core_domain.Message, error) {
	cfg, err := d.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	tpl := cfg.MessageTemplate
	if tpl == "" {
		tpl = core_domain.DefaultMessageTemplate
	}
	body := core_domain.RenderTemplate(tpl, order)

	destination := order.Number
	if cfg.TestModeEnabled && cfg.TestDestination != "" {
		d.logger.InfoContext(ctx, "test mode active, redirecting message",
			"order_id", order.ID, "test_destination", cfg.TestDestination)
		destination = cfg.TestDestination
	}

	msg := &core_domain.Message{
		ID:          uuid.NewString(),
		Destination: destination,
		Body:        body,
		OrderID:     order.ID,
		Status:      core_domain.MessageStatusSending,
		CreatedAt:   time.Now().UTC(),
	}

	authorized, err := d.gateway.SendAuthorized(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check send authorization: %w", err)
	}
	if !authorized {
		d.logger.WarnContext(ctx, "gateway refused send authorization", "order_id", order.ID)
		note := "send not authorized by gateway"
		msg.Status = core_domain.MessageStatusFailed
		msg.Note = &note
		if insErr := d.messages.Insert(ctx, msg); insErr != nil {
			return nil, insErr
		}
		messagesDispatchedTotal.WithLabelValues("unauthorized").Inc()
		return msg, fmt.Errorf("send not authorized by gateway")
	}

	if err := d.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	lines, err := d.gateway.Lines(ctx)
	if err != nil {
		return msg, d.failDispatch(ctx, msg, fmt.Sprintf("failed to list lines: %v", err))
	}
	line := SelectLine(lines, destination)
	if line == nil {
		return msg, d.failDispatch(ctx, msg, "no SIM lines available")
	}

	parts := SplitMessage(body)
	for i, part := range parts {
		req := smsgateway.SendPartRequest{
			LineID:      line.ID,
			Destination: destination,
			Body:        part,
			Ref: domain.PartRef{
				MessageID: msg.ID,
				PartNo:    i + 1,
				LastPart:  i == len(parts)-1,
			},
			// One report per message is enough to settle it; the network
			// delivers all parts or none in practice.
			RequestDeliveryReport: i == len(parts)-1,
		}
		if err := d.gateway.SendPart(ctx, req); err != nil {
			return msg, d.failDispatch(ctx, msg, fmt.Sprintf("failed to submit part %d/%d: %v", i+1, len(parts), err))
		}
		messagePartsSentTotal.Inc()
	}

	var number *string
	if line.Number != "" {
		number = &line.Number
	}
	if err := d.messages.UpdateSimInfo(ctx, msg.ID, &line.ID, number); err != nil {
		// The parts are already on their way; the missing line columns are
		// cosmetic.
		d.logger.ErrorContext(ctx, "failed to backfill line info", "message_id", msg.ID, "error", err)
	}
	msg.SelectedSimID = &line.ID
	msg.OriginSimNumber = number

	d.logger.InfoContext(ctx, "message dispatched",
		"message_id", msg.ID, "order_id", order.ID, "parts", len(parts), "line_id", line.ID)
	messagesDispatchedTotal.WithLabelValues("submitted").Inc()
	return msg, nil
}

func (d *Dispatcher) failDispatch(ctx context.Context, msg *core_domain.Message, note string) error {
	d.logger.ErrorContext(ctx, "dispatch failed", "message_id", msg.ID, "reason", note)
	msg.Status = core_domain.MessageStatusFailed
	msg.Note = &note
	if err := d.messages.Update(ctx, msg); err != nil {
		d.logger.ErrorContext(ctx, "failed to record dispatch failure", "message_id", msg.ID, "error", err)
	}
	messagesDispatchedTotal.WithLabelValues("failed").Inc()
	return fmt.Errorf("%s", note)
}
