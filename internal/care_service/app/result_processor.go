package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/boostgo/customercare/internal/care_service/adapters/smsgateway"
	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/core_domain"
)

// ResultProcessor reconciles gateway callbacks with stored messages and runs
// the side effects: order status reporting on delivery, and on delivery
// failure an operator alert plus one balance probe per message.
type ResultProcessor struct {
	messages  domain.MessageRepository
	orders    OrderClient
	gateway   smsgateway.Gateway
	notifier  NotificationSink
	alerter   Alerter
	alerted   *seenSet
	threshold int64
	ussdCode  string
	logger    *slog.Logger
}

func NewResultProcessor(
	messages domain.MessageRepository,
	orders OrderClient,
	gateway smsgateway.Gateway,
	notifier NotificationSink,
	alerter Alerter,
	lowBalanceThreshold int64,
	ussdCode string,
	logger *slog.Logger,
) *ResultProcessor {
	return &ResultProcessor{
		messages:  messages,
		orders:    orders,
		gateway:   gateway,
		notifier:  notifier,
		alerter:   alerter,
		alerted:   newSeenSet(defaultSeenCapacity),
		threshold: lowBalanceThreshold,
		ussdCode:  ussdCode,
		logger:    logger.With("component", "result_processor"),
	}
}

// ProcessSentEvent applies a network acceptance callback. Only the last part
// of a message decides the outcome; earlier parts are acknowledged and
// dropped.
func (p *ResultProcessor) ProcessSentEvent(ctx context.Context, ev domain.SentEvent) error {
	if !ev.Ref.LastPart {
		p.logger.DebugContext(ctx, "ignoring non-final part result",
			"message_id", ev.Ref.MessageID, "part_no", ev.Ref.PartNo)
		return nil
	}

	msg, err := p.messages.GetByID(ctx, ev.Ref.MessageID)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			p.logger.WarnContext(ctx, "sent event for unknown message", "message_id", ev.Ref.MessageID)
			return nil
		}
		return err
	}

	target := core_domain.MessageStatusSent
	if ev.ResultCode != domain.SentResultOK {
		target = core_domain.MessageStatusFailed
	}
	if !msg.Status.CanTransition(target) {
		p.logger.InfoContext(ctx, "dropping stale sent event",
			"message_id", msg.ID, "current_status", msg.Status, "target_status", target)
		return nil
	}
	if msg.Status == target {
		return nil
	}

	msg.Status = target
	if target == core_domain.MessageStatusFailed {
		note := fmt.Sprintf("send failed with result code %d", ev.ResultCode)
		msg.Note = &note
	}
	if err := p.messages.Update(ctx, msg); err != nil {
		return err
	}
	sentEventsTotal.WithLabelValues(string(target)).Inc()
	p.logger.InfoContext(ctx, "sent event applied", "message_id", msg.ID, "status", target)

	// The alert and balance probe belong to the delivery path; a transport
	// rejection records the failure and nothing else.
	return nil
}

// ProcessDeliveryEvent applies a handset delivery report.
func (p *ResultProcessor) ProcessDeliveryEvent(ctx context.Context, ev domain.DeliveryEvent) error {
	msg, err := p.messages.GetByID(ctx, ev.MessageID)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			p.logger.WarnContext(ctx, "delivery event for unknown message", "message_id", ev.MessageID)
			return nil
		}
		return err
	}

	switch {
	case ev.Status == domain.DeliveryStatusComplete:
		return p.applyDelivered(ctx, msg)
	case ev.Status >= domain.DeliveryStatusFirstFailed:
		return p.applyDeliveryFailed(ctx, msg, ev)
	default:
		// Intermediate report; a final one follows.
		p.logger.DebugContext(ctx, "ignoring pending delivery report",
			"message_id", msg.ID, "delivery_status", ev.Status)
		return nil
	}
}

func (p *ResultProcessor) applyDelivered(ctx context.Context, msg *core_domain.Message) error {
	if msg.Status == core_domain.MessageStatusDelivered {
		// Replayed report; the order was already notified.
		return nil
	}
	if !msg.Status.CanTransition(core_domain.MessageStatusDelivered) {
		p.logger.InfoContext(ctx, "dropping delivery report in terminal state",
			"message_id", msg.ID, "current_status", msg.Status)
		return nil
	}

	now := time.Now().UTC()
	msg.Status = core_domain.MessageStatusDelivered
	msg.DeliveredAt = &now
	if err := p.messages.Update(ctx, msg); err != nil {
		return err
	}
	deliveryEventsTotal.WithLabelValues(string(core_domain.MessageStatusDelivered)).Inc()
	p.logger.InfoContext(ctx, "message delivered", "message_id", msg.ID, "order_id", msg.OrderID)

	if msg.OrderID != "" {
		if err := p.orders.MarkOrderStatus(ctx, msg.OrderID, core_domain.OrderStatusNotified); err != nil {
			p.logger.ErrorContext(ctx, "failed to report order delivery",
				"message_id", msg.ID, "order_id", msg.OrderID, "error", err)
		}
	}
	return nil
}

func (p *ResultProcessor) applyDeliveryFailed(ctx context.Context, msg *core_domain.Message, ev domain.DeliveryEvent) error {
	if !msg.Status.CanTransition(core_domain.MessageStatusFailed) || msg.Status == core_domain.MessageStatusFailed {
		return nil
	}
	note := fmt.Sprintf("delivery failed with status %d", ev.Status)
	msg.Status = core_domain.MessageStatusFailed
	msg.Note = &note
	if err := p.messages.Update(ctx, msg); err != nil {
		return err
	}
	deliveryEventsTotal.WithLabelValues(string(core_domain.MessageStatusFailed)).Inc()
	p.logger.WarnContext(ctx, "message delivery failed",
		"message_id", msg.ID, "delivery_status", ev.Status)

	p.onDeliveryFailed(ctx, msg, ev.LineID)
	return nil
}

// onDeliveryFailed raises the operator alert and probes the SIM balance, at
// most once per message for the lifetime of the process even when the
// failure report is replayed.
func (p *ResultProcessor) onDeliveryFailed(ctx context.Context, msg *core_domain.Message, lineID string) {
	if !p.alerted.Add(msg.ID) {
		return
	}
	p.alerter.FailureAlert(ctx)

	if lineID == "" && msg.SelectedSimID != nil {
		lineID = *msg.SelectedSimID
	}
	if lineID == "" {
		p.logger.WarnContext(ctx, "no line known for balance probe", "message_id", msg.ID)
		return
	}

	raw, err := p.gateway.RunUSSD(ctx, lineID, p.ussdCode)
	if err != nil {
		balanceProbesTotal.WithLabelValues("error").Inc()
		p.logger.ErrorContext(ctx, "balance probe failed", "line_id", lineID, "error", err)
		return
	}
	info := ParseBalanceResponse(raw)
	if !info.LowBalance(p.threshold) {
		balanceProbesTotal.WithLabelValues("ok").Inc()
		return
	}
	balanceProbesTotal.WithLabelValues("low_balance").Inc()
	p.logger.WarnContext(ctx, "low SIM balance detected", "line_id", lineID)
	p.notifier.Send(ctx, buildLowBalanceMessage(info, time.Now()))
}
