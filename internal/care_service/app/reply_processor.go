package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/core_domain"
)

// ReplyProcessor correlates incoming SMS with the most recent outbound
// message to the sender and forwards the reply to the operator.
type ReplyProcessor struct {
	messages domain.MessageRepository
	notifier NotificationSink
	logger   *slog.Logger
}

func NewReplyProcessor(messages domain.MessageRepository, notifier NotificationSink, logger *slog.Logger) *ReplyProcessor {
	return &ReplyProcessor{
		messages: messages,
		notifier: notifier,
		logger:   logger.With("component", "reply_processor"),
	}
}

// ProcessIncomingSMS looks up the sender across its possible spellings and
// notifies the operator either with order context or as an unknown reply.
func (p *ReplyProcessor) ProcessIncomingSMS(ctx context.Context, sms domain.IncomingSMS) error {
	candidates := CandidateNumbers(sms.Sender)
	msg, err := p.messages.GetMostRecentByDestination(ctx, candidates)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			p.logger.InfoContext(ctx, "reply from unknown sender", "sender", sms.Sender)
			repliesTotal.WithLabelValues("unknown").Inc()
			p.notifier.Send(ctx, buildUnknownReplyMessage(sms.Sender, sms.Body, time.Now()))
			return nil
		}
		return err
	}

	p.logger.InfoContext(ctx, "customer reply correlated",
		"sender", sms.Sender, "message_id", msg.ID, "order_id", msg.OrderID)
	repliesTotal.WithLabelValues("correlated").Inc()
	p.notifier.Send(ctx, buildReplyReceivedMessage(msg, sms.Body, time.Now()))
	return nil
}

// CandidateNumbers expands a sender address into the spellings an outbound
// destination may have been stored under. Vietnamese numbers arrive as
// +84xxx, 84xxx or 0xxx depending on the network path.
func CandidateNumbers(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, trimmed)

	national := digits
	if strings.HasPrefix(national, "84") {
		national = national[2:]
	} else {
		national = strings.TrimPrefix(national, "0")
	}

	candidates := []string{trimmed, digits}
	if national != "" {
		candidates = append(candidates,
			"+84"+national,
			"84"+national,
			"0"+national,
			national,
		)
	}

	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func buildReplyReceivedMessage(msg *core_domain.Message, reply string, now time.Time) string {
	return fmt.Sprintf(`🔔 <b>SMS Reply Received</b>

📋 <b>Order Information:</b>
• Order ID: <code>%s</code>
• Phone: <code>%s</code>
• Status: <code>%s</code>

💬 <b>Customer Reply:</b>
<i>%s</i>

⏰ <b>Timestamp:</b> %s`, msg.OrderID, msg.Destination, msg.Status, reply, now.Format(notifyTimeLayout))
}

func buildUnknownReplyMessage(sender, reply string, now time.Time) string {
	return fmt.Sprintf(`🔔 <b>Unknown SMS Reply</b>
📱 <b>Phone Number:</b> <code>%s</code>
💬 <b>Message:</b> <i>%s</i>
⚠️ <b>Note:</b> No previous order found for this number

⏰ <b>Timestamp:</b> %s`, sender, reply, now.Format(notifyTimeLayout))
}
