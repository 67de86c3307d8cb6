package core_domain

import (
	"strconv"
	"strings"
	"time"
)

// MessageStatus defines the lifecycle states of an outbound SMS attempt.
//
// Valid transitions: Sending -> Sent | Delivered | Failed,
// Sent -> Delivered | Failed. Delivered and Failed are terminal. A delivery
// report can overtake the sent callback, so Sending -> Delivered is legal;
// the reordered sent callback is then dropped by the terminal guard.
type MessageStatus string

const (
	MessageStatusSending   MessageStatus = "Sending"
	MessageStatusSent      MessageStatus = "Sent"
	MessageStatusDelivered MessageStatus = "Delivered"
	MessageStatusFailed    MessageStatus = "Failed"
)

// IsTerminal reports whether no further transitions are expected.
func (s MessageStatus) IsTerminal() bool {
	return s == MessageStatusDelivered || s == MessageStatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Self-transitions are allowed so replayed callbacks stay idempotent.
func (s MessageStatus) CanTransition(next MessageStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case MessageStatusSending:
		return next == MessageStatusSent || next == MessageStatusDelivered ||
			next == MessageStatusFailed
	case MessageStatusSent:
		return next == MessageStatusDelivered || next == MessageStatusFailed
	default:
		return false
	}
}

// Message is one outbound SMS attempt and its lifecycle status, persisted
// independently of the order that triggered it.
type Message struct {
	ID          string        `json:"id"` // UUID
	Destination string        `json:"destination"`
	Body        string        `json:"body"`
	OrderID     string        `json:"order_id"` // empty (never null) when not tied to an order
	Status      MessageStatus `json:"status"`
	// Note carries a human-readable failure reason, e.g. a denied send
	// authorization; nil on the happy path.
	Note *string `json:"note,omitempty"`
	// SelectedSimID and OriginSimNumber identify the transmitting line.
	// They are backfilled after submission and may stay unset when the send
	// failed before line resolution.
	SelectedSimID   *string    `json:"selected_sim_id,omitempty"`
	OriginSimNumber *string    `json:"origin_sim_number,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"` // set only on the transition into Delivered
}

// Settings is the single-row mutable configuration.
type Settings struct {
	TestModeEnabled  bool   `json:"test_mode_enabled"`
	TestDestination  string `json:"test_destination"`
	MessageTemplate  string `json:"message_template"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
}

// TelegramConfigured reports whether the notification sink has everything it
// needs; when false the sink degrades to a logged no-op.
func (s Settings) TelegramConfigured() bool {
	return s.TelegramBotToken != "" && s.TelegramChatID != ""
}

// DefaultMessageTemplate is the message sent to customers when no template
// has been configured yet.
const DefaultMessageTemplate = `Cảm ơn A/C đã đặt hàng {description}.
Shop đã tiếp nhận đơn hàng & gửi theo địa chỉ: {address}.
Đơn hàng được gửi từ kho Bach Linh, dự kiến giao từ 3–5 ngày.
A/C vui lòng để ý điện thoại giúp Shop ạ.
Mọi thắc mắc LH: 0973807248`

// DefaultSettings seeds the configuration row on first read.
func DefaultSettings() Settings {
	return Settings{
		TestModeEnabled: false,
		TestDestination: "",
		MessageTemplate: DefaultMessageTemplate,
	}
}

// Order is an externally-sourced record describing a customer purchase that
// requires an SMS notification. Read-only to this service.
type Order struct {
	ID          string `json:"orderId"`
	Name        string `json:"name"`
	Number      string `json:"number"`
	Address     string `json:"address"`
	OrderTime   string `json:"order_time"`
	Quantity    int    `json:"quantity"`
	COD         int    `json:"cod"`
	Description string `json:"description"`
	Status      int    `json:"status"`
}

// OrderStatusNotified is the upstream status code reported once a message
// for the order was delivered.
const OrderStatusNotified = "3"

// RenderTemplate substitutes the order fields into the message template.
// Replacement is literal substring replacement with no escaping; a field
// value that itself contains a placeholder token is left as-is after the
// first pass.
func RenderTemplate(tpl string, o Order) string {
	r := strings.NewReplacer(
		"{description}", o.Description,
		"{address}", o.Address,
		"{name}", o.Name,
		"{quantity}", strconv.Itoa(o.Quantity),
		"{cod}", strconv.Itoa(o.COD),
	)
	return r.Replace(tpl)
}
