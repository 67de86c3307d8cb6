package http

import (
	"github.com/boostgo/customercare/internal/core_domain"
)

// Gateway callback DTOs. The line id comes from the URL, everything else
// from the JSON body.

type SentCallbackRequest struct {
	MessageID  string `json:"message_id" validate:"required,uuid4"`
	PartNo     int    `json:"part_no" validate:"required,min=1"`
	LastPart   bool   `json:"last_part"`
	ResultCode int    `json:"result_code"`
}

type DeliveryCallbackRequest struct {
	MessageID string `json:"message_id" validate:"required,uuid4"`
	Status    int    `json:"status" validate:"min=0"`
}

type IncomingSMSRequest struct {
	Sender string `json:"sender" validate:"required"`
	Body   string `json:"body"`
}

// Admin DTOs.

type SettingsResponse struct {
	TestModeEnabled  bool   `json:"test_mode_enabled"`
	TestDestination  string `json:"test_destination"`
	MessageTemplate  string `json:"message_template"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
}

type UpdateSettingsRequest struct {
	TestModeEnabled  bool   `json:"test_mode_enabled"`
	TestDestination  string `json:"test_destination" validate:"required_if=TestModeEnabled true"`
	MessageTemplate  string `json:"message_template"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
}

type PollingStatusResponse struct {
	Running bool `json:"running"`
}

type ListMessagesResponse struct {
	Messages []core_domain.Message `json:"messages"`
}
