// Package telegram delivers operator notifications through the Telegram Bot
// API. Delivery is best-effort: a misconfigured or failing bot must never
// disturb message processing.
package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/boostgo/customercare/internal/care_service/domain"
)

const defaultAPIBaseURL = "https://api.telegram.org"

type Notifier struct {
	logger     *slog.Logger
	client     *resty.Client
	settings   domain.SettingsRepository
	apiBaseURL string
}

// NewNotifier builds a notifier that reads the bot token and chat id from
// the settings repository on every send, so operator changes take effect
// without a restart. apiBaseURL overrides the Telegram endpoint in tests;
// pass "" for the real API.
func NewNotifier(logger *slog.Logger, settings domain.SettingsRepository, apiBaseURL string) *Notifier {
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	client := resty.New().SetTimeout(15 * time.Second)
	return &Notifier{
		logger:     logger.With("component", "telegram_notifier"),
		client:     client,
		settings:   settings,
		apiBaseURL: apiBaseURL,
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	ParseMode string `json:"parse_mode"`
	Text      string `json:"text"`
}

// Send posts text as an HTML-formatted message to the configured chat.
// Failures are logged and swallowed.
func (n *Notifier) Send(ctx context.Context, text string) {
	cfg, err := n.settings.Get(ctx)
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to load settings for notification", "error", err)
		return
	}
	if !cfg.TelegramConfigured() {
		n.logger.WarnContext(ctx, "telegram not configured, dropping notification")
		return
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendMessageRequest{ChatID: cfg.TelegramChatID, ParseMode: "HTML", Text: text}).
		Post(n.apiBaseURL + "/bot" + cfg.TelegramBotToken + "/sendMessage")
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to send telegram notification", "error", err)
		return
	}
	if resp.IsError() {
		n.logger.WarnContext(ctx, "telegram rejected notification", "status_code", resp.StatusCode())
		return
	}
	n.logger.InfoContext(ctx, "telegram notification sent")
}
