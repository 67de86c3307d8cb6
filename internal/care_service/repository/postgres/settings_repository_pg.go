package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/core_domain"
)

type PgSettingsRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewPgSettingsRepository(db DBPool, logger *slog.Logger) domain.SettingsRepository {
	return &PgSettingsRepository{db: db, logger: logger.With("component", "settings_repository_pg")}
}

// Get reads the single settings row. On first use no row exists; the
// defaults are stored and returned so later reads and writes see one row.
func (r *PgSettingsRepository) Get(ctx context.Context) (core_domain.Settings, error) {
	var s core_domain.Settings
	query := `
		SELECT test_mode_enabled, test_destination, message_template, telegram_bot_token, telegram_chat_id
		FROM care_settings WHERE id = 1
	`
	err := r.db.QueryRow(ctx, query).Scan(
		&s.TestModeEnabled,
		&s.TestDestination,
		&s.MessageTemplate,
		&s.TelegramBotToken,
		&s.TelegramChatID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			defaults := core_domain.DefaultSettings()
			if putErr := r.Put(ctx, defaults); putErr != nil {
				return core_domain.Settings{}, putErr
			}
			return defaults, nil
		}
		r.logger.ErrorContext(ctx, "failed to get settings", "error", err)
		return core_domain.Settings{}, err
	}
	return s, nil
}

func (r *PgSettingsRepository) Put(ctx context.Context, s core_domain.Settings) error {
	query := `
		INSERT INTO care_settings (id, test_mode_enabled, test_destination, message_template, telegram_bot_token, telegram_chat_id)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			test_mode_enabled = EXCLUDED.test_mode_enabled,
			test_destination = EXCLUDED.test_destination,
			message_template = EXCLUDED.message_template,
			telegram_bot_token = EXCLUDED.telegram_bot_token,
			telegram_chat_id = EXCLUDED.telegram_chat_id
	`
	_, err := r.db.Exec(ctx, query,
		s.TestModeEnabled, s.TestDestination, s.MessageTemplate, s.TelegramBotToken, s.TelegramChatID,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to store settings", "error", err)
	}
	return err
}
