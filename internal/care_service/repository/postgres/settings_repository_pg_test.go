package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/core_domain"
)

func setupSettingsRepoTest(t *testing.T) (domain.SettingsRepository, pgxmock.PgxPoolIface) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewPgSettingsRepository(mockPool, logger)
	return repo, mockPool
}

const settingsCols = `test_mode_enabled, test_destination, message_template, telegram_bot_token, telegram_chat_id`

func TestPgSettingsRepository_Get(t *testing.T) {
	repo, mockPool := setupSettingsRepoTest(t)
	defer mockPool.Close()

	rows := mockPool.NewRows([]string{"test_mode_enabled", "test_destination", "message_template",
		"telegram_bot_token", "telegram_chat_id"}).
		AddRow(true, "0900000000", "hi {name}", "123:abc", "-100")

	mockPool.ExpectQuery(`SELECT ` + settingsCols + ` FROM care_settings WHERE id = 1`).
		WillReturnRows(rows)

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, got.TestModeEnabled)
	assert.Equal(t, "0900000000", got.TestDestination)
	assert.Equal(t, "hi {name}", got.MessageTemplate)
	assert.Equal(t, "123:abc", got.TelegramBotToken)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgSettingsRepository_Get_SeedsDefaultsOnFirstRead(t *testing.T) {
	repo, mockPool := setupSettingsRepoTest(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT ` + settingsCols + ` FROM care_settings WHERE id = 1`).
		WillReturnError(pgx.ErrNoRows)

	defaults := core_domain.DefaultSettings()
	mockPool.ExpectExec(`INSERT INTO care_settings`).
		WithArgs(defaults.TestModeEnabled, defaults.TestDestination, defaults.MessageTemplate,
			defaults.TelegramBotToken, defaults.TelegramChatID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaults, got)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgSettingsRepository_Put(t *testing.T) {
	repo, mockPool := setupSettingsRepoTest(t)
	defer mockPool.Close()

	s := core_domain.Settings{
		TestModeEnabled:  true,
		TestDestination:  "0900000000",
		MessageTemplate:  "hi",
		TelegramBotToken: "t",
		TelegramChatID:   "c",
	}
	mockPool.ExpectExec(`INSERT INTO care_settings`).
		WithArgs(s.TestModeEnabled, s.TestDestination, s.MessageTemplate, s.TelegramBotToken, s.TelegramChatID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Put(context.Background(), s))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
