package domain

import (
	"context"
	"errors"

	"github.com/boostgo/customercare/internal/core_domain"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrSettingsNotFound = errors.New("settings not found")
)

// MessageRepository persists outbound message attempts and their lifecycle.
type MessageRepository interface {
	Insert(ctx context.Context, msg *core_domain.Message) error
	// Update rewrites the whole row identified by msg.ID.
	Update(ctx context.Context, msg *core_domain.Message) error
	// UpdateSimInfo backfills only the transmitting-line columns, leaving
	// status and timestamps untouched. Callback processing may have already
	// advanced the row by the time line resolution completes.
	UpdateSimInfo(ctx context.Context, id string, selectedSimID, originSimNumber *string) error
	GetByID(ctx context.Context, id string) (*core_domain.Message, error)
	// GetMostRecentByDestination returns the newest message whose destination
	// equals any of the candidate spellings, or ErrMessageNotFound.
	GetMostRecentByDestination(ctx context.Context, candidates []string) (*core_domain.Message, error)
	// List returns messages newest-first, optionally filtered by status.
	List(ctx context.Context, status *core_domain.MessageStatus, limit int) ([]core_domain.Message, error)
	DeleteAll(ctx context.Context) error
}

// SettingsRepository stores the single mutable settings row.
type SettingsRepository interface {
	// Get returns the stored settings, seeding and returning the defaults
	// when no row exists yet.
	Get(ctx context.Context) (core_domain.Settings, error)
	Put(ctx context.Context, s core_domain.Settings) error
}
