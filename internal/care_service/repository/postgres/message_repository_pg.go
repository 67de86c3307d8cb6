package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/boostgo/customercare/internal/care_service/domain"
	"github.com/boostgo/customercare/internal/core_domain"
)

// DBPool is the subset of pgxpool.Pool the repositories use. pgxmock's
// PgxPoolIface satisfies it too.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgMessageRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewPgMessageRepository(db DBPool, logger *slog.Logger) domain.MessageRepository {
	return &PgMessageRepository{db: db, logger: logger.With("component", "message_repository_pg")}
}

const messageColumns = `id, destination, body, order_id, status, note, selected_sim_id, origin_sim_number, created_at, delivered_at`

func scanMessage(row pgx.Row) (*core_domain.Message, error) {
	var m core_domain.Message
	err := row.Scan(
		&m.ID,
		&m.Destination,
		&m.Body,
		&m.OrderID,
		&m.Status,
		&m.Note,
		&m.SelectedSimID,
		&m.OriginSimNumber,
		&m.CreatedAt,
		&m.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgMessageRepository) Insert(ctx context.Context, msg *core_domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO sms_messages (id, destination, body, order_id, status, note, selected_sim_id, origin_sim_number, created_at, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.Destination, msg.Body, msg.OrderID, msg.Status, msg.Note,
		msg.SelectedSimID, msg.OriginSimNumber, msg.CreatedAt, msg.DeliveredAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to insert message", "message_id", msg.ID, "error", err)
		return err
	}
	return nil
}

func (r *PgMessageRepository) Update(ctx context.Context, msg *core_domain.Message) error {
	query := `
		UPDATE sms_messages
		SET destination = $2, body = $3, order_id = $4, status = $5, note = $6,
		    selected_sim_id = $7, origin_sim_number = $8, delivered_at = $9
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		msg.ID, msg.Destination, msg.Body, msg.OrderID, msg.Status, msg.Note,
		msg.SelectedSimID, msg.OriginSimNumber, msg.DeliveredAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to update message", "message_id", msg.ID, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// UpdateSimInfo touches only the line columns so a concurrent status update
// from a callback consumer is never overwritten.
func (r *PgMessageRepository) UpdateSimInfo(ctx context.Context, id string, selectedSimID, originSimNumber *string) error {
	query := `
		UPDATE sms_messages
		SET selected_sim_id = COALESCE($2, selected_sim_id),
		    origin_sim_number = COALESCE($3, origin_sim_number)
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, selectedSimID, originSimNumber)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to update message sim info", "message_id", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *PgMessageRepository) GetByID(ctx context.Context, id string) (*core_domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM sms_messages WHERE id = $1`
	msg, err := scanMessage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		r.logger.ErrorContext(ctx, "failed to get message by id", "message_id", id, "error", err)
		return nil, err
	}
	return msg, nil
}

func (r *PgMessageRepository) GetMostRecentByDestination(ctx context.Context, candidates []string) (*core_domain.Message, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrMessageNotFound
	}
	query := `
		SELECT ` + messageColumns + `
		FROM sms_messages
		WHERE destination = ANY($1)
		ORDER BY created_at DESC
		LIMIT 1
	`
	msg, err := scanMessage(r.db.QueryRow(ctx, query, candidates))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		r.logger.ErrorContext(ctx, "failed to get message by destination", "error", err)
		return nil, err
	}
	return msg, nil
}

func (r *PgMessageRepository) List(ctx context.Context, status *core_domain.MessageStatus, limit int) ([]core_domain.Message, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status != nil {
		query := `SELECT ` + messageColumns + ` FROM sms_messages WHERE status = $1 ORDER BY created_at DESC LIMIT $2`
		rows, err = r.db.Query(ctx, query, *status, limit)
	} else {
		query := `SELECT ` + messageColumns + ` FROM sms_messages ORDER BY created_at DESC LIMIT $1`
		rows, err = r.db.Query(ctx, query, limit)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to list messages", "error", err)
		return nil, err
	}
	defer rows.Close()

	var messages []core_domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PgMessageRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sms_messages`)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to clear messages", "error", err)
	}
	return err
}
