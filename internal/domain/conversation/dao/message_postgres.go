package dao

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/campus-market/internal/domain/conversation/entity"
)

const messageColumns = `id, conversation_id, sender_id, body, message_type, created_at`

// MessagePostgres implements message repository for PostgreSQL
type MessagePostgres struct {
	pool *pgxpool.Pool
}

// NewMessagePostgres creates a new PostgreSQL message repository
func NewMessagePostgres(pool *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{pool: pool}
}

// Create inserts a new message and assigns its ID
func (r *MessagePostgres) Create(ctx context.Context, msg *entity.Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	id := uuid.New().String()
	_, err := r.pool.Exec(ctx, query,
		id,
		msg.ConversationID,
		msg.SenderID,
		msg.Body,
		string(msg.Type),
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	msg.ID = id
	return nil
}

// GetByIDs retrieves messages for a set of IDs
func (r *MessagePostgres) GetByIDs(ctx context.Context, ids []string) ([]entity.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ANY($1) ORDER BY created_at, seq`, ids)
}

// GetByConversationID retrieves a conversation's messages, oldest first.
// seq breaks created_at ties in insertion order.
func (r *MessagePostgres) GetByConversationID(ctx context.Context, conversationID string) ([]entity.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE conversation_id = $1 ORDER BY created_at, seq`
	return r.query(ctx, query, conversationID)
}

// DeleteBySenderID removes every message a user sent
func (r *MessagePostgres) DeleteBySenderID(ctx context.Context, senderID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE sender_id = $1`, senderID)
	if err != nil {
		return 0, fmt.Errorf("deleting messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *MessagePostgres) query(ctx context.Context, query string, args ...interface{}) ([]entity.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []entity.Message
	for rows.Next() {
		var (
			msg     entity.Message
			msgType string
		)
		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderID,
			&msg.Body,
			&msgType,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		msg.Type = entity.MessageType(msgType)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}
