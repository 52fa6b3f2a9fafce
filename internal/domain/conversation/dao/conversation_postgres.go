package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/campus-market/internal/database"
	"github.com/vadim/campus-market/internal/domain/conversation/entity"
)

const conversationColumns = `id, participants, item_id, last_message_id, last_updated, created_at, is_archived`

// ConversationPostgres implements conversation repository for PostgreSQL
type ConversationPostgres struct {
	pool *pgxpool.Pool
}

// NewConversationPostgres creates a new PostgreSQL conversation repository
func NewConversationPostgres(pool *pgxpool.Pool) *ConversationPostgres {
	return &ConversationPostgres{pool: pool}
}

// Create inserts a new conversation and assigns its ID
func (r *ConversationPostgres) Create(ctx context.Context, conv *entity.Conversation) error {
	query := `
		INSERT INTO conversations (` + conversationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id := uuid.New().String()
	_, err := r.pool.Exec(ctx, query,
		id,
		conv.Participants,
		database.NullableString(conv.ItemID),
		database.NullableString(conv.LastMessageID),
		conv.LastUpdated,
		conv.CreatedAt,
		conv.IsArchived,
	)
	if err != nil {
		return fmt.Errorf("inserting conversation: %w", err)
	}

	conv.ID = id
	return nil
}

// GetByID retrieves a conversation by ID
func (r *ConversationPostgres) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	return scanConversation(row)
}

// FindByParticipants retrieves the conversation held by exactly a and b
func (r *ConversationPostgres) FindByParticipants(ctx context.Context, a, b string) (*entity.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE participants @> ARRAY[$1, $2]::text[] AND cardinality(participants) = 2
		ORDER BY created_at
		LIMIT 1
	`
	row := r.pool.QueryRow(ctx, query, a, b)
	return scanConversation(row)
}

// GetByParticipantID retrieves every conversation a user takes part in, most recent first
func (r *ConversationPostgres) GetByParticipantID(ctx context.Context, userID string) ([]entity.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE participants @> ARRAY[$1]::text[]
		ORDER BY last_updated DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var convs []entity.Conversation
	for rows.Next() {
		conv, err := scanConversationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversation row: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}
	return convs, nil
}

// SetItem points the conversation at another item
func (r *ConversationPostgres) SetItem(ctx context.Context, id, itemID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE conversations SET item_id = $2 WHERE id = $1`, id, database.NullableString(itemID))
	if err != nil {
		return fmt.Errorf("updating conversation item: %w", err)
	}
	return nil
}

// SetLastMessage records the latest message and its time
func (r *ConversationPostgres) SetLastMessage(ctx context.Context, id, messageID string, at time.Time) error {
	query := `UPDATE conversations SET last_message_id = $2, last_updated = $3 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id, database.NullableString(messageID), at); err != nil {
		return fmt.Errorf("updating conversation last message: %w", err)
	}
	return nil
}

// DeleteByParticipantID removes every conversation a user takes part in
func (r *ConversationPostgres) DeleteByParticipantID(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM conversations WHERE participants @> ARRAY[$1]::text[]`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting conversations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanConversation(row pgx.Row) (*entity.Conversation, error) {
	conv, err := scanConversationRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}
	return &conv, nil
}

func scanConversationRow(row pgx.Row) (entity.Conversation, error) {
	var (
		conv          entity.Conversation
		itemID        *string
		lastMessageID *string
	)
	err := row.Scan(
		&conv.ID,
		&conv.Participants,
		&itemID,
		&lastMessageID,
		&conv.LastUpdated,
		&conv.CreatedAt,
		&conv.IsArchived,
	)
	conv.ItemID = database.StringOrEmpty(itemID)
	conv.LastMessageID = database.StringOrEmpty(lastMessageID)
	return conv, err
}
