package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/workbot/internal/core"
	"github.com/sandevgo/workbot/pkg/log"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

// AddMessage stores msg, assigning an ID and timestamp when they are unset.
func (h *MessagesRepo) AddMessage(ctx context.Context, sessionID string, msg *core.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	status, blob, err := encodeEmbedding(msg.Embedding)
	if err != nil {
		return err
	}

	query := `INSERT INTO messages (id, session_id, role, content, created_at, embedding_status, embedding) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := h.db.ExecContext(ctx, query, msg.ID, sessionID, msg.Role, msg.Content, msg.CreatedAt.UnixNano(), status, blob); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetMessages returns the last limit messages of the session, oldest first.
func (h *MessagesRepo) GetMessages(ctx context.Context, sessionID string, limit int) ([]*core.Message, error) {
	// Fetch the LAST 'limit' messages by ordering DESC
	query := `SELECT id, role, content, created_at, embedding_status, embedding FROM messages
		WHERE session_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`

	messages, err := h.query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}

	// Back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

// GetUnembeddedMessages returns up to limit messages across all sessions whose
// embedding was never attempted, oldest first.
func (h *MessagesRepo) GetUnembeddedMessages(ctx context.Context, limit int) ([]*core.Message, error) {
	query := `SELECT id, role, content, created_at, embedding_status, embedding FROM messages
		WHERE embedding_status = ? ORDER BY created_at, rowid LIMIT ?`
	return h.query(ctx, query, int(core.EmbeddingNotAttempted), limit)
}

func (h *MessagesRepo) UpdateEmbeddings(ctx context.Context, updates []core.EmbeddingUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE messages SET embedding_status = ?, embedding = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare embedding update: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		status, blob, err := encodeEmbedding(u.Embedding)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, status, blob, u.MessageID); err != nil {
			return fmt.Errorf("failed to update embedding of %s: %w", u.MessageID, err)
		}
	}

	return tx.Commit()
}

func (h *MessagesRepo) query(ctx context.Context, query string, args ...any) ([]*core.Message, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*core.Message
	for rows.Next() {
		var (
			msg       core.Message
			createdAt int64
			status    int
			blob      []byte
		)
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &createdAt, &status, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg.CreatedAt = time.Unix(0, createdAt)
		msg.Embedding, err = decodeEmbedding(core.EmbeddingStatus(status), blob)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", msg.ID, err)
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func encodeEmbedding(e core.Embedding) (int, []byte, error) {
	vec, ok := e.Vector()
	if !ok {
		return int(e.Status()), nil, nil
	}
	blob, err := serializeVector(vec)
	if err != nil {
		return 0, nil, err
	}
	return int(e.Status()), blob, nil
}

func decodeEmbedding(status core.EmbeddingStatus, blob []byte) (core.Embedding, error) {
	switch status {
	case core.EmbeddingSucceeded:
		vec, err := deserializeVector(blob)
		if err != nil {
			return core.Embedding{}, err
		}
		return core.Embedded(vec), nil
	case core.EmbeddingFailed:
		return core.FailedEmbedding(), nil
	default:
		return core.NotAttempted(), nil
	}
}
