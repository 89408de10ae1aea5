package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"sales_crm/internal/domain"
	apperrors "sales_crm/pkg/errors"
	"sales_crm/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, messageID int64) (*domain.Message, error)
	Edit(ctx context.Context, messageID int64, content string) error
	SoftDelete(ctx context.Context, messageID int64) error
	ListPage(ctx context.Context, channelID int64, limit int, before *int64) ([]*domain.Message, error)
	ListThreadReplies(ctx context.Context, parentMessageID int64, limit int) ([]*domain.Message, error)
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO discuss_messages (channel_id, sender_emp_id, content, parent_message_id)
		VALUES ($1, $2, $3, $4)
		RETURNING message_id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		message.ChannelID, message.SenderEmpID, message.Content, message.ParentMessageID,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to create message", "error", err)
		return err
	}

	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, messageID int64) (*domain.Message, error) {
	query := `
		SELECT m.message_id, m.channel_id, m.sender_emp_id, m.content, m.parent_message_id,
		       m.is_edited, m.is_deleted, m.created_at, m.updated_at,
		       e.name AS sender_name, e.email AS sender_email
		FROM discuss_messages m
		JOIN employees e ON e.emp_id = m.sender_emp_id
		WHERE m.message_id = $1
	`

	m := &domain.Message{}
	err := r.db.QueryRow(ctx, query, messageID).Scan(
		&m.ID, &m.ChannelID, &m.SenderEmpID, &m.Content, &m.ParentMessageID,
		&m.IsEdited, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt,
		&m.SenderName, &m.SenderEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		r.log.Error("Failed to get message", "error", err)
		return nil, err
	}

	return m, nil
}

// Edit меняет только content и флаг is_edited; parent_message_id и is_deleted неприкосновенны
func (r *messageRepository) Edit(ctx context.Context, messageID int64, content string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE discuss_messages SET content = $2, is_edited = TRUE, updated_at = now()
		WHERE message_id = $1
	`, messageID, content)
	if err != nil {
		r.log.Error("Failed to edit message", "error", err)
	}
	return err
}

// SoftDelete помечает сообщение удаленным; строка остается адресуемой как родитель треда
func (r *messageRepository) SoftDelete(ctx context.Context, messageID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE discuss_messages SET is_deleted = TRUE, updated_at = now()
		WHERE message_id = $1
	`, messageID)
	if err != nil {
		r.log.Error("Failed to delete message", "error", err)
	}
	return err
}

// ListPage — курсорная пагинация назад: выборка по message_id DESC,
// затем разворот, чтобы вернуть хронологический порядок (старые первыми)
func (r *messageRepository) ListPage(ctx context.Context, channelID int64, limit int, before *int64) ([]*domain.Message, error) {
	safeLimit := clampLimit(limit, 50)

	query := `
		SELECT m.message_id, m.channel_id, m.sender_emp_id, m.content, m.parent_message_id,
		       m.is_edited, m.is_deleted, m.created_at, m.updated_at,
		       e.name AS sender_name, e.email AS sender_email
		FROM discuss_messages m
		JOIN employees e ON e.emp_id = m.sender_emp_id
		WHERE m.channel_id = $1 AND m.is_deleted = FALSE`
	args := []any{channelID}

	if before != nil {
		query += ` AND m.message_id < $2`
		args = append(args, *before)
	}

	// LIMIT подставляется проверенным числом, не плейсхолдером
	query += fmt.Sprintf(` ORDER BY m.message_id DESC LIMIT %d`, safeLimit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to get messages", "error", err)
		return nil, err
	}
	defer rows.Close()

	messages, err := r.scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Разворот в хронологический порядок
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *messageRepository) ListThreadReplies(ctx context.Context, parentMessageID int64, limit int) ([]*domain.Message, error) {
	safeLimit := clampLimit(limit, 50)

	query := fmt.Sprintf(`
		SELECT m.message_id, m.channel_id, m.sender_emp_id, m.content, m.parent_message_id,
		       m.is_edited, m.is_deleted, m.created_at, m.updated_at,
		       e.name AS sender_name, e.email AS sender_email
		FROM discuss_messages m
		JOIN employees e ON e.emp_id = m.sender_emp_id
		WHERE m.parent_message_id = $1 AND m.is_deleted = FALSE
		ORDER BY m.message_id ASC
		LIMIT %d
	`, safeLimit)

	rows, err := r.db.Query(ctx, query, parentMessageID)
	if err != nil {
		r.log.Error("Failed to get thread replies", "error", err)
		return nil, err
	}
	defer rows.Close()

	return r.scanMessages(rows)
}

func (r *messageRepository) scanMessages(rows pgx.Rows) ([]*domain.Message, error) {
	var messages []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		err := rows.Scan(
			&m.ID, &m.ChannelID, &m.SenderEmpID, &m.Content, &m.ParentMessageID,
			&m.IsEdited, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt,
			&m.SenderName, &m.SenderEmail,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
