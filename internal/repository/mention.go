package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"sales_crm/internal/domain"
	"sales_crm/pkg/logger"
)

type MentionRepository interface {
	CreateBulk(ctx context.Context, messageID int64, mentions []domain.Mention) error
	DeleteForMessage(ctx context.Context, messageID int64) error
	ForMessage(ctx context.Context, messageID int64) ([]*domain.ResolvedMention, error)
	ForEmployee(ctx context.Context, empID int64, limit int) ([]*domain.MentionFeedItem, error)
	Search(ctx context.Context, companyID, empID int64, query string, limit int) ([]*domain.MentionFeedItem, error)
}

type mentionRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMentionRepository(db *pgxpool.Pool, log logger.Logger) MentionRepository {
	return &mentionRepository{db: db, log: log}
}

func (r *mentionRepository) CreateBulk(ctx context.Context, messageID int64, mentions []domain.Mention) error {
	if len(mentions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range mentions {
		batch.Queue(`
			INSERT INTO discuss_mentions (message_id, mention_type, ref_id) VALUES ($1, $2, $3)
		`, messageID, m.Type, m.RefID)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		r.log.Error("Failed to create mentions", "error", err)
		return err
	}
	return nil
}

func (r *mentionRepository) DeleteForMessage(ctx context.Context, messageID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM discuss_mentions WHERE message_id = $1`, messageID)
	if err != nil {
		r.log.Error("Failed to delete mentions", "error", err)
	}
	return err
}

// ForMessage возвращает упоминания сообщения с именем цели (сотрудник или сделка)
func (r *mentionRepository) ForMessage(ctx context.Context, messageID int64) ([]*domain.ResolvedMention, error) {
	query := `
		SELECT dm.mention_id, dm.mention_type, dm.ref_id,
		       CASE
		         WHEN dm.mention_type = 'EMPLOYEE' THEN (SELECT name FROM employees WHERE emp_id = dm.ref_id)
		         WHEN dm.mention_type = 'DEAL' THEN (SELECT product_name FROM deals WHERE deal_id = dm.ref_id)
		       END AS ref_name
		FROM discuss_mentions dm
		WHERE dm.message_id = $1
	`

	rows, err := r.db.Query(ctx, query, messageID)
	if err != nil {
		r.log.Error("Failed to get mentions", "error", err)
		return nil, err
	}
	defer rows.Close()

	var mentions []*domain.ResolvedMention
	for rows.Next() {
		m := &domain.ResolvedMention{}
		if err := rows.Scan(&m.ID, &m.Type, &m.RefID, &m.RefName); err != nil {
			r.log.Error("Failed to scan mention", "error", err)
			return nil, err
		}
		mentions = append(mentions, m)
	}

	return mentions, rows.Err()
}

func (r *mentionRepository) ForEmployee(ctx context.Context, empID int64, limit int) ([]*domain.MentionFeedItem, error) {
	safeLimit := clampLimit(limit, 30)

	query := fmt.Sprintf(`
		SELECT m.message_id, m.channel_id, m.content, m.created_at,
		       c.name AS channel_name,
		       e.name AS sender_name
		FROM discuss_mentions dm
		JOIN discuss_messages m ON m.message_id = dm.message_id AND m.is_deleted = FALSE
		JOIN discuss_channels c ON c.channel_id = m.channel_id
		JOIN employees e ON e.emp_id = m.sender_emp_id
		WHERE dm.mention_type = 'EMPLOYEE' AND dm.ref_id = $1
		ORDER BY m.message_id DESC
		LIMIT %d
	`, safeLimit)

	return r.queryFeed(ctx, query, empID)
}

// Search — подстрочный поиск по сообщениям каналов, где состоит запрашивающий
func (r *mentionRepository) Search(ctx context.Context, companyID, empID int64, query string, limit int) ([]*domain.MentionFeedItem, error) {
	safeLimit := clampLimit(limit, 30)

	sql := fmt.Sprintf(`
		SELECT m.message_id, m.channel_id, m.content, m.created_at,
		       c.name AS channel_name,
		       e.name AS sender_name
		FROM discuss_messages m
		JOIN discuss_channels c ON c.channel_id = m.channel_id AND c.company_id = $1
		JOIN discuss_channel_members cm ON cm.channel_id = m.channel_id AND cm.emp_id = $2
		JOIN employees e ON e.emp_id = m.sender_emp_id
		WHERE m.is_deleted = FALSE AND m.content ILIKE $3
		ORDER BY m.message_id DESC
		LIMIT %d
	`, safeLimit)

	return r.queryFeed(ctx, sql, companyID, empID, "%"+query+"%")
}

func (r *mentionRepository) queryFeed(ctx context.Context, query string, args ...any) ([]*domain.MentionFeedItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query mention feed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var items []*domain.MentionFeedItem
	for rows.Next() {
		item := &domain.MentionFeedItem{}
		err := rows.Scan(&item.MessageID, &item.ChannelID, &item.Content, &item.CreatedAt,
			&item.ChannelName, &item.SenderName)
		if err != nil {
			r.log.Error("Failed to scan feed item", "error", err)
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
