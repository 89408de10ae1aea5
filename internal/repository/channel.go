package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"sales_crm/internal/domain"
	apperrors "sales_crm/pkg/errors"
	"sales_crm/pkg/logger"
)

type ChannelRepository interface {
	Create(ctx context.Context, channel *domain.Channel) error
	GetByID(ctx context.Context, channelID int64) (*domain.Channel, error)
	GetForEmployee(ctx context.Context, channelID, empID int64) (*domain.ChannelSummary, error)
	ListForEmployee(ctx context.Context, companyID, empID int64) ([]*domain.ChannelSummary, error)
	ListCompany(ctx context.Context, companyID int64) ([]*domain.ChannelSummary, error)
	Update(ctx context.Context, channelID int64, name string, description *string) error
	Delete(ctx context.Context, channelID int64) error
	AddMember(ctx context.Context, channelID, empID int64) error
	RemoveMember(ctx context.Context, channelID, empID int64) error
	IsMember(ctx context.Context, channelID, empID int64) (bool, error)
	ListMembers(ctx context.Context, channelID int64) ([]*domain.MemberProfile, error)
	UpdateLastRead(ctx context.Context, channelID, empID int64) error
}

type channelRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChannelRepository(db *pgxpool.Pool, log logger.Logger) ChannelRepository {
	return &channelRepository{db: db, log: log}
}

// Create создает канал вместе с членством создателя; для default-канала
// подписывает всех сотрудников компании одной транзакцией
func (r *channelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", "error", err)
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO discuss_channels (company_id, name, description, is_default, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING channel_id, created_at
	`

	err = tx.QueryRow(ctx, query,
		channel.CompanyID, channel.Name, channel.Description, channel.IsDefault, channel.CreatedBy,
	).Scan(&channel.ID, &channel.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create channel", "error", err)
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO discuss_channel_members (channel_id, emp_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, channel.ID, channel.CreatedBy)
	if err != nil {
		r.log.Error("Failed to add creator membership", "error", err)
		return err
	}

	if channel.IsDefault {
		_, err = tx.Exec(ctx, `
			INSERT INTO discuss_channel_members (channel_id, emp_id)
			SELECT $1, emp_id FROM employees WHERE company_id = $2 AND emp_id != $3
			ON CONFLICT DO NOTHING
		`, channel.ID, channel.CompanyID, channel.CreatedBy)
		if err != nil {
			r.log.Error("Failed to enroll company into default channel", "error", err)
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *channelRepository) GetByID(ctx context.Context, channelID int64) (*domain.Channel, error) {
	query := `
		SELECT channel_id, company_id, name, description, is_default, created_by, created_at
		FROM discuss_channels
		WHERE channel_id = $1
	`

	channel := &domain.Channel{}
	err := r.db.QueryRow(ctx, query, channelID).Scan(
		&channel.ID, &channel.CompanyID, &channel.Name, &channel.Description,
		&channel.IsDefault, &channel.CreatedBy, &channel.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrChannelNotFound
		}
		r.log.Error("Failed to get channel", "error", err)
		return nil, err
	}

	return channel, nil
}

// GetForEmployee возвращает канал с курсором чтения запрашивающего (NULL если не участник)
func (r *channelRepository) GetForEmployee(ctx context.Context, channelID, empID int64) (*domain.ChannelSummary, error) {
	query := `
		SELECT c.channel_id, c.company_id, c.name, c.description, c.is_default, c.created_by, c.created_at,
		       cm.last_read_at,
		       (SELECT COUNT(*) FROM discuss_channel_members WHERE channel_id = c.channel_id) AS member_count
		FROM discuss_channels c
		LEFT JOIN discuss_channel_members cm ON cm.channel_id = c.channel_id AND cm.emp_id = $2
		WHERE c.channel_id = $1
	`

	s := &domain.ChannelSummary{}
	err := r.db.QueryRow(ctx, query, channelID, empID).Scan(
		&s.ID, &s.CompanyID, &s.Name, &s.Description, &s.IsDefault, &s.CreatedBy, &s.CreatedAt,
		&s.LastReadAt, &s.MemberCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrChannelNotFound
		}
		r.log.Error("Failed to get channel", "error", err)
		return nil, err
	}

	return s, nil
}

func (r *channelRepository) ListForEmployee(ctx context.Context, companyID, empID int64) ([]*domain.ChannelSummary, error) {
	query := `
		SELECT c.channel_id, c.company_id, c.name, c.description, c.is_default, c.created_by, c.created_at,
		       cm.last_read_at,
		       (SELECT COUNT(*) FROM discuss_messages m
		        WHERE m.channel_id = c.channel_id
		          AND m.is_deleted = FALSE
		          AND m.created_at > cm.last_read_at) AS unread_count,
		       (SELECT COUNT(*) FROM discuss_channel_members WHERE channel_id = c.channel_id) AS member_count
		FROM discuss_channels c
		JOIN discuss_channel_members cm ON cm.channel_id = c.channel_id AND cm.emp_id = $2
		WHERE c.company_id = $1
		ORDER BY c.is_default DESC, c.name ASC
	`

	rows, err := r.db.Query(ctx, query, companyID, empID)
	if err != nil {
		r.log.Error("Failed to list channels", "error", err)
		return nil, err
	}
	defer rows.Close()

	var channels []*domain.ChannelSummary
	for rows.Next() {
		s := &domain.ChannelSummary{}
		err := rows.Scan(
			&s.ID, &s.CompanyID, &s.Name, &s.Description, &s.IsDefault, &s.CreatedBy, &s.CreatedAt,
			&s.LastReadAt, &s.UnreadCount, &s.MemberCount,
		)
		if err != nil {
			r.log.Error("Failed to scan channel", "error", err)
			return nil, err
		}
		channels = append(channels, s)
	}

	return channels, rows.Err()
}

func (r *channelRepository) ListCompany(ctx context.Context, companyID int64) ([]*domain.ChannelSummary, error) {
	query := `
		SELECT c.channel_id, c.company_id, c.name, c.description, c.is_default, c.created_by, c.created_at,
		       (SELECT COUNT(*) FROM discuss_channel_members WHERE channel_id = c.channel_id) AS member_count
		FROM discuss_channels c
		WHERE c.company_id = $1
		ORDER BY c.is_default DESC, c.name ASC
	`

	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		r.log.Error("Failed to browse channels", "error", err)
		return nil, err
	}
	defer rows.Close()

	var channels []*domain.ChannelSummary
	for rows.Next() {
		s := &domain.ChannelSummary{}
		err := rows.Scan(
			&s.ID, &s.CompanyID, &s.Name, &s.Description, &s.IsDefault, &s.CreatedBy, &s.CreatedAt,
			&s.MemberCount,
		)
		if err != nil {
			r.log.Error("Failed to scan channel", "error", err)
			return nil, err
		}
		channels = append(channels, s)
	}

	return channels, rows.Err()
}

func (r *channelRepository) Update(ctx context.Context, channelID int64, name string, description *string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE discuss_channels SET name = $2, description = $3 WHERE channel_id = $1
	`, channelID, name, description)
	if err != nil {
		r.log.Error("Failed to update channel", "error", err)
	}
	return err
}

// Delete каскадно удаляет упоминания, сообщения и членства канала
// в порядке зависимостей внешних ключей
func (r *channelRepository) Delete(ctx context.Context, channelID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", "error", err)
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM discuss_mentions dm
		USING discuss_messages m
		WHERE m.message_id = dm.message_id AND m.channel_id = $1
	`, channelID)
	if err != nil {
		r.log.Error("Failed to delete channel mentions", "error", err)
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM discuss_messages WHERE channel_id = $1`, channelID); err != nil {
		r.log.Error("Failed to delete channel messages", "error", err)
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM discuss_channel_members WHERE channel_id = $1`, channelID); err != nil {
		r.log.Error("Failed to delete channel members", "error", err)
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM discuss_channels WHERE channel_id = $1`, channelID); err != nil {
		r.log.Error("Failed to delete channel", "error", err)
		return err
	}

	return tx.Commit(ctx)
}

func (r *channelRepository) AddMember(ctx context.Context, channelID, empID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO discuss_channel_members (channel_id, emp_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, channelID, empID)
	if err != nil {
		r.log.Error("Failed to add member", "error", err)
	}
	return err
}

func (r *channelRepository) RemoveMember(ctx context.Context, channelID, empID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM discuss_channel_members WHERE channel_id = $1 AND emp_id = $2
	`, channelID, empID)
	if err != nil {
		r.log.Error("Failed to remove member", "error", err)
	}
	return err
}

func (r *channelRepository) IsMember(ctx context.Context, channelID, empID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM discuss_channel_members WHERE channel_id = $1 AND emp_id = $2)
	`, channelID, empID).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check membership", "error", err)
		return false, err
	}
	return exists, nil
}

func (r *channelRepository) ListMembers(ctx context.Context, channelID int64) ([]*domain.MemberProfile, error) {
	query := `
		SELECT e.emp_id, e.name, e.email, e.role, e.department, cm.joined_at
		FROM discuss_channel_members cm
		JOIN employees e ON e.emp_id = cm.emp_id
		WHERE cm.channel_id = $1
		ORDER BY e.name ASC
	`

	rows, err := r.db.Query(ctx, query, channelID)
	if err != nil {
		r.log.Error("Failed to list members", "error", err)
		return nil, err
	}
	defer rows.Close()

	var members []*domain.MemberProfile
	for rows.Next() {
		m := &domain.MemberProfile{}
		if err := rows.Scan(&m.EmpID, &m.Name, &m.Email, &m.Role, &m.Department, &m.JoinedAt); err != nil {
			r.log.Error("Failed to scan member", "error", err)
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

func (r *channelRepository) UpdateLastRead(ctx context.Context, channelID, empID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE discuss_channel_members SET last_read_at = now() WHERE channel_id = $1 AND emp_id = $2
	`, channelID, empID)
	if err != nil {
		r.log.Error("Failed to update read cursor", "error", err)
	}
	return err
}
