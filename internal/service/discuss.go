package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"sales_crm/internal/config"
	"sales_crm/internal/domain"
	"sales_crm/internal/repository"
	apperrors "sales_crm/pkg/errors"
	"sales_crm/pkg/logger"
)

// DiscussService — оркестратор командного чата. Сквозные инварианты
// (валидация контента, авторизация по членству) живут здесь;
// репозитории доверяют вызывающему.
type DiscussService interface {
	CreateChannel(ctx context.Context, companyID, empID int64, name string, description *string, isDefault bool) (*domain.Channel, error)
	GetMyChannels(ctx context.Context, companyID, empID int64) ([]*domain.ChannelSummary, error)
	BrowseChannels(ctx context.Context, companyID int64) ([]*domain.ChannelSummary, error)
	GetChannel(ctx context.Context, channelID, empID int64) (*domain.ChannelSummary, error)
	UpdateChannel(ctx context.Context, channelID, empID int64, name, description *string) error
	DeleteChannel(ctx context.Context, channelID, empID int64) error
	JoinChannel(ctx context.Context, channelID, empID int64) error
	LeaveChannel(ctx context.Context, channelID, empID int64) error
	GetMembers(ctx context.Context, channelID int64) ([]*domain.MemberProfile, error)
	MarkRead(ctx context.Context, channelID, empID int64) error
	IsMember(ctx context.Context, channelID, empID int64) (bool, error)

	SendMessage(ctx context.Context, channelID, empID int64, content string, parentMessageID *int64) (*domain.Message, error)
	GetMessages(ctx context.Context, channelID, empID int64, limit int, before *int64) ([]*domain.Message, error)
	EditMessage(ctx context.Context, messageID, empID int64, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, messageID, empID int64, role string) (*domain.Message, error)
	GetThread(ctx context.Context, parentMessageID, empID int64, limit int) ([]*domain.Message, error)

	GetMyMentions(ctx context.Context, empID int64, limit int) ([]*domain.MentionFeedItem, error)
	SearchMessages(ctx context.Context, companyID, empID int64, query string, limit int) ([]*domain.MentionFeedItem, error)
}

type discussService struct {
	channelRepo repository.ChannelRepository
	messageRepo repository.MessageRepository
	mentionRepo repository.MentionRepository
	cfg         config.ChatConfig
	log         logger.Logger
}

func NewDiscussService(
	channelRepo repository.ChannelRepository,
	messageRepo repository.MessageRepository,
	mentionRepo repository.MentionRepository,
	cfg config.ChatConfig,
	log logger.Logger,
) DiscussService {
	return &discussService{
		channelRepo: channelRepo,
		messageRepo: messageRepo,
		mentionRepo: mentionRepo,
		cfg:         cfg,
		log:         log,
	}
}

// Все лимиты длины — в символах, не в байтах: кириллическое
// сообщение в UTF-8 вдвое длиннее байтами, чем символами
func (s *discussService) validateChannelName(name string) (string, error) {
	clean := NormalizeChannelName(name)
	if utf8.RuneCountInString(clean) < 2 {
		return "", apperrors.NewValidationError("channel name must be at least 2 characters")
	}
	if utf8.RuneCountInString(clean) > s.cfg.MaxChannelName {
		return "", apperrors.NewValidationError(fmt.Sprintf("channel name max %d chars", s.cfg.MaxChannelName))
	}
	return clean, nil
}

func (s *discussService) validateContent(content string) (string, error) {
	clean := SanitizeText(content)
	if clean == "" {
		return "", apperrors.NewValidationError("message cannot be empty")
	}
	if utf8.RuneCountInString(clean) > s.cfg.MaxMessageLength {
		return "", apperrors.NewValidationError(fmt.Sprintf("message max %d chars", s.cfg.MaxMessageLength))
	}
	return clean, nil
}

func (s *discussService) cleanDescription(description *string) *string {
	if description == nil {
		return nil
	}
	clean := truncateRunes(SanitizeText(*description), s.cfg.MaxDescription)
	return &clean
}

/* ----- Каналы ----- */

func (s *discussService) CreateChannel(ctx context.Context, companyID, empID int64, name string, description *string, isDefault bool) (*domain.Channel, error) {
	cleanName, err := s.validateChannelName(name)
	if err != nil {
		return nil, err
	}

	channel := &domain.Channel{
		CompanyID:   companyID,
		Name:        cleanName,
		Description: s.cleanDescription(description),
		IsDefault:   isDefault,
		CreatedBy:   empID,
	}

	if err := s.channelRepo.Create(ctx, channel); err != nil {
		return nil, err
	}

	s.log.Info("Channel created", "channel_id", channel.ID, "company_id", companyID, "is_default", isDefault)
	return channel, nil
}

func (s *discussService) GetMyChannels(ctx context.Context, companyID, empID int64) ([]*domain.ChannelSummary, error) {
	return s.channelRepo.ListForEmployee(ctx, companyID, empID)
}

func (s *discussService) BrowseChannels(ctx context.Context, companyID int64) ([]*domain.ChannelSummary, error) {
	return s.channelRepo.ListCompany(ctx, companyID)
}

func (s *discussService) GetChannel(ctx context.Context, channelID, empID int64) (*domain.ChannelSummary, error) {
	return s.channelRepo.GetForEmployee(ctx, channelID, empID)
}

// UpdateChannel — частичное обновление: nil-поля сохраняют прежние значения
func (s *discussService) UpdateChannel(ctx context.Context, channelID, empID int64, name, description *string) error {
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return err
	}

	newName := channel.Name
	if name != nil {
		if newName, err = s.validateChannelName(*name); err != nil {
			return err
		}
	}

	newDesc := channel.Description
	if description != nil {
		newDesc = s.cleanDescription(description)
	}

	return s.channelRepo.Update(ctx, channelID, newName, newDesc)
}

func (s *discussService) DeleteChannel(ctx context.Context, channelID, empID int64) error {
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if channel.IsDefault {
		return apperrors.ErrDefaultChannelDelete
	}
	return s.channelRepo.Delete(ctx, channelID)
}

/* ----- Членство ----- */

func (s *discussService) JoinChannel(ctx context.Context, channelID, empID int64) error {
	if _, err := s.channelRepo.GetByID(ctx, channelID); err != nil {
		return err
	}
	return s.channelRepo.AddMember(ctx, channelID, empID)
}

func (s *discussService) LeaveChannel(ctx context.Context, channelID, empID int64) error {
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if channel.IsDefault {
		return apperrors.ErrDefaultChannelLeave
	}
	return s.channelRepo.RemoveMember(ctx, channelID, empID)
}

func (s *discussService) GetMembers(ctx context.Context, channelID int64) ([]*domain.MemberProfile, error) {
	return s.channelRepo.ListMembers(ctx, channelID)
}

func (s *discussService) MarkRead(ctx context.Context, channelID, empID int64) error {
	return s.channelRepo.UpdateLastRead(ctx, channelID, empID)
}

func (s *discussService) IsMember(ctx context.Context, channelID, empID int64) (bool, error) {
	return s.channelRepo.IsMember(ctx, channelID, empID)
}

/* ----- Сообщения ----- */

// SendMessage — атомарная единица работы: сообщение, упоминания,
// обогащенная выборка, сдвиг собственного курсора чтения отправителя.
// Порядок важен: упоминания только после строки сообщения, курсор последним.
func (s *discussService) SendMessage(ctx context.Context, channelID, empID int64, content string, parentMessageID *int64) (*domain.Message, error) {
	clean, err := s.validateContent(content)
	if err != nil {
		return nil, err
	}

	member, err := s.channelRepo.IsMember(ctx, channelID, empID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.ErrNotChannelMember
	}

	message := &domain.Message{
		ChannelID:       channelID,
		SenderEmpID:     empID,
		Content:         clean,
		ParentMessageID: parentMessageID,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	mentions := ParseMentions(clean)
	if err := s.mentionRepo.CreateBulk(ctx, message.ID, mentions); err != nil {
		return nil, err
	}

	enriched, err := s.messageRepo.GetByID(ctx, message.ID)
	if err != nil {
		return nil, err
	}
	enriched.Mentions = mentions

	// Отправка неявно помечает канал прочитанным для отправителя
	if err := s.channelRepo.UpdateLastRead(ctx, channelID, empID); err != nil {
		return nil, err
	}

	return enriched, nil
}

func (s *discussService) GetMessages(ctx context.Context, channelID, empID int64, limit int, before *int64) ([]*domain.Message, error) {
	member, err := s.channelRepo.IsMember(ctx, channelID, empID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.ErrNotChannelMember
	}

	return s.messageRepo.ListPage(ctx, channelID, limit, before)
}

// EditMessage — редактировать может только автор; набор упоминаний
// заменяется заново по новому содержимому
func (s *discussService) EditMessage(ctx context.Context, messageID, empID int64, content string) (*domain.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderEmpID != empID {
		return nil, apperrors.ErrNotMessageSender
	}

	clean, err := s.validateContent(content)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.Edit(ctx, messageID, clean); err != nil {
		return nil, err
	}

	mentions := ParseMentions(clean)
	if err := s.mentionRepo.DeleteForMessage(ctx, messageID); err != nil {
		return nil, err
	}
	if err := s.mentionRepo.CreateBulk(ctx, messageID, mentions); err != nil {
		return nil, err
	}

	updated, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	updated.Mentions = mentions
	return updated, nil
}

// DeleteMessage — мягкое удаление автором или администратором
func (s *discussService) DeleteMessage(ctx context.Context, messageID, empID int64, role string) (*domain.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderEmpID != empID && role != domain.RoleAdmin {
		return nil, apperrors.ErrDeleteForbidden
	}

	if err := s.messageRepo.SoftDelete(ctx, messageID); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *discussService) GetThread(ctx context.Context, parentMessageID, empID int64, limit int) ([]*domain.Message, error) {
	parent, err := s.messageRepo.GetByID(ctx, parentMessageID)
	if err != nil {
		return nil, err
	}

	member, err := s.channelRepo.IsMember(ctx, parent.ChannelID, empID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperrors.ErrNotChannelMember
	}

	return s.messageRepo.ListThreadReplies(ctx, parentMessageID, limit)
}

/* ----- Упоминания и поиск ----- */

func (s *discussService) GetMyMentions(ctx context.Context, empID int64, limit int) ([]*domain.MentionFeedItem, error) {
	return s.mentionRepo.ForEmployee(ctx, empID, limit)
}

func (s *discussService) SearchMessages(ctx context.Context, companyID, empID int64, query string, limit int) ([]*domain.MentionFeedItem, error) {
	clean := SanitizeText(query)
	if utf8.RuneCountInString(clean) < 2 {
		return nil, apperrors.NewValidationError("search query too short")
	}
	clean = truncateRunes(clean, 100)

	return s.mentionRepo.Search(ctx, companyID, empID, clean, limit)
}
