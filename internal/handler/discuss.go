package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"sales_crm/internal/domain"
	"sales_crm/internal/middleware"
	"sales_crm/internal/service"
	"sales_crm/pkg/logger"
)

type DiscussHandler struct {
	discussService service.DiscussService
	log            logger.Logger
}

func NewDiscussHandler(discussService service.DiscussService, log logger.Logger) *DiscussHandler {
	return &DiscussHandler{
		discussService: discussService,
		log:            log,
	}
}

func identity(c *gin.Context) (*domain.Identity, bool) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	}
	return id, ok
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

/* ----- Каналы ----- */

type CreateChannelRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	IsDefault   bool    `json:"is_default"`
}

func (h *DiscussHandler) CreateChannel(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.discussService.CreateChannel(c.Request.Context(), id.CompanyID, id.EmpID, req.Name, req.Description, req.IsDefault)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, channel)
}

func (h *DiscussHandler) GetMyChannels(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	channels, err := h.discussService.GetMyChannels(c.Request.Context(), id.CompanyID, id.EmpID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, channels)
}

func (h *DiscussHandler) BrowseChannels(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	channels, err := h.discussService.BrowseChannels(c.Request.Context(), id.CompanyID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, channels)
}

func (h *DiscussHandler) GetChannel(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	channel, err := h.discussService.GetChannel(c.Request.Context(), channelID, id.EmpID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, channel)
}

type UpdateChannelRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *DiscussHandler) UpdateChannel(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.discussService.UpdateChannel(c.Request.Context(), channelID, id.EmpID, req.Name, req.Description); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Channel updated"})
}

func (h *DiscussHandler) DeleteChannel(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.discussService.DeleteChannel(c.Request.Context(), channelID, id.EmpID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Channel deleted"})
}

/* ----- Членство ----- */

func (h *DiscussHandler) JoinChannel(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.discussService.JoinChannel(c.Request.Context(), channelID, id.EmpID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Joined channel"})
}

func (h *DiscussHandler) LeaveChannel(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.discussService.LeaveChannel(c.Request.Context(), channelID, id.EmpID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left channel"})
}

func (h *DiscussHandler) GetMembers(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	members, err := h.discussService.GetMembers(c.Request.Context(), channelID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

func (h *DiscussHandler) MarkRead(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.discussService.MarkRead(c.Request.Context(), channelID, id.EmpID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Read cursor updated"})
}

/* ----- Сообщения ----- */

type SendMessageRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentMessageID *int64 `json:"parent_message_id"`
}

func (h *DiscussHandler) SendMessage(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.discussService.SendMessage(c.Request.Context(), channelID, id.EmpID, req.Content, req.ParentMessageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *DiscussHandler) GetMessages(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	var before *int64
	if raw := c.Query("before"); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before cursor"})
			return
		}
		before = &value
	}

	messages, err := h.discussService.GetMessages(c.Request.Context(), channelID, id.EmpID, limit, before)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *DiscussHandler) EditMessage(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.discussService.EditMessage(c.Request.Context(), messageID, id.EmpID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, message)
}

func (h *DiscussHandler) DeleteMessage(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.discussService.DeleteMessage(c.Request.Context(), messageID, id.EmpID, id.Role); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

func (h *DiscussHandler) GetThread(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	replies, err := h.discussService.GetThread(c.Request.Context(), messageID, id.EmpID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, replies)
}

/* ----- Упоминания и поиск ----- */

func (h *DiscussHandler) GetMyMentions(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	mentions, err := h.discussService.GetMyMentions(c.Request.Context(), id.EmpID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mentions)
}

func (h *DiscussHandler) SearchMessages(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	results, err := h.discussService.SearchMessages(c.Request.Context(), id.CompanyID, id.EmpID, c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
