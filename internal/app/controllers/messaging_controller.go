package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/middleware"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// MessagingController handles conversations and messages
type MessagingController struct {
	messagingService services.MessagingService
	logger           zerolog.Logger
}

// NewMessagingController creates a new MessagingController
func NewMessagingController(messagingService services.MessagingService, logger zerolog.Logger) *MessagingController {
	return &MessagingController{
		messagingService: messagingService,
		logger:           logger,
	}
}

// ListConversations lists the caller's conversations
// @Summary List conversations
// @Description Most recent first, each with its last message and the caller's unread count
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.ConversationSummary}
// @Failure 401 {object} dto.ErrorResponse
// @Router /conversations [get]
func (c *MessagingController) ListConversations(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	conversations, total, err := c.messagingService.ListConversations(ctx.Request.Context(), actor, limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(conversations), limit, offset, total))
}

// CreateConversation starts a direct or group conversation
// @Summary Create a conversation
// @Description A direct conversation between the same two users is reused and returned with 200.
// @Tags messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateConversationRequest true "Participants"
// @Success 201 {object} dto.APIResponse{data=models.Conversation} "Created"
// @Success 200 {object} dto.APIResponse{data=models.Conversation} "Existing direct conversation"
// @Failure 400 {object} dto.ErrorResponse
// @Router /conversations [post]
func (c *MessagingController) CreateConversation(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	conversation, created, err := c.messagingService.CreateConversation(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, dto.APIResponse{Data: conversation})
}

// ListMessages lists a conversation's messages, newest first
// @Summary List messages
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.Message}
// @Failure 404 {object} dto.ErrorResponse "Not a participant"
// @Router /conversations/{id}/messages [get]
func (c *MessagingController) ListMessages(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	messages, total, err := c.messagingService.ListMessages(ctx.Request.Context(), actor, id, limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(messages), limit, offset, total))
}

// SendMessage posts a message into a conversation
// @Summary Send a message
// @Tags messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.Message}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Not a participant"
// @Router /conversations/{id}/messages [post]
func (c *MessagingController) SendMessage(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message, err := c.messagingService.SendMessage(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: message})
}

// MarkConversationRead marks messages from others as read
// @Summary Mark a conversation read
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Number of messages marked"
// @Failure 404 {object} dto.ErrorResponse
// @Router /conversations/{id}/read [post]
func (c *MessagingController) MarkConversationRead(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	marked, err := c.messagingService.MarkRead(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.CountResponse{Count: int(marked)}})
}

// SendDirectMessage finds or creates the direct conversation and sends into it
// @Summary Send a direct message
// @Tags messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DirectMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.Message}
// @Failure 400 {object} dto.ErrorResponse
// @Router /messages [post]
func (c *MessagingController) SendDirectMessage(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.DirectMessageRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message, err := c.messagingService.SendDirect(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: message})
}

// UnreadCount returns the caller's unread message count
// @Summary Unread message count
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /messages/unread-count [get]
func (c *MessagingController) UnreadCount(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	count, err := c.messagingService.UnreadCount(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.CountResponse{Count: count}})
}
