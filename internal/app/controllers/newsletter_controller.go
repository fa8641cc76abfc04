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

// NewsletterController handles university newsletters
type NewsletterController struct {
	newsletterService services.NewsletterService
	logger            zerolog.Logger
}

// NewNewsletterController creates a new NewsletterController
func NewNewsletterController(newsletterService services.NewsletterService, logger zerolog.Logger) *NewsletterController {
	return &NewsletterController{
		newsletterService: newsletterService,
		logger:            logger,
	}
}

// ListNewsletters lists newsletters of the caller's university
// @Summary List newsletters
// @Description Members see sent newsletters; admins also see drafts
// @Tags newsletters
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.Newsletter}
// @Router /newsletters [get]
func (c *NewsletterController) ListNewsletters(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	newsletters, total, err := c.newsletterService.List(ctx.Request.Context(), actor, limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(newsletters), limit, offset, total))
}

// GetNewsletter returns one newsletter
// @Summary Get a newsletter
// @Tags newsletters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Newsletter ID"
// @Success 200 {object} dto.APIResponse{data=models.Newsletter}
// @Failure 404 {object} dto.ErrorResponse
// @Router /newsletters/{id} [get]
func (c *NewsletterController) GetNewsletter(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	newsletter, err := c.newsletterService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: newsletter})
}

// CreateNewsletter drafts a newsletter
// @Summary Create a newsletter
// @Tags newsletters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateNewsletterRequest true "Newsletter"
// @Success 201 {object} dto.APIResponse{data=models.Newsletter}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /newsletters [post]
func (c *NewsletterController) CreateNewsletter(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateNewsletterRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	newsletter, err := c.newsletterService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: newsletter})
}

// UpdateNewsletter edits a draft
// @Summary Update a newsletter
// @Tags newsletters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Newsletter ID"
// @Param request body dto.UpdateNewsletterRequest true "Newsletter fields"
// @Success 200 {object} dto.APIResponse{data=models.Newsletter}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already sent"
// @Router /newsletters/{id} [put]
func (c *NewsletterController) UpdateNewsletter(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateNewsletterRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	newsletter, err := c.newsletterService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: newsletter})
}

// DeleteNewsletter removes a draft
// @Summary Delete a newsletter
// @Tags newsletters
// @Security BearerAuth
// @Param id path int true "Newsletter ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already sent"
// @Router /newsletters/{id} [delete]
func (c *NewsletterController) DeleteNewsletter(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.newsletterService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// SendNewsletter emails a draft to its audience
// @Summary Send a newsletter
// @Description Marks the newsletter sent and delivers it to every active member of the audience
// @Tags newsletters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Newsletter ID"
// @Success 200 {object} dto.APIResponse{data=models.Newsletter}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already sent"
// @Router /newsletters/{id}/send [post]
func (c *NewsletterController) SendNewsletter(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	newsletter, err := c.newsletterService.Send(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("newsletterID", id).Int("recipients", newsletter.RecipientCount).Msg("Newsletter sent")
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: newsletter})
}
