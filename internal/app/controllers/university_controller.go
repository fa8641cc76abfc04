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

// UniversityController handles university endpoints
type UniversityController struct {
	universityService services.UniversityService
	logger            zerolog.Logger
}

// NewUniversityController creates a new UniversityController
func NewUniversityController(universityService services.UniversityService, logger zerolog.Logger) *UniversityController {
	return &UniversityController{
		universityService: universityService,
		logger:            logger,
	}
}

// ListUniversities lists all universities
// @Summary List universities
// @Description Public, paginated list of universities
// @Tags universities
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.University}
// @Failure 400 {object} dto.ErrorResponse
// @Router /universities [get]
func (c *UniversityController) ListUniversities(ctx *gin.Context) {
	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	universities, total, err := c.universityService.List(ctx.Request.Context(), limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(universities), limit, offset, total))
}

// GetUniversity returns one university
// @Summary Get a university
// @Tags universities
// @Produce json
// @Param id path int true "University ID"
// @Success 200 {object} dto.APIResponse{data=models.University}
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "University not found"
// @Router /universities/{id} [get]
func (c *UniversityController) GetUniversity(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	university, err := c.universityService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: university})
}

// CreateUniversity creates a university
// @Summary Create a university
// @Description Only university admins may create universities
// @Tags universities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUniversityRequest true "University"
// @Success 201 {object} dto.APIResponse{data=models.University}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Slug already taken"
// @Router /universities [post]
func (c *UniversityController) CreateUniversity(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateUniversityRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	university, err := c.universityService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("universityID", university.ID).Str("slug", university.Slug).Msg("University created")
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: university})
}
