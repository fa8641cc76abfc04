package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/middleware"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// ProfileController handles the alumni directory and profile editing
type ProfileController struct {
	profileService services.ProfileService
	logger         zerolog.Logger
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService services.ProfileService, logger zerolog.Logger) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		logger:         logger,
	}
}

// ListProfiles searches the caller's university directory
// @Summary Search profiles
// @Description Lists profiles in the caller's university. Search matches name, headline and company.
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param role query string false "STUDENT, ALUMNI or UNIVERSITY_ADMIN"
// @Param search query string false "Free text"
// @Param skill query string false "Exact skill"
// @Param mentor query bool false "Only mentors"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.UserProfile}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /profiles [get]
func (c *ProfileController) ListProfiles(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	mentorsOnly, err := boolQuery(ctx, "mentor")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filter := models.ProfileFilter{
		Search:      ctx.Query("search"),
		Skill:       ctx.Query("skill"),
		MentorsOnly: mentorsOnly,
		Limit:       limit,
		Offset:      offset,
	}
	if raw := ctx.Query("role"); raw != "" {
		role, valid := models.ParseRoleType(raw)
		if !valid {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("role", "role must be one of STUDENT ALUMNI UNIVERSITY_ADMIN"))
			return
		}
		filter.Role = role
	}

	profiles, total, err := c.profileService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(profiles), limit, offset, total))
}

// GetProfile returns one profile
// @Summary Get a profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.UserProfile}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /profiles/{userId} [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	userID, ok := idParam(ctx, "userId")
	if !ok {
		return
	}

	profile, err := c.profileService.Get(ctx.Request.Context(), actor, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: profile})
}

// GetMyProfile returns the caller's profile
// @Summary Get my profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.UserProfile}
// @Failure 401 {object} dto.ErrorResponse
// @Router /profiles/me [get]
func (c *ProfileController) GetMyProfile(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	profile, err := c.profileService.Get(ctx.Request.Context(), actor, actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: profile})
}

// UpdateMyProfile applies a partial update to the caller's profile
// @Summary Update my profile
// @Description Only the supplied fields change. Changing skills, interests or preferred job types refreshes recommendations.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=models.UserProfile}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /profiles/me [put]
func (c *ProfileController) UpdateMyProfile(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	profile, err := c.profileService.Update(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: profile})
}
