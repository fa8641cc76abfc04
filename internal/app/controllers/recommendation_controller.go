package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/middleware"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// RecommendationController serves ranked jobs, mentors and connections
type RecommendationController struct {
	recommendationService services.RecommendationService
	logger                zerolog.Logger
}

// NewRecommendationController creates a new RecommendationController
func NewRecommendationController(recommendationService services.RecommendationService, logger zerolog.Logger) *RecommendationController {
	return &RecommendationController{
		recommendationService: recommendationService,
		logger:                logger,
	}
}

// Recommend ranks candidates of one kind for the caller
// @Summary Recommendations
// @Description Ranks jobs, mentors or connections by skill overlap, interests and preferences. Results are cached per user and kind.
// @Tags recommendations
// @Produce json
// @Security BearerAuth
// @Param kind path string true "jobs, mentors or connections"
// @Param limit query int false "Maximum results (default 10, max 50)"
// @Success 200 {object} dto.APIResponse{data=[]matching.Result}
// @Failure 400 {object} dto.ErrorResponse "Unknown kind or invalid limit"
// @Router /recommendations/{kind} [get]
func (c *RecommendationController) Recommend(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("limit", "limit must be a positive integer"))
			return
		}
		limit = v
	}

	kind := services.RecommendationKind(ctx.Param("kind"))
	results, err := c.recommendationService.Recommend(ctx.Request.Context(), actor, kind, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: results})
}
