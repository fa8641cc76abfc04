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

// ExamResultController handles exam results and public credential lookups
type ExamResultController struct {
	examResultService services.ExamResultService
	logger            zerolog.Logger
}

// NewExamResultController creates a new ExamResultController
func NewExamResultController(examResultService services.ExamResultService, logger zerolog.Logger) *ExamResultController {
	return &ExamResultController{
		examResultService: examResultService,
		logger:            logger,
	}
}

// ListMyResults lists the caller's exam results
// @Summary My exam results
// @Tags exam-results
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.ExamResult}
// @Router /exam-results/me [get]
func (c *ExamResultController) ListMyResults(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	results, total, err := c.examResultService.ListMine(ctx.Request.Context(), actor, limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(results), limit, offset, total))
}

// ListResults lists exam results of the admin's university
// @Summary List exam results
// @Description University admins only; optionally filtered by user
// @Tags exam-results
// @Produce json
// @Security BearerAuth
// @Param userId query int false "User ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.ExamResult}
// @Failure 403 {object} dto.ErrorResponse
// @Router /exam-results [get]
func (c *ExamResultController) ListResults(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	userID, err := int64Query(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	results, total, err := c.examResultService.ListForUniversity(ctx.Request.Context(), actor, userID, limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(results), limit, offset, total))
}

// CreateResult records an exam result for the caller
// @Summary Add an exam result
// @Description A credential ID is generated; results start unverified
// @Tags exam-results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateExamResultRequest true "Exam result"
// @Success 201 {object} dto.APIResponse{data=models.ExamResult}
// @Failure 400 {object} dto.ErrorResponse
// @Router /exam-results [post]
func (c *ExamResultController) CreateResult(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateExamResultRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.examResultService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: result})
}

// GetResult returns one exam result
// @Summary Get an exam result
// @Description Owner or an admin of the same university
// @Tags exam-results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam result ID"
// @Success 200 {object} dto.APIResponse{data=models.ExamResult}
// @Failure 404 {object} dto.ErrorResponse
// @Router /exam-results/{id} [get]
func (c *ExamResultController) GetResult(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	result, err := c.examResultService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: result})
}

// DeleteResult removes an unverified result
// @Summary Delete an exam result
// @Description Owner only; verified results cannot be deleted
// @Tags exam-results
// @Security BearerAuth
// @Param id path int true "Exam result ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already verified"
// @Router /exam-results/{id} [delete]
func (c *ExamResultController) DeleteResult(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.examResultService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// VerifyResult marks a result verified
// @Summary Verify an exam result
// @Tags exam-results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exam result ID"
// @Success 200 {object} dto.APIResponse{data=models.ExamResult}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already verified"
// @Router /exam-results/{id}/verify [post]
func (c *ExamResultController) VerifyResult(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	result, err := c.examResultService.Verify(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("examResultID", id).Int64("verifiedBy", actor.UserID).Msg("Exam result verified")
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: result})
}

// GetCredential is the public verification lookup
// @Summary Verify a credential
// @Description Public lookup by credential ID, returning exam, holder, score and verification state
// @Tags credentials
// @Produce json
// @Param credentialId path string true "Credential ID"
// @Success 200 {object} dto.APIResponse{data=models.Credential}
// @Failure 404 {object} dto.ErrorResponse
// @Router /credentials/{credentialId} [get]
func (c *ExamResultController) GetCredential(ctx *gin.Context) {
	credential, err := c.examResultService.Credential(ctx.Request.Context(), ctx.Param("credentialId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: credential})
}
