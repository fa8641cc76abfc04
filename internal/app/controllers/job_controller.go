package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/middleware"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// JobController handles job postings
type JobController struct {
	jobService services.JobService
	logger     zerolog.Logger
}

// NewJobController creates a new JobController
func NewJobController(jobService services.JobService, logger zerolog.Logger) *JobController {
	return &JobController{
		jobService: jobService,
		logger:     logger,
	}
}

// ListJobs lists active jobs of the caller's university
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param jobType query string false "FULL_TIME, PART_TIME, INTERNSHIP, CONTRACT or REMOTE"
// @Param search query string false "Matches title, company and description"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.Job}
// @Failure 400 {object} dto.ErrorResponse
// @Router /jobs [get]
func (c *JobController) ListJobs(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filter := models.JobFilter{
		Search: ctx.Query("search"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := ctx.Query("jobType"); raw != "" {
		jobType := models.JobType(strings.ToUpper(raw))
		if !jobType.IsValid() {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("jobType", "jobType must be one of FULL_TIME PART_TIME INTERNSHIP CONTRACT REMOTE"))
			return
		}
		filter.JobType = jobType
	}

	jobs, total, err := c.jobService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(jobs), limit, offset, total))
}

// GetJob returns one job
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 404 {object} dto.ErrorResponse
// @Router /jobs/{id} [get]
func (c *JobController) GetJob(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	job, err := c.jobService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: job})
}

// CreateJob posts a job
// @Summary Create a job
// @Description Alumni and admins only
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateJobRequest true "Job"
// @Success 201 {object} dto.APIResponse{data=models.Job}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /jobs [post]
func (c *JobController) CreateJob(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	job, err := c.jobService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: job})
}

// UpdateJob edits a job
// @Summary Update a job
// @Description Poster or admin
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.UpdateJobRequest true "Job fields"
// @Success 200 {object} dto.APIResponse{data=models.Job}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /jobs/{id} [put]
func (c *JobController) UpdateJob(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	job, err := c.jobService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: job})
}

// DeleteJob removes a job
// @Summary Delete a job
// @Description Poster or admin
// @Tags jobs
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /jobs/{id} [delete]
func (c *JobController) DeleteJob(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.jobService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
