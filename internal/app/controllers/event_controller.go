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

// EventController handles events and event registrations
type EventController struct {
	eventService services.EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService, logger zerolog.Logger) *EventController {
	return &EventController{
		eventService: eventService,
		logger:       logger,
	}
}

// ListEvents lists events of the caller's university
// @Summary List events
// @Description Drafts are only listed for admins, or for organizers filtering by their own id.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param status query string false "DRAFT, PUBLISHED or CANCELLED"
// @Param upcoming query bool false "Only events that have not started"
// @Param organizerId query int false "Organizer user ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.Event}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	upcoming, err := boolQuery(ctx, "upcoming")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	organizerID, err := int64Query(ctx, "organizerId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filter := models.EventFilter{
		UpcomingOnly: upcoming,
		OrganizerID:  organizerID,
		Limit:        limit,
		Offset:       offset,
	}
	if raw := ctx.Query("status"); raw != "" {
		status := models.EventStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("status", "status must be one of DRAFT PUBLISHED CANCELLED"))
			return
		}
		filter.Status = status
	}

	events, total, err := c.eventService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(events), limit, offset, total))
}

// GetEvent returns one event
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	event, err := c.eventService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: event})
}

// CreateEvent schedules an event
// @Summary Create an event
// @Description Alumni and admins may organize events in their university
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=models.Event}
// @Failure 400 {object} dto.ErrorResponse "Invalid schedule or payload"
// @Failure 403 {object} dto.ErrorResponse
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	event, err := c.eventService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("eventID", event.ID).Int64("organizerID", actor.UserID).Msg("Event created")
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: event})
}

// UpdateEvent applies a partial update
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Event fields"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Event cancelled or capacity below attendees"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	event, err := c.eventService.Update(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: event})
}

// DeleteEvent removes an event and its registrations
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// CancelEvent cancels an event and notifies its registrants
// @Summary Cancel an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already cancelled"
// @Router /events/{id}/cancel [post]
func (c *EventController) CancelEvent(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	event, err := c.eventService.Cancel(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("eventID", id).Msg("Event cancelled")
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: event})
}

// RegisterForEvent reserves a seat for the caller
// @Summary Register for an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 201 {object} dto.APIResponse{data=models.EventRegistration}
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Full, closed, cancelled or already registered"
// @Router /events/{id}/register [post]
func (c *EventController) RegisterForEvent(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	registration, err := c.eventService.Register(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: registration})
}

// CancelRegistration releases the caller's seat
// @Summary Cancel my registration
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Event or registration not found"
// @Router /events/{id}/register [delete]
func (c *EventController) CancelRegistration(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.CancelRegistration(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ListRegistrations lists an event's registrants
// @Summary List registrations
// @Description Organizer or admin only
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.EventRegistration}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /events/{id}/registrations [get]
func (c *EventController) ListRegistrations(ctx *gin.Context) {
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

	registrations, total, err := c.eventService.ListRegistrations(ctx.Request.Context(), actor, id, limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(registrations), limit, offset, total))
}

// UpdateRegistration marks a registrant's attendance
// @Summary Update a registration
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param userId path int true "Registrant user ID"
// @Param request body dto.UpdateRegistrationRequest true "Attendance"
// @Success 200 {object} dto.APIResponse{data=models.EventRegistration}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /events/{id}/registrations/{userId} [put]
func (c *EventController) UpdateRegistration(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := idParam(ctx, "userId")
	if !ok {
		return
	}

	var req dto.UpdateRegistrationRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	registration, err := c.eventService.UpdateRegistration(ctx.Request.Context(), actor, id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: registration})
}

// ListMyEvents lists the events the caller is registered for
// @Summary My registered events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.PaginatedResponse{data=[]models.Event}
// @Failure 401 {object} dto.ErrorResponse
// @Router /events/registered [get]
func (c *EventController) ListMyEvents(ctx *gin.Context) {
	actor, ok := actorOrAbort(ctx)
	if !ok {
		return
	}
	limit, offset, err := helpers.ParsePaginationParams(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	events, total, err := c.eventService.ListRegistered(ctx.Request.Context(), actor, limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, helpers.NewPaginatedResponse(helpers.NonNil(events), limit, offset, total))
}
