package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/eventbus"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// EventService manages events and their registrations
type EventService interface {
	List(ctx context.Context, actor authz.Actor, filter models.EventFilter) ([]*models.Event, int64, error)
	Get(ctx context.Context, actor authz.Actor, id int64) (*models.Event, error)
	Create(ctx context.Context, actor authz.Actor, req *dto.CreateEventRequest) (*models.Event, error)
	Update(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateEventRequest) (*models.Event, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
	Cancel(ctx context.Context, actor authz.Actor, id int64) (*models.Event, error)

	Register(ctx context.Context, actor authz.Actor, eventID int64) (*models.EventRegistration, error)
	CancelRegistration(ctx context.Context, actor authz.Actor, eventID int64) error
	ListRegistrations(ctx context.Context, actor authz.Actor, eventID int64, limit, offset int) ([]*models.EventRegistration, int64, error)
	UpdateRegistration(ctx context.Context, actor authz.Actor, eventID, userID int64, req *dto.UpdateRegistrationRequest) (*models.EventRegistration, error)
	ListRegistered(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Event, int64, error)
}

type eventServiceImpl struct {
	eventRepo repositories.IEventRepository
	bus       Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo repositories.IEventRepository,
	bus Publisher,
	logger zerolog.Logger,
) EventService {
	return &eventServiceImpl{
		eventRepo: eventRepo,
		bus:       bus,
		logger:    logger,
		now:       clock,
	}
}

// validateSchedule enforces deadline <= start < end
func validateSchedule(start, end time.Time, deadline *time.Time) error {
	if !start.Before(end) {
		return apperrors.ErrInvalidDateRange.WithField("endTime")
	}
	if deadline != nil && deadline.After(start) {
		return apperrors.ErrInvalidDateRange.WithField("registrationDeadline")
	}
	return nil
}

// List returns events of the caller's university. Drafts are included for
// admins and for organizers listing their own events.
func (s *eventServiceImpl) List(ctx context.Context, actor authz.Actor, filter models.EventFilter) ([]*models.Event, int64, error) {
	filter.UniversityID = actor.UniversityID
	filter.IncludeDrafts = actor.IsAdmin() || (filter.OrganizerID != 0 && filter.OrganizerID == actor.UserID)
	if filter.Status == models.EventStatusDraft && !filter.IncludeDrafts {
		return []*models.Event{}, 0, nil
	}
	filter.Now = s.now()
	return s.eventRepo.List(ctx, filter)
}

// Get returns a visible event; drafts are only visible to their managers
func (s *eventServiceImpl) Get(ctx context.Context, actor authz.Actor, id int64) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireTenant(actor, event.UniversityID, apperrors.ErrEventNotFound); err != nil {
		return nil, err
	}
	if event.Status == models.EventStatusDraft && !actor.CanManage(event.OrganizerID, event.UniversityID) {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

// Create schedules a new event organized by the caller
func (s *eventServiceImpl) Create(ctx context.Context, actor authz.Actor, req *dto.CreateEventRequest) (*models.Event, error) {
	if err := authz.RequireRole(actor, models.RoleAlumni, models.RoleUniversityAdmin); err != nil {
		return nil, err
	}

	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	var deadline *time.Time
	if req.RegistrationDeadline != nil {
		d := req.RegistrationDeadline.UTC()
		deadline = &d
	}
	if err := validateSchedule(start, end, deadline); err != nil {
		return nil, err
	}
	if !start.After(s.now()) {
		return nil, apperrors.NewValidationError("startTime", "startTime must be in the future")
	}

	status := models.EventStatusPublished
	if req.Status != "" {
		status = models.EventStatus(strings.ToUpper(req.Status))
	}

	event := &models.Event{
		UniversityID:         actor.UniversityID,
		OrganizerID:          actor.UserID,
		Title:                strings.TrimSpace(req.Title),
		Description:          helpers.TrimmedOrNil(req.Description),
		Location:             helpers.TrimmedOrNil(req.Location),
		IsVirtual:            req.IsVirtual,
		StartTime:            start,
		EndTime:              end,
		RegistrationDeadline: deadline,
		MaxAttendees:         req.MaxAttendees,
		Status:               status,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("eventID", event.ID).
		Int64("organizerID", actor.UserID).
		Str("status", string(status)).
		Msg("Event created")
	return event, nil
}

// Update applies a partial update; only the organizer or an admin may edit
func (s *eventServiceImpl) Update(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateEventRequest) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireManager(actor, event.OrganizerID, event.UniversityID, apperrors.ErrEventNotFound); err != nil {
		return nil, err
	}
	if event.Status == models.EventStatusCancelled {
		return nil, apperrors.NewConflictError("cancelled events cannot be edited")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title", "title must not be blank")
		}
		event.Title = title
	}
	mergeString(&event.Description, req.Description)
	mergeString(&event.Location, req.Location)
	if req.IsVirtual != nil {
		event.IsVirtual = *req.IsVirtual
	}
	if req.StartTime != nil {
		start := req.StartTime.UTC()
		if !start.After(s.now()) {
			return nil, apperrors.NewValidationError("startTime", "startTime must be in the future")
		}
		event.StartTime = start
	}
	if req.EndTime != nil {
		event.EndTime = req.EndTime.UTC()
	}
	if req.RegistrationDeadline != nil {
		d := req.RegistrationDeadline.UTC()
		event.RegistrationDeadline = &d
	}
	if err := validateSchedule(event.StartTime, event.EndTime, event.RegistrationDeadline); err != nil {
		return nil, err
	}

	if req.MaxAttendees != nil {
		if *req.MaxAttendees < event.AttendeeCount {
			return nil, apperrors.ErrCapacityBelowAttendees.WithDetails(map[string]interface{}{
				"attendeeCount": event.AttendeeCount,
			})
		}
		event.MaxAttendees = *req.MaxAttendees
	}
	if req.Status != nil {
		status := models.EventStatus(strings.ToUpper(*req.Status))
		if status == models.EventStatusDraft && event.AttendeeCount > 0 {
			return nil, apperrors.NewConflictError("an event with registrations cannot go back to draft")
		}
		event.Status = status
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event with its registrations
func (s *eventServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireManager(actor, event.OrganizerID, event.UniversityID, apperrors.ErrEventNotFound); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("eventID", id).Int64("deletedBy", actor.UserID).Msg("Event deleted")
	return nil
}

// Cancel marks the event CANCELLED and notifies everyone holding a seat
func (s *eventServiceImpl) Cancel(ctx context.Context, actor authz.Actor, id int64) (*models.Event, error) {
	event, registrants, err := s.eventRepo.Cancel(ctx, id, func(event *models.Event) error {
		if err := authz.RequireManager(actor, event.OrganizerID, event.UniversityID, apperrors.ErrEventNotFound); err != nil {
			return err
		}
		if event.Status == models.EventStatusCancelled {
			return apperrors.NewConflictError("event is already cancelled")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.bus, s.logger, eventbus.TopicEventCancelled, eventbus.EventCancelled{
		EventID:       event.ID,
		EventTitle:    event.Title,
		RegistrantIDs: registrants,
	})
	s.logger.Info().Int64("eventID", id).Int("registrants", len(registrants)).Msg("Event cancelled")
	return event, nil
}

// registrationCheck decides, with the event row locked, whether actor may take a seat
func (s *eventServiceImpl) registrationCheck(actor authz.Actor, locked *models.Event) repositories.RegistrationCheck {
	return func(event *models.Event, existing *models.EventRegistration) error {
		if !actor.InUniversity(event.UniversityID) {
			return apperrors.ErrEventNotFound
		}
		if event.Status == models.EventStatusDraft && !actor.CanManage(event.OrganizerID, event.UniversityID) {
			return apperrors.ErrEventNotFound
		}
		if event.Status != models.EventStatusPublished || !s.now().Before(event.RegistrationClosesAt()) {
			return apperrors.ErrRegistrationClosed
		}
		if existing != nil && existing.IsActive() {
			return apperrors.ErrAlreadyRegistered
		}
		if event.IsFull() {
			return apperrors.ErrEventFull
		}
		*locked = *event
		return nil
	}
}

// Register takes a seat for the caller
func (s *eventServiceImpl) Register(ctx context.Context, actor authz.Actor, eventID int64) (*models.EventRegistration, error) {
	var event models.Event
	registration, err := s.eventRepo.Register(ctx, eventID, actor.UserID, s.registrationCheck(actor, &event))
	if err != nil {
		return nil, err
	}

	payload := eventbus.EventRegistered{
		EventID:     event.ID,
		EventTitle:  event.Title,
		OrganizerID: event.OrganizerID,
		UserID:      actor.UserID,
		UserName:    strings.TrimSpace(registration.FirstName + " " + registration.LastName),
	}
	publish(ctx, s.bus, s.logger, eventbus.TopicEventRegistered, payload)

	s.logger.Info().Int64("eventID", eventID).Int64("userID", actor.UserID).Msg("User registered for event")
	return registration, nil
}

// CancelRegistration releases the caller's seat
func (s *eventServiceImpl) CancelRegistration(ctx context.Context, actor authz.Actor, eventID int64) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := authz.RequireTenant(actor, event.UniversityID, apperrors.ErrEventNotFound); err != nil {
		return err
	}
	return s.eventRepo.CancelRegistration(ctx, eventID, actor.UserID)
}

// ListRegistrations returns the registrants; organizer or admin only
func (s *eventServiceImpl) ListRegistrations(ctx context.Context, actor authz.Actor, eventID int64, limit, offset int) ([]*models.EventRegistration, int64, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	if err := authz.RequireManager(actor, event.OrganizerID, event.UniversityID, apperrors.ErrEventNotFound); err != nil {
		return nil, 0, err
	}
	return s.eventRepo.ListRegistrations(ctx, eventID, limit, offset)
}

// UpdateRegistration lets the organizer or an admin mark attendance
func (s *eventServiceImpl) UpdateRegistration(ctx context.Context, actor authz.Actor, eventID, userID int64, req *dto.UpdateRegistrationRequest) (*models.EventRegistration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireManager(actor, event.OrganizerID, event.UniversityID, apperrors.ErrEventNotFound); err != nil {
		return nil, err
	}

	status := models.RegistrationStatus(strings.ToUpper(req.Status))
	if status != models.RegistrationAttended && status != models.RegistrationRegistered {
		return nil, apperrors.NewValidationError("status", "status must be one of ATTENDED REGISTERED")
	}
	return s.eventRepo.UpdateRegistrationStatus(ctx, eventID, userID, status)
}

// ListRegistered returns the events the caller holds a seat for
func (s *eventServiceImpl) ListRegistered(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Event, int64, error) {
	return s.eventRepo.ListRegisteredEvents(ctx, actor.UserID, limit, offset)
}
