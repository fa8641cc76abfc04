package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/db"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
	"github.com/yigit/unilink/internal/pkg/logger"
)

var eventColumns = []string{
	"id", "university_id", "organizer_id", "title", "description", "location", "is_virtual",
	"start_time", "end_time", "registration_deadline", "max_attendees", "attendee_count",
	"status", "created_at", "updated_at",
}

var registrationColumns = []string{
	"r.id", "r.event_id", "r.user_id", "r.status", "r.registered_at", "r.updated_at",
	"u.first_name", "u.last_name", "u.email",
}

// RegistrationCheck decides whether userID may take a seat. It runs while the
// event row is locked; existing is nil when the user never registered.
type RegistrationCheck func(event *models.Event, existing *models.EventRegistration) error

// EventCheck decides whether a status change may proceed on the locked event.
type EventCheck func(event *models.Event) error

// IEventRepository defines event and registration persistence
type IEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]*models.Event, int64, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
	Cancel(ctx context.Context, id int64, check EventCheck) (*models.Event, []int64, error)

	Register(ctx context.Context, eventID, userID int64, check RegistrationCheck) (*models.EventRegistration, error)
	CancelRegistration(ctx context.Context, eventID, userID int64) error
	GetRegistration(ctx context.Context, eventID, userID int64) (*models.EventRegistration, error)
	ListRegistrations(ctx context.Context, eventID int64, limit, offset int) ([]*models.EventRegistration, int64, error)
	UpdateRegistrationStatus(ctx context.Context, eventID, userID int64, status models.RegistrationStatus) (*models.EventRegistration, error)
	ListRegisteredEvents(ctx context.Context, userID int64, limit, offset int) ([]*models.Event, int64, error)
}

// EventRepository handles event database operations
type EventRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db, sb: newBuilder()}
}

func mapEventWriteError(err error) error {
	switch {
	case dberrors.IsCheckViolation(err, "events_attendee_count_check"):
		return apperrors.ErrCapacityBelowAttendees
	case dberrors.IsCheckViolation(err, "events_time_range_check"),
		dberrors.IsCheckViolation(err, "events_deadline_check"):
		return apperrors.ErrInvalidDateRange
	}
	return err
}

// Create inserts an event and fills its generated fields
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := r.sb.Insert("events").
		Columns("university_id", "organizer_id", "title", "description", "location", "is_virtual",
			"start_time", "end_time", "registration_deadline", "max_attendees", "status").
		Values(event.UniversityID, event.OrganizerID, event.Title, event.Description, event.Location, event.IsVirtual,
			event.StartTime, event.EndTime, event.RegistrationDeadline, event.MaxAttendees, event.Status).
		Suffix("RETURNING id, attendee_count, created_at, updated_at")

	err := scanInto(ctx, r.db, query, nil, &event.ID, &event.AttendeeCount, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if mapped := mapEventWriteError(err); mapped != err {
			return mapped
		}
		logger.Error().Err(err).Int64("organizerID", event.OrganizerID).Msg("Error creating event")
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := r.sb.Select(eventColumns...).From("events").Where(squirrel.Eq{"id": id})
	return queryOne[models.Event](ctx, r.db, query, apperrors.ErrEventNotFound)
}

func applyEventFilter(q squirrel.SelectBuilder, filter models.EventFilter) squirrel.SelectBuilder {
	q = q.Where(squirrel.Eq{"university_id": filter.UniversityID})
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if !filter.IncludeDrafts {
		q = q.Where(squirrel.NotEq{"status": models.EventStatusDraft})
	}
	if filter.OrganizerID > 0 {
		q = q.Where(squirrel.Eq{"organizer_id": filter.OrganizerID})
	}
	if filter.UpcomingOnly {
		q = q.Where(squirrel.Gt{"start_time": filter.Now})
	}
	return q
}

// List returns a page of events of one university
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]*models.Event, int64, error) {
	total, err := queryCount(ctx, r.db, applyEventFilter(r.sb.Select("COUNT(*)").From("events"), filter))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting events: %w", err)
	}

	query := applyEventFilter(r.sb.Select(eventColumns...).From("events"), filter).
		OrderBy("start_time ASC", "id ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	events, err := queryAll[models.Event](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing events: %w", err)
	}
	return events, total, nil
}

// Update writes the editable columns of an event
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := r.sb.Update("events").
		SetMap(map[string]interface{}{
			"title":                 event.Title,
			"description":           event.Description,
			"location":              event.Location,
			"is_virtual":            event.IsVirtual,
			"start_time":            event.StartTime,
			"end_time":              event.EndTime,
			"registration_deadline": event.RegistrationDeadline,
			"max_attendees":         event.MaxAttendees,
			"status":                event.Status,
			"updated_at":            squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": event.ID}).
		Suffix("RETURNING attendee_count, updated_at")

	err := scanInto(ctx, r.db, query, apperrors.ErrEventNotFound, &event.AttendeeCount, &event.UpdatedAt)
	if err != nil {
		if mapped := mapEventWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error updating event: %w", err)
	}
	return nil
}

// Delete removes an event and its registrations
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	n, err := exec(ctx, r.db, r.sb.Delete("events").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if n == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// Cancel marks the event cancelled and returns it with the users holding a
// seat at that moment. The event row is locked across the check, the update
// and the registrant read so a concurrent registration lands either before
// the read or after the status change, never in between.
func (r *EventRepository) Cancel(ctx context.Context, id int64, check EventCheck) (*models.Event, []int64, error) {
	var (
		event       *models.Event
		registrants []int64
	)

	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		event, err = r.lockEvent(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := check(event); err != nil {
			return err
		}

		if _, err := exec(ctx, tx, r.cancelQuery(id)); err != nil {
			return fmt.Errorf("error updating event status: %w", err)
		}
		event.Status = models.EventStatusCancelled

		registrants, err = r.activeRegistrantIDs(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return event, registrants, nil
}

func (r *EventRepository) cancelQuery(id int64) squirrel.UpdateBuilder {
	return r.sb.Update("events").
		Set("status", models.EventStatusCancelled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
}

func (r *EventRepository) lockQuery(eventID int64) squirrel.SelectBuilder {
	return r.sb.Select(eventColumns...).From("events").Where(squirrel.Eq{"id": eventID}).Suffix("FOR UPDATE")
}

func (r *EventRepository) lockEvent(ctx context.Context, tx pgx.Tx, eventID int64) (*models.Event, error) {
	return queryOne[models.Event](ctx, tx, r.lockQuery(eventID), apperrors.ErrEventNotFound)
}

func (r *EventRepository) findRegistration(ctx context.Context, q db.DBTX, eventID, userID int64) (*models.EventRegistration, error) {
	query := r.sb.Select(registrationColumns...).
		From("event_registrations r").
		Join("users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.event_id": eventID, "r.user_id": userID})
	reg, err := queryOne[models.EventRegistration](ctx, q, query, apperrors.ErrNotRegistered)
	if errors.Is(err, apperrors.ErrNotRegistered) {
		return nil, nil
	}
	return reg, err
}

// Register takes a seat for userID. The event row stays locked from the
// check until the counter is incremented, so concurrent registrations for the
// last seat cannot both succeed.
func (r *EventRepository) Register(ctx context.Context, eventID, userID int64, check RegistrationCheck) (*models.EventRegistration, error) {
	var registration *models.EventRegistration

	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		event, err := r.lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}

		existing, err := r.findRegistration(ctx, tx, eventID, userID)
		if err != nil {
			return fmt.Errorf("error loading registration: %w", err)
		}

		if err := check(event, existing); err != nil {
			return err
		}

		if existing != nil {
			_, err = exec(ctx, tx, r.sb.Update("event_registrations").
				Set("status", models.RegistrationRegistered).
				Set("registered_at", squirrel.Expr("NOW()")).
				Set("updated_at", squirrel.Expr("NOW()")).
				Where(squirrel.Eq{"id": existing.ID}))
		} else {
			_, err = exec(ctx, tx, r.sb.Insert("event_registrations").
				Columns("event_id", "user_id", "status").
				Values(eventID, userID, models.RegistrationRegistered))
		}
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "event_registrations_event_user_key") {
				return apperrors.ErrAlreadyRegistered
			}
			return fmt.Errorf("error saving registration: %w", err)
		}

		if _, err := exec(ctx, tx, r.sb.Update("events").
			Set("attendee_count", squirrel.Expr("attendee_count + 1")).
			Where(squirrel.Eq{"id": eventID})); err != nil {
			if dberrors.IsCheckViolation(err, "events_attendee_count_check") {
				return apperrors.ErrEventFull
			}
			return fmt.Errorf("error incrementing attendee count: %w", err)
		}

		registration, err = r.findRegistration(ctx, tx, eventID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}

// CancelRegistration releases the seat of userID
func (r *EventRepository) CancelRegistration(ctx context.Context, eventID, userID int64) error {
	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := r.lockEvent(ctx, tx, eventID); err != nil {
			return err
		}

		n, err := exec(ctx, tx, r.sb.Update("event_registrations").
			Set("status", models.RegistrationCancelled).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"event_id": eventID, "user_id": userID, "status": models.RegistrationRegistered}))
		if err != nil {
			return fmt.Errorf("error cancelling registration: %w", err)
		}
		if n == 0 {
			return apperrors.ErrNotRegistered
		}

		_, err = exec(ctx, tx, r.sb.Update("events").
			Set("attendee_count", squirrel.Expr("GREATEST(attendee_count - 1, 0)")).
			Where(squirrel.Eq{"id": eventID}))
		if err != nil {
			return fmt.Errorf("error decrementing attendee count: %w", err)
		}
		return nil
	})
}

// GetRegistration returns the registration of userID, or ErrNotRegistered
func (r *EventRepository) GetRegistration(ctx context.Context, eventID, userID int64) (*models.EventRegistration, error) {
	reg, err := r.findRegistration(ctx, r.db, eventID, userID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperrors.ErrNotRegistered
	}
	return reg, nil
}

// ListRegistrations returns a page of registrations of an event, cancelled ones included
func (r *EventRepository) ListRegistrations(ctx context.Context, eventID int64, limit, offset int) ([]*models.EventRegistration, int64, error) {
	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").
		From("event_registrations").
		Where(squirrel.Eq{"event_id": eventID}))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting registrations: %w", err)
	}

	query := r.sb.Select(registrationColumns...).
		From("event_registrations r").
		Join("users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.event_id": eventID}).
		OrderBy("r.registered_at ASC", "r.id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	regs, err := queryAll[models.EventRegistration](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing registrations: %w", err)
	}
	return regs, total, nil
}

// UpdateRegistrationStatus moves an active registration to status
func (r *EventRepository) UpdateRegistrationStatus(ctx context.Context, eventID, userID int64, status models.RegistrationStatus) (*models.EventRegistration, error) {
	n, err := exec(ctx, r.db, r.sb.Update("event_registrations").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"event_id": eventID, "user_id": userID}).
		Where(squirrel.NotEq{"status": models.RegistrationCancelled}))
	if err != nil {
		return nil, fmt.Errorf("error updating registration: %w", err)
	}
	if n == 0 {
		return nil, apperrors.ErrNotRegistered
	}
	return r.GetRegistration(ctx, eventID, userID)
}

// ListRegisteredEvents returns the events userID holds an active registration for
func (r *EventRepository) ListRegisteredEvents(ctx context.Context, userID int64, limit, offset int) ([]*models.Event, int64, error) {
	active := squirrel.Expr(
		"id IN (SELECT event_id FROM event_registrations WHERE user_id = ? AND status <> ?)",
		userID, models.RegistrationCancelled,
	)

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("events").Where(active))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting registered events: %w", err)
	}

	query := r.sb.Select(eventColumns...).
		From("events").
		Where(active).
		OrderBy("start_time ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	events, err := queryAll[models.Event](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing registered events: %w", err)
	}
	return events, total, nil
}

func (r *EventRepository) registrantsQuery(eventID int64) squirrel.SelectBuilder {
	return r.sb.Select("user_id").
		From("event_registrations").
		Where(squirrel.Eq{"event_id": eventID}).
		Where(squirrel.NotEq{"status": models.RegistrationCancelled}).
		OrderBy("user_id")
}

// activeRegistrantIDs returns the users holding a seat
func (r *EventRepository) activeRegistrantIDs(ctx context.Context, q db.DBTX, eventID int64) ([]int64, error) {
	sql, args, err := r.registrantsQuery(eventID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build registrants query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing registrants: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("error scanning registrants: %w", err)
	}
	return ids, nil
}

