package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"sharedcal/internal/bookings/agenda"
	"sharedcal/internal/bookings/conflict"
	bookingserrors "sharedcal/internal/bookings/errors"
	"sharedcal/internal/bookings/events"
	"sharedcal/internal/bookings/repository"
	"sharedcal/internal/bookings/validator"
	"sharedcal/pkg/config"
	apperrors "sharedcal/pkg/errors"
	"sharedcal/pkg/model"
	"sharedcal/pkg/sanitizer"
)

const resourceBooking = "Booking"

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.ActionResult, error)
	CheckIn(ctx context.Context, id int) (*model.ActionResult, error)
	CheckOut(ctx context.Context, id int) (*model.ActionResult, error)
	Delete(ctx context.Context, id int) (*model.ActionResult, error)
	List(ctx context.Context, date *model.Date) (*model.DayAgenda, error)
	Active(ctx context.Context) (*model.Booking, error)
	Team() model.Team
}

type bookingService struct {
	store     *repository.Serialized
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	store *repository.Serialized,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		store:     store,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       cfg.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.ActionResult, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Request body is required")
	}

	if err := s.resolveHolder(req); err != nil {
		return nil, err
	}
	s.sanitize(req)

	draft, err := s.validator.Validate(req)
	if err != nil {
		return nil, s.validationError(err)
	}

	var created model.Booking
	_, err = s.store.Update(ctx, func(bookings []model.Booking) ([]model.Booking, error) {
		if clash, ok := conflict.Find(draft, bookings); ok {
			return nil, apperrors.Conflict(fmt.Sprintf(
				"Booking time conflicts with an existing booking (%s %s-%s)",
				clash.Name, clash.Start, clash.End,
			)).WithDetails(map[string]any{
				"id":    clash.ID,
				"name":  clash.Name,
				"date":  clash.Date.String(),
				"start": clash.Start.String(),
				"end":   clash.End.String(),
			}).WithCause(bookingserrors.ErrTimeConflict)
		}

		created = draft
		created.ID = agenda.NextID(bookings)
		created.Status = model.StatusBooked
		return append(bookings, created), nil
	})
	if err != nil {
		return nil, s.translate("create", 0, err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", created.ID,
		"date", created.Date.String(),
		"start", created.Start.String(),
		"end", created.End.String(),
	)
	s.publish(ctx, events.TypeCreated, created)

	return &model.ActionResult{Success: true, Message: "Booking created", Booking: &created}, nil
}

// CheckIn marks id as holding the shared account. Only one booking may be
// checked in at a time; re-checking the active booking succeeds unchanged.
func (s *bookingService) CheckIn(ctx context.Context, id int) (*model.ActionResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var updated model.Booking
	_, err := s.store.Update(ctx, func(bookings []model.Booking) ([]model.Booking, error) {
		if active := agenda.Active(bookings); active != nil && active.ID != id {
			return nil, apperrors.AlreadyInUse(
				fmt.Sprintf("Shared account is already in use by %s (%s-%s)", active.Name, active.Start, active.End),
				map[string]any{
					"id":    active.ID,
					"name":  active.Name,
					"start": active.Start.String(),
					"end":   active.End.String(),
				},
			).WithCause(bookingserrors.ErrAlreadyInUse)
		}

		i := indexOf(bookings, id)
		if i < 0 {
			return nil, notFound(id)
		}
		bookings[i].Status = model.StatusCheckedIn
		updated = bookings[i]
		return bookings, nil
	})
	if err != nil {
		return nil, s.translate("check in", id, err)
	}

	s.cfg.Log.Info("Booking checked in", "id", id)
	s.publish(ctx, events.TypeCheckedIn, updated)

	return &model.ActionResult{Success: true, Message: "Checked in", Booking: &updated}, nil
}

// CheckOut releases the account. Any state may be checked out.
func (s *bookingService) CheckOut(ctx context.Context, id int) (*model.ActionResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var updated model.Booking
	_, err := s.store.Update(ctx, func(bookings []model.Booking) ([]model.Booking, error) {
		i := indexOf(bookings, id)
		if i < 0 {
			return nil, notFound(id)
		}
		bookings[i].Status = model.StatusCheckedOut
		updated = bookings[i]
		return bookings, nil
	})
	if err != nil {
		return nil, s.translate("check out", id, err)
	}

	s.cfg.Log.Info("Booking checked out", "id", id)
	s.publish(ctx, events.TypeCheckedOut, updated)

	return &model.ActionResult{Success: true, Message: "Checked out", Booking: &updated}, nil
}

func (s *bookingService) Delete(ctx context.Context, id int) (*model.ActionResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var removed model.Booking
	_, err := s.store.Update(ctx, func(bookings []model.Booking) ([]model.Booking, error) {
		i := indexOf(bookings, id)
		if i < 0 {
			return nil, notFound(id)
		}
		removed = bookings[i]
		return slices.DeleteFunc(bookings, func(b model.Booking) bool { return b.ID == id }), nil
	})
	if err != nil {
		return nil, s.translate("delete", id, err)
	}

	s.cfg.Log.Info("Booking deleted", "id", id)
	s.publish(ctx, events.TypeDeleted, removed)

	return &model.ActionResult{Success: true, Message: "Booking deleted", Booking: &removed}, nil
}

// List returns the agenda for date, or for today in the configured zone
// when date is nil.
func (s *bookingService) List(ctx context.Context, date *model.Date) (*model.DayAgenda, error) {
	bookings, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, s.translate("list", 0, err)
	}

	day := model.DateOf(s.now())
	if date != nil && !date.IsZero() {
		day = *date
	}

	result := agenda.Day(bookings, day)
	return &result, nil
}

func (s *bookingService) Active(ctx context.Context) (*model.Booking, error) {
	bookings, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, s.translate("get active", 0, err)
	}
	return agenda.Active(bookings), nil
}

func (s *bookingService) Team() model.Team {
	members := make([]string, len(s.cfg.TeamMembers))
	copy(members, s.cfg.TeamMembers)
	return model.Team{
		Members:    members,
		OtherLabel: s.cfg.OtherPersonLabel,
	}
}

// resolveHolder fills req.Name from the roster selection when no explicit
// name was sent. Picking the "other" label means the free-form other_name
// is the holder.
func (s *bookingService) resolveHolder(req *model.BookingRequest) error {
	if strings.TrimSpace(req.Name) != "" {
		return nil
	}

	person := sanitizer.SanitizeDisplayName(req.Person)
	if person == "" {
		return nil
	}

	if person == s.cfg.OtherPersonLabel {
		req.Name = req.OtherName
		return nil
	}

	if len(s.cfg.TeamMembers) > 0 && !slices.Contains(s.cfg.TeamMembers, person) {
		return apperrors.Validation("Validation failed", map[string]any{
			"person": fmt.Sprintf("person must be a team member or %q", s.cfg.OtherPersonLabel),
		})
	}
	req.Name = person
	return nil
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.Name = sanitizer.SanitizeDisplayName(req.Name)
	req.Purpose = sanitizer.SanitizeFreeText(req.Purpose)
	req.Date = strings.TrimSpace(req.Date)
	req.Start = strings.TrimSpace(req.Start)
	req.End = strings.TrimSpace(req.End)
}

func (s *bookingService) validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Validation failed", verrs.Details()).WithCause(err)
	}
	return apperrors.Internal("Failed to validate booking", err)
}

// translate passes AppErrors through and turns anything else into an
// internal error, logging it once.
func (s *bookingService) translate(action string, id int, err error) error {
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}
	s.cfg.Log.Error("Failed to "+action+" booking", "id", id, "error", err)
	return apperrors.Internal(fmt.Sprintf("Failed to %s booking", action), err)
}

func (s *bookingService) publish(ctx context.Context, eventType string, b model.Booking) {
	if err := s.publisher.Publish(ctx, events.New(eventType, b, s.now())); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"id", b.ID,
			"error", err,
		)
	}
}

func validateID(id int) error {
	if id <= 0 {
		return apperrors.InvalidInput(fmt.Sprintf("Invalid booking ID: %d", id)).WithCause(bookingserrors.ErrInvalidID)
	}
	return nil
}

func notFound(id int) error {
	return apperrors.NotFoundWithID(resourceBooking, id).WithCause(bookingserrors.ErrNotFound)
}

func indexOf(bookings []model.Booking, id int) int {
	return slices.IndexFunc(bookings, func(b model.Booking) bool { return b.ID == id })
}
