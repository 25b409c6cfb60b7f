package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/domain/repositories"
	"github.com/rajcreationz/livesite/internal/infrastructure/calendar"
	"github.com/rajcreationz/livesite/internal/infrastructure/email"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/security"
)

// ScheduleService lists, edits and exports schedule events.
type ScheduleService struct {
	repo     repositories.ScheduleRepository
	exporter *calendar.Exporter
	mailer   email.Service
	logger   *logging.ChanneledLogger
	timeout  time.Duration
	now      func() time.Time
}

// NewScheduleService wires the service. mailer may be nil, which disables
// reminders.
func NewScheduleService(repo repositories.ScheduleRepository, exporter *calendar.Exporter, mailer email.Service, logger *logging.ChanneledLogger, timeout time.Duration) *ScheduleService {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &ScheduleService{repo: repo, exporter: exporter, mailer: mailer, logger: logger, timeout: timeout, now: time.Now}
}

// List returns events ordered by date. Read failures degrade to an empty list.
func (s *ScheduleService) List(ctx context.Context, filters schedule.Filters, display schedule.DisplayFilter) []schedule.Event {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	events, err := s.repo.FindAll(ctx, filters)
	if err != nil {
		s.logger.Schedule().Warn("Failed to load schedule events", "error", err.Error())
		return []schedule.Event{}
	}
	return display.Apply(events)
}

// Month lays out the events of one month as a calendar grid.
func (s *ScheduleService) Month(ctx context.Context, year int, month time.Month) schedule.Month {
	events := s.List(ctx, schedule.Filters{}, schedule.FilterAll)
	return schedule.BuildMonth(year, month, events)
}

// Get returns one event or errs.ErrNotFound.
func (s *ScheduleService) Get(ctx context.Context, id string) (*schedule.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ev, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, errs.ErrNotFound
	}
	return ev, nil
}

// Save validates and upserts ev. An event without ID gets a new one; an
// existing ID is updated in place.
func (s *ScheduleService) Save(ctx context.Context, ev *schedule.Event) error {
	ev.Title = strings.TrimSpace(ev.Title)
	ev.ApplyDefaults()
	if err := ev.Validate(); err != nil {
		return err
	}

	now := s.now().UTC()
	if ev.ID == "" {
		ev.ID = security.GenerateULID()
		ev.CreatedAt = now
	}
	ev.UpdatedAt = now

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Upsert(ctx, ev); err != nil {
		s.logger.Schedule().Error("Failed to save schedule event", "id", ev.ID, "error", err.Error())
		return err
	}
	s.logger.Schedule().Info("Schedule event saved", "id", ev.ID, "title", ev.Title, "date", ev.Date)
	return nil
}

func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errs.Invalid("id", "is required")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Schedule().Info("Schedule event deleted", "id", id)
	return nil
}

// ExportICS returns the calendar file name and body for event id.
func (s *ScheduleService) ExportICS(ctx context.Context, id string) (string, []byte, error) {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	body, err := s.exporter.Export(*ev)
	if err != nil {
		return "", nil, fmt.Errorf("failed to export event %s: %w", id, err)
	}
	return ev.ICSFileName(), []byte(body), nil
}

// SetReminder emails the event with its calendar file attached.
func (s *ScheduleService) SetReminder(ctx context.Context, id, address, eventURL string) error {
	if s.mailer == nil {
		return errs.ErrUnavailable
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(address))
	if err != nil {
		return errs.Invalid("email", "must be a valid email address")
	}

	ev, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if ev.Status == schedule.StatusPast || ev.Status == schedule.StatusCancelled {
		return errs.Invalid("id", "reminders are only available for upcoming events")
	}
	body, err := s.exporter.Export(*ev)
	if err != nil {
		return fmt.Errorf("failed to export event %s: %w", id, err)
	}

	if err := s.mailer.SendEventReminder(addr.Address, *ev, []byte(body), eventURL); err != nil {
		s.logger.Schedule().Error("Failed to send reminder", "id", id, "error", err.Error())
		return errs.Remote("send_reminder", err)
	}
	s.logger.Schedule().Info("Reminder sent", "id", id)
	return nil
}

