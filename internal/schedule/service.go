package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	apperrors "github.com/torquehub/torquehub-backend/pkg/errors"
)

type appointmentRepo interface {
	Create(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	ListWindow(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) error
	CountScheduledWindow(ctx context.Context, shopID uuid.UUID, from, to time.Time) (int64, error)
}

type jobCounter interface {
	CountByStatus(ctx context.Context, shopID uuid.UUID) (map[enums.JobStatus]int64, error)
	CountCompletedSince(ctx context.Context, shopID uuid.UUID, cutoff time.Time) (int64, error)
}

type teamCounter interface {
	CountActive(ctx context.Context, shopID uuid.UUID) (int64, error)
}

// Service manages the shop calendar and the portal dashboard counters.
type Service struct {
	repo appointmentRepo
	jobs jobCounter
	team teamCounter
	now  func() time.Time
}

func NewService(repo appointmentRepo, jobs jobCounter, team teamCounter) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("appointment repository is required")
	}
	if jobs == nil {
		return nil, fmt.Errorf("job counter is required")
	}
	if team == nil {
		return nil, fmt.Errorf("team counter is required")
	}
	return &Service{repo: repo, jobs: jobs, team: team, now: time.Now}, nil
}

// Create books a new appointment.
func (s *Service) Create(ctx context.Context, dto CreateAppointmentDTO) (AppointmentDTO, error) {
	if dto.ScheduledAt.Before(s.now().UTC().Add(-24 * time.Hour)) {
		return AppointmentDTO{}, apperrors.New(apperrors.CodeValidation, "appointments cannot be booked in the past")
	}
	appt := dto.ToModel()
	if err := s.repo.Create(ctx, appt); err != nil {
		return AppointmentDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to create appointment")
	}
	return FromModel(appt), nil
}

// ListDay returns the shop's appointments for the UTC day containing the
// provided time.
func (s *Service) ListDay(ctx context.Context, shopID uuid.UUID, day time.Time) ([]AppointmentDTO, error) {
	from := day.UTC().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)
	appts, err := s.repo.ListWindow(ctx, shopID, from, to)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list appointments")
	}
	out := make([]AppointmentDTO, 0, len(appts))
	for i := range appts {
		out = append(out, FromModel(&appts[i]))
	}
	return out, nil
}

// Update modifies an appointment, including status moves. Terminal
// statuses are final.
func (s *Service) Update(ctx context.Context, shopID, id uuid.UUID, dto UpdateAppointmentDTO) (AppointmentDTO, error) {
	appt, err := s.load(ctx, shopID, id)
	if err != nil {
		return AppointmentDTO{}, err
	}
	if appt.Status != enums.AppointmentStatusScheduled {
		return AppointmentDTO{}, apperrors.New(apperrors.CodeStateConflict, "only scheduled appointments can be changed").
			WithDetails(map[string]any{"status": appt.Status.String()})
	}

	if dto.CustomerName != nil {
		appt.CustomerName = *dto.CustomerName
	}
	if dto.ScheduledAt != nil {
		appt.ScheduledAt = dto.ScheduledAt.UTC()
	}
	if dto.DurationMinutes != nil {
		appt.DurationMinutes = *dto.DurationMinutes
	}
	if dto.MechanicID != nil {
		appt.MechanicID = dto.MechanicID
	}
	if dto.Notes != nil {
		appt.Notes = dto.Notes
	}
	if dto.Status != nil {
		status, err := enums.ParseAppointmentStatus(*dto.Status)
		if err != nil {
			return AppointmentDTO{}, apperrors.New(apperrors.CodeValidation, "unknown appointment status").
				WithDetails(map[string]any{"status": *dto.Status})
		}
		appt.Status = status
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		return AppointmentDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to update appointment")
	}
	return FromModel(appt), nil
}

// Dashboard aggregates the portal landing counters for a shop.
func (s *Service) Dashboard(ctx context.Context, shopID uuid.UUID) (DashboardDTO, error) {
	now := s.now().UTC()
	counts, err := s.jobs.CountByStatus(ctx, shopID)
	if err != nil {
		return DashboardDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to count jobs")
	}
	completed, err := s.jobs.CountCompletedSince(ctx, shopID, now.AddDate(0, 0, -7))
	if err != nil {
		return DashboardDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to count completed jobs")
	}
	dayStart := now.Truncate(24 * time.Hour)
	today, err := s.repo.CountScheduledWindow(ctx, shopID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return DashboardDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to count appointments")
	}
	members, err := s.team.CountActive(ctx, shopID)
	if err != nil {
		return DashboardDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to count team members")
	}
	return DashboardDTO{
		OpenJobs:          counts[enums.JobStatusOpen],
		InProgressJobs:    counts[enums.JobStatusInProgress],
		CompletedThisWeek: completed,
		AppointmentsToday: today,
		ActiveTeamMembers: members,
	}, nil
}

func (s *Service) load(ctx context.Context, shopID, id uuid.UUID) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "appointment not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load appointment")
	}
	if appt.ShopID != shopID {
		return nil, apperrors.New(apperrors.CodeNotFound, "appointment not found")
	}
	return appt, nil
}
