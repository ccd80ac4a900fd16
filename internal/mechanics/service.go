package mechanics

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	apperrors "github.com/torquehub/torquehub-backend/pkg/errors"
)

type mechanicRepo interface {
	Create(ctx context.Context, dto CreateMechanicDTO) (*models.Mechanic, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Mechanic, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Mechanic, error)
	Update(ctx context.Context, mechanic *models.Mechanic) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type membershipChecker interface {
	UserHasRole(ctx context.Context, shopID, userID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

// Service manages shop mechanic rosters.
type Service struct {
	repo        mechanicRepo
	memberships membershipChecker
}

func NewService(repo mechanicRepo, memberships membershipChecker) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("mechanic repository is required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("membership checker is required")
	}
	return &Service{repo: repo, memberships: memberships}, nil
}

// Create adds a mechanic to the shop roster. Owners and managers only.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, dto CreateMechanicDTO) (MechanicDTO, error) {
	if err := s.requireManager(ctx, dto.ShopID, actorID); err != nil {
		return MechanicDTO{}, err
	}
	mechanic, err := s.repo.Create(ctx, dto)
	if err != nil {
		return MechanicDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to create mechanic")
	}
	return FromModel(mechanic), nil
}

// GetByID fetches a single mechanic scoped to a shop.
func (s *Service) GetByID(ctx context.Context, shopID, id uuid.UUID) (MechanicDTO, error) {
	mechanic, err := s.load(ctx, shopID, id)
	if err != nil {
		return MechanicDTO{}, err
	}
	return FromModel(mechanic), nil
}

// ListByShop returns the shop's mechanic roster.
func (s *Service) ListByShop(ctx context.Context, shopID uuid.UUID) ([]MechanicDTO, error) {
	mechanics, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list mechanics")
	}
	out := make([]MechanicDTO, 0, len(mechanics))
	for i := range mechanics {
		out = append(out, FromModel(&mechanics[i]))
	}
	return out, nil
}

// Update modifies a mechanic's profile. Owners and managers only.
func (s *Service) Update(ctx context.Context, shopID, id, actorID uuid.UUID, dto UpdateMechanicDTO) (MechanicDTO, error) {
	if err := s.requireManager(ctx, shopID, actorID); err != nil {
		return MechanicDTO{}, err
	}
	mechanic, err := s.load(ctx, shopID, id)
	if err != nil {
		return MechanicDTO{}, err
	}
	if dto.FirstName != nil {
		mechanic.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		mechanic.LastName = *dto.LastName
	}
	if dto.Title != nil {
		mechanic.Title = dto.Title
	}
	if err := s.repo.Update(ctx, mechanic); err != nil {
		return MechanicDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to update mechanic")
	}
	return FromModel(mechanic), nil
}

// Deactivate takes a mechanic off the active roster without deleting
// their history. Owners and managers only.
func (s *Service) Deactivate(ctx context.Context, shopID, id, actorID uuid.UUID) error {
	if err := s.requireManager(ctx, shopID, actorID); err != nil {
		return err
	}
	if _, err := s.load(ctx, shopID, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to deactivate mechanic")
	}
	return nil
}

// AddRating folds a 1-5 rating into the mechanic's running average.
func (s *Service) AddRating(ctx context.Context, shopID, id uuid.UUID, rating int) (MechanicDTO, error) {
	if rating < 1 || rating > 5 {
		return MechanicDTO{}, apperrors.New(apperrors.CodeValidation, "rating must be between 1 and 5")
	}
	mechanic, err := s.load(ctx, shopID, id)
	if err != nil {
		return MechanicDTO{}, err
	}

	total := mechanic.AverageRating.Mul(decimal.NewFromInt(int64(mechanic.RatingCount))).
		Add(decimal.NewFromInt(int64(rating)))
	mechanic.RatingCount++
	mechanic.AverageRating = total.
		Div(decimal.NewFromInt(int64(mechanic.RatingCount))).
		Round(2)

	if err := s.repo.Update(ctx, mechanic); err != nil {
		return MechanicDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to save rating")
	}
	return FromModel(mechanic), nil
}

func (s *Service) load(ctx context.Context, shopID, id uuid.UUID) (*models.Mechanic, error) {
	mechanic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "mechanic not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load mechanic")
	}
	if mechanic.ShopID != shopID {
		return nil, apperrors.New(apperrors.CodeNotFound, "mechanic not found")
	}
	return mechanic, nil
}

func (s *Service) requireManager(ctx context.Context, shopID, actorID uuid.UUID) error {
	allowed, err := s.memberships.UserHasRole(ctx, shopID, actorID, enums.MemberRoleOwner, enums.MemberRoleManager)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to check membership")
	}
	if !allowed {
		return apperrors.New(apperrors.CodeForbidden, "only shop owners and managers can manage mechanics")
	}
	return nil
}
