package shops

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db"
	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	apperrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type shopRepo interface {
	CreateWithOwner(ctx context.Context, dto CreateShopDTO) (*models.Shop, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindBySlug(ctx context.Context, slug string) (*models.Shop, error)
	Update(ctx context.Context, shop *models.Shop) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, page pagination.Params) ([]models.Shop, error)
}

type membershipChecker interface {
	UserHasRole(ctx context.Context, shopID, userID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

// Service implements shop registration and profile management.
type Service struct {
	repo        shopRepo
	memberships membershipChecker
}

// NewService wires the shop service.
func NewService(repo shopRepo, memberships membershipChecker) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository is required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("membership checker is required")
	}
	return &Service{repo: repo, memberships: memberships}, nil
}

// Create registers a new shop owned by the calling user. The slug must
// be unique; a conflicting slug fails with a conflict error rather than
// silently renaming.
func (s *Service) Create(ctx context.Context, dto CreateShopDTO) (ShopDTO, error) {
	if !slugPattern.MatchString(dto.Slug) {
		return ShopDTO{}, apperrors.New(apperrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
	}
	shop, err := s.repo.CreateWithOwner(ctx, dto)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_shops_slug") {
			return ShopDTO{}, apperrors.New(apperrors.CodeConflict, "a shop with this slug already exists")
		}
		return ShopDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to create shop")
	}
	return FromModel(shop), nil
}

// GetByID fetches a shop by id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (ShopDTO, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShopDTO{}, apperrors.New(apperrors.CodeNotFound, "shop not found")
		}
		return ShopDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load shop")
	}
	return FromModel(shop), nil
}

// GetBySlug fetches a shop by its public slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (ShopDTO, error) {
	shop, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShopDTO{}, apperrors.New(apperrors.CodeNotFound, "shop not found")
		}
		return ShopDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load shop")
	}
	return FromModel(shop), nil
}

// Update modifies a shop's profile. Only owners and managers of the
// shop may update it. The slug is immutable.
func (s *Service) Update(ctx context.Context, shopID, actorID uuid.UUID, dto UpdateShopDTO) (ShopDTO, error) {
	allowed, err := s.memberships.UserHasRole(ctx, shopID, actorID, enums.MemberRoleOwner, enums.MemberRoleManager)
	if err != nil {
		return ShopDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to check membership")
	}
	if !allowed {
		return ShopDTO{}, apperrors.New(apperrors.CodeForbidden, "only shop owners and managers can update the shop")
	}

	shop, err := s.repo.FindByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShopDTO{}, apperrors.New(apperrors.CodeNotFound, "shop not found")
		}
		return ShopDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load shop")
	}

	applyShopUpdate(shop, dto)
	if err := s.repo.Update(ctx, shop); err != nil {
		return ShopDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to update shop")
	}
	return FromModel(shop), nil
}

// SetActive toggles a shop's active flag. Reserved for admins.
func (s *Service) SetActive(ctx context.Context, shopID uuid.UUID, active bool) error {
	if _, err := s.repo.FindByID(ctx, shopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "shop not found")
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to load shop")
	}
	if err := s.repo.SetActive(ctx, shopID, active); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to update shop status")
	}
	return nil
}

// List returns shops for the admin panel.
func (s *Service) List(ctx context.Context, page pagination.Params) ([]ShopDTO, error) {
	shops, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list shops")
	}
	out := make([]ShopDTO, 0, len(shops))
	for i := range shops {
		out = append(out, FromModel(&shops[i]))
	}
	return out, nil
}

func applyShopUpdate(shop *models.Shop, dto UpdateShopDTO) {
	if dto.Name != nil {
		shop.Name = *dto.Name
	}
	if dto.Phone != nil {
		shop.Phone = dto.Phone
	}
	if dto.Email != nil {
		shop.Email = dto.Email
	}
	if dto.AddressLine1 != nil {
		shop.AddressLine1 = *dto.AddressLine1
	}
	if dto.AddressLine2 != nil {
		shop.AddressLine2 = dto.AddressLine2
	}
	if dto.City != nil {
		shop.City = *dto.City
	}
	if dto.State != nil {
		shop.State = *dto.State
	}
	if dto.PostalCode != nil {
		shop.PostalCode = *dto.PostalCode
	}
	if dto.Website != nil {
		shop.Website = dto.Website
	}
	if dto.Description != nil {
		shop.Description = dto.Description
	}
	if dto.Specialties != nil {
		shop.Specialties = pq.StringArray(dto.Specialties)
	}
}
