package memberships

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetActiveMembership retrieves the active membership for (shop, user), or
// nil when none exists.
func (r *Repository) GetActiveMembership(ctx context.Context, shopID, userID uuid.UUID) (*models.ShopMembership, error) {
	var membership models.ShopMembership
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND user_id = ? AND status = ?", shopID, userID, enums.MembershipStatusActive).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record. Callers are expected
// to have checked for an existing active row first; the pair is not
// constrained at the database level.
func (r *Repository) CreateMembership(ctx context.Context, dto CreateMembershipDTO) (*models.ShopMembership, error) {
	if !dto.Role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", dto.Role)
	}

	membership := &models.ShopMembership{
		ID:              uuid.New(),
		ShopID:          dto.ShopID,
		UserID:          dto.UserID,
		Role:            dto.Role,
		Status:          enums.MembershipStatusActive,
		MechanicID:      dto.MechanicID,
		InvitedByUserID: dto.InvitedByUserID,
		InvitedAt:       dto.InvitedAt,
		AcceptedAt:      dto.AcceptedAt,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// UserHasRole reports whether the user holds one of the provided roles for
// the shop through an active membership.
func (r *Repository) UserHasRole(ctx context.Context, shopID, userID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ShopMembership{}).
		Where("user_id = ? AND shop_id = ? AND status = ? AND role IN ?", userID, shopID, enums.MembershipStatusActive, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Remove marks the membership as removed instead of deleting the row.
func (r *Repository) Remove(ctx context.Context, shopID, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ShopMembership{}).
		Where("shop_id = ? AND user_id = ? AND status = ?", shopID, userID, enums.MembershipStatusActive).
		UpdateColumns(map[string]any{"status": enums.MembershipStatusRemoved, "updated_at": at}).Error
}

// CountActive returns the number of active members in the shop.
func (r *Repository) CountActive(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ShopMembership{}).
		Where("shop_id = ? AND status = ?", shopID, enums.MembershipStatusActive).
		Count(&count).Error
	return count, err
}

// ListTeamMembers returns active memberships for the shop joined with user
// profiles, in join order.
func (r *Repository) ListTeamMembers(ctx context.Context, shopID uuid.UUID) ([]TeamMemberDTO, error) {
	var rows []teamMemberRow
	err := r.db.WithContext(ctx).
		Model(&models.ShopMembership{}).
		Select("shop_memberships.*, users.email, users.first_name, users.last_name, users.image_url").
		Joins("JOIN users ON users.id = shop_memberships.user_id").
		Where("shop_memberships.shop_id = ? AND shop_memberships.status = ?", shopID, enums.MembershipStatusActive).
		Order("shop_memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return teamMembersFromRows(rows), nil
}

// ListUserShops returns the shops a user belongs to with membership metadata.
func (r *Repository) ListUserShops(ctx context.Context, userID uuid.UUID) ([]MembershipWithShop, error) {
	var rows []membershipWithShopRow
	err := r.db.WithContext(ctx).
		Model(&models.ShopMembership{}).
		Select("shop_memberships.*, shops.name AS shop_name, shops.slug AS shop_slug").
		Joins("JOIN shops ON shops.id = shop_memberships.shop_id").
		Where("shop_memberships.user_id = ? AND shop_memberships.status = ?", userID, enums.MembershipStatusActive).
		Order("shops.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return membershipRowsToDTO(rows), nil
}
