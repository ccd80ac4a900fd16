package invitations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
)

// Repository handles invitation persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new pending invitation.
func (r *Repository) Create(ctx context.Context, dto CreateInvitationDTO) (*models.ShopInvitation, error) {
	inv := &models.ShopInvitation{
		ID:                uuid.New(),
		ShopID:            dto.ShopID,
		InviterID:         dto.InviterID,
		Email:             dto.Email,
		Role:              dto.Role,
		Token:             dto.Token,
		MechanicID:        dto.MechanicID,
		ClerkInvitationID: dto.ClerkInvitationID,
		Status:            enums.InvitationStatusPending,
		ExpiresAt:         dto.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// FindByID loads an invitation by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShopInvitation, error) {
	var inv models.ShopInvitation
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByToken loads an invitation by its correlation token.
func (r *Repository) FindByToken(ctx context.Context, token string) (*models.ShopInvitation, error) {
	var inv models.ShopInvitation
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByClerkInvitationID loads an invitation by the provider's id.
func (r *Repository) FindByClerkInvitationID(ctx context.Context, clerkInvitationID string) (*models.ShopInvitation, error) {
	var inv models.ShopInvitation
	err := r.db.WithContext(ctx).
		Where("clerk_invitation_id = ?", clerkInvitationID).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindPendingByShopAndEmail returns the pending, unexpired invitation for
// the email within a shop, or nil when none exists.
func (r *Repository) FindPendingByShopAndEmail(ctx context.Context, shopID uuid.UUID, email string) (*models.ShopInvitation, error) {
	var inv models.ShopInvitation
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND LOWER(email) = LOWER(?) AND status = ? AND expires_at > ?",
			shopID, email, enums.InvitationStatusPending, time.Now().UTC()).
		Order("created_at DESC").
		First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// FindLatestPendingByEmail returns the most recent pending, unexpired
// invitation for the email across all shops, or nil when none exists.
// Email is the weakest correlation key and only consulted when neither
// token nor provider id resolved the record.
func (r *Repository) FindLatestPendingByEmail(ctx context.Context, email string) (*models.ShopInvitation, error) {
	var inv models.ShopInvitation
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND status = ? AND expires_at > ?",
			email, enums.InvitationStatusPending, time.Now().UTC()).
		Order("created_at DESC").
		First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// ListByShop returns a shop's invitations, newest first.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.ShopInvitation, error) {
	var invs []models.ShopInvitation
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

// MarkAccepted finalizes a pending invitation. The status predicate makes
// the transition a no-op when a concurrent trigger won the race.
func (r *Repository) MarkAccepted(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ShopInvitation{}).
		Where("id = ? AND status = ?", id, enums.InvitationStatusPending).
		Updates(map[string]any{
			"status":              enums.InvitationStatusAccepted,
			"accepted_by_user_id": userID,
			"accepted_at":         at,
		}).Error
}

// MarkRevoked cancels a pending invitation.
func (r *Repository) MarkRevoked(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ShopInvitation{}).
		Where("id = ? AND status = ?", id, enums.InvitationStatusPending).
		UpdateColumn("status", enums.InvitationStatusRevoked).Error
}

// MarkExpiredBatch durably expires pending invitations past their TTL,
// up to limit rows, and reports how many were updated.
func (r *Repository) MarkExpiredBatch(ctx context.Context, now time.Time, limit int) (int64, error) {
	if limit <= 0 {
		limit = 100
	}
	sub := r.db.WithContext(ctx).
		Model(&models.ShopInvitation{}).
		Select("id").
		Where("status = ? AND expires_at <= ?", enums.InvitationStatusPending, now).
		Limit(limit)

	res := r.db.WithContext(ctx).
		Model(&models.ShopInvitation{}).
		Where("id IN (?)", sub).
		UpdateColumn("status", enums.InvitationStatusExpired)
	return res.RowsAffected, res.Error
}
