package shops

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

// Repository handles shop persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to shop operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithOwner registers a shop together with its owner membership
// and promotes the owning user in a single transaction.
func (r *Repository) CreateWithOwner(ctx context.Context, dto CreateShopDTO) (*models.Shop, error) {
	shop := dto.ToModel()
	shop.ID = uuid.New()
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shop).Error; err != nil {
			return err
		}
		membership := &models.ShopMembership{
			ID:         uuid.New(),
			ShopID:     shop.ID,
			UserID:     dto.OwnerID,
			Role:       enums.MemberRoleOwner,
			Status:     enums.MembershipStatusActive,
			AcceptedAt: &now,
		}
		if err := tx.Create(membership).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", dto.OwnerID).
			UpdateColumn("role", enums.UserRoleShopOwner).Error
	})
	if err != nil {
		return nil, err
	}
	return shop, nil
}

// FindByID loads a shop by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindBySlug loads a shop by its unique slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// Update saves the provided shop.
func (r *Repository) Update(ctx context.Context, shop *models.Shop) error {
	if shop == nil {
		return fmt.Errorf("shop is required")
	}
	return r.db.WithContext(ctx).Save(shop).Error
}

// SetActive toggles the shop's active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active).Error
}

// List returns shops for the admin panel, newest first.
func (r *Repository) List(ctx context.Context, page pagination.Params) ([]models.Shop, error) {
	params := page.Normalize()
	var shops []models.Shop
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&shops).Error
	if err != nil {
		return nil, err
	}
	return shops, nil
}
