package mechanics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
)

// Repository handles mechanic profile persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new mechanic profile.
func (r *Repository) Create(ctx context.Context, dto CreateMechanicDTO) (*models.Mechanic, error) {
	mechanic := dto.ToModel()
	mechanic.ID = uuid.New()
	if err := r.db.WithContext(ctx).Create(mechanic).Error; err != nil {
		return nil, err
	}
	return mechanic, nil
}

// FindByID loads a mechanic by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Mechanic, error) {
	var mechanic models.Mechanic
	if err := r.db.WithContext(ctx).First(&mechanic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &mechanic, nil
}

// ListByShop returns the mechanics of a shop, active first.
func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Mechanic, error) {
	var mechanics []models.Mechanic
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("is_active DESC, created_at ASC").
		Find(&mechanics).Error
	if err != nil {
		return nil, err
	}
	return mechanics, nil
}

// Update saves the provided mechanic.
func (r *Repository) Update(ctx context.Context, mechanic *models.Mechanic) error {
	if mechanic == nil {
		return fmt.Errorf("mechanic is required")
	}
	return r.db.WithContext(ctx).Save(mechanic).Error
}

// SetActive toggles a mechanic's active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Mechanic{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active).Error
}
