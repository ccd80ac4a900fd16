package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByClerkID loads a user by the identity provider's id.
func (r *Repository) FindByClerkID(ctx context.Context, clerkUserID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("clerk_user_id = ?", clerkUserID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates or refreshes the local mirror of a provider account,
// keyed by the provider's user id. The webhook consumer calls this on every
// user lifecycle event, so repeats must converge on the same row.
func (r *Repository) Upsert(ctx context.Context, dto UpsertUserDTO) (*models.User, error) {
	existing, err := r.FindByClerkID(ctx, dto.ClerkUserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing == nil {
		user := dto.ToModel()
		user.ID = uuid.New()
		if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	}

	existing.Email = dto.Email
	existing.FirstName = dto.FirstName
	existing.LastName = dto.LastName
	existing.ImageURL = dto.ImageURL
	if dto.Role != nil && existing.Role != enums.UserRoleAdmin {
		existing.Role = *dto.Role
	}
	existing.Deleted = false
	existing.DeletedAt = nil
	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// UpdateRole patches only the platform role.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("role", role).Error
}

// MarkDeleted soft-deletes the local record for a provider-deleted account.
func (r *Repository) MarkDeleted(ctx context.Context, clerkUserID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("clerk_user_id = ?", clerkUserID).
		UpdateColumns(map[string]any{"deleted": true, "deleted_at": at}).Error
}

// List returns users for the admin panel, newest first.
func (r *Repository) List(ctx context.Context, page pagination.Params) ([]models.User, error) {
	params := page.Normalize()
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
