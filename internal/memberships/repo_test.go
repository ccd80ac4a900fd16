//go:build db
// +build db

package memberships

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TORQUEHUB_DB_DSN")
	if dsn == "" {
		t.Skip("TORQUEHUB_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func seedUser(t *testing.T, tx *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:          uuid.New(),
		ClerkUserID: "user_test_" + uuid.NewString(),
		Email:       fmt.Sprintf("th_test_%s@example.com", uuid.NewString()),
		FirstName:   "Test",
		LastName:    "Member",
		Role:        role,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedShop(t *testing.T, tx *gorm.DB, ownerID uuid.UUID) *models.Shop {
	t.Helper()
	shop := &models.Shop{
		ID:      uuid.New(),
		Name:    "Test Garage",
		Slug:    "test-garage-" + uuid.NewString()[:8],
		OwnerID: ownerID,
	}
	if err := tx.Create(shop).Error; err != nil {
		t.Fatalf("create shop: %v", err)
	}
	return shop
}

func TestRepositoryMembershipFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	owner := seedUser(t, tx, enums.UserRoleShopOwner)
	mechanic := seedUser(t, tx, enums.UserRoleShopMechanic)
	shop := seedShop(t, tx, owner.ID)

	now := time.Now().UTC()
	created, err := repo.CreateMembership(ctx, CreateMembershipDTO{
		ShopID:          shop.ID,
		UserID:          mechanic.ID,
		Role:            enums.MemberRoleMechanic,
		InvitedByUserID: &owner.ID,
		AcceptedAt:      &now,
	})
	if err != nil {
		t.Fatalf("create membership: %v", err)
	}
	if created.Status != enums.MembershipStatusActive {
		t.Fatalf("expected active status, got %s", created.Status)
	}

	active, err := repo.GetActiveMembership(ctx, shop.ID, mechanic.ID)
	if err != nil {
		t.Fatalf("get active membership: %v", err)
	}
	if active == nil || active.ID != created.ID {
		t.Fatalf("expected membership %s, got %+v", created.ID, active)
	}

	has, err := repo.UserHasRole(ctx, shop.ID, mechanic.ID, enums.MemberRoleMechanic)
	if err != nil {
		t.Fatalf("user has role: %v", err)
	}
	if !has {
		t.Fatal("expected mechanic role to hold")
	}
	has, err = repo.UserHasRole(ctx, shop.ID, mechanic.ID, enums.MemberRoleOwner)
	if err != nil {
		t.Fatalf("user has role: %v", err)
	}
	if has {
		t.Fatal("mechanic must not pass an owner check")
	}

	count, err := repo.CountActive(ctx, shop.ID)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 active member, got %d", count)
	}

	team, err := repo.ListTeamMembers(ctx, shop.ID)
	if err != nil {
		t.Fatalf("list team members: %v", err)
	}
	if len(team) != 1 || team[0].Email != mechanic.Email {
		t.Fatalf("unexpected team %+v", team)
	}

	userShops, err := repo.ListUserShops(ctx, mechanic.ID)
	if err != nil {
		t.Fatalf("list user shops: %v", err)
	}
	if len(userShops) != 1 || userShops[0].ShopSlug != shop.Slug {
		t.Fatalf("unexpected shops %+v", userShops)
	}

	if err := repo.Remove(ctx, shop.ID, mechanic.ID, time.Now().UTC()); err != nil {
		t.Fatalf("remove membership: %v", err)
	}
	active, err = repo.GetActiveMembership(ctx, shop.ID, mechanic.ID)
	if err != nil {
		t.Fatalf("get active membership after removal: %v", err)
	}
	if active != nil {
		t.Fatalf("expected removal to end the membership, got %+v", active)
	}
}

func TestRepositoryRejectsInvalidRole(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	_, err := repo.CreateMembership(context.Background(), CreateMembershipDTO{
		ShopID: uuid.New(),
		UserID: uuid.New(),
		Role:   enums.MemberRole("janitor"),
	})
	if err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
}
