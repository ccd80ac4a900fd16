package clerk

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/internal/invitations"
	"github.com/torquehub/torquehub-backend/internal/users"
	clerkapi "github.com/torquehub/torquehub-backend/pkg/clerk"
	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	apperrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

func newTestService(t *testing.T, userRepo *stubUserRepo, rec *stubReconciler) *Service {
	t.Helper()
	svc, err := NewService(userRepo, rec, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func userEvent(t *testing.T, eventType string, data clerkapi.UserEventData) *clerkapi.Event {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal event data: %v", err)
	}
	return &clerkapi.Event{ID: "msg_" + uuid.NewString(), Type: eventType, Data: raw}
}

func TestHandleUserCreatedMirrorsAccount(t *testing.T) {
	userRepo := &stubUserRepo{}
	rec := &stubReconciler{}
	svc := newTestService(t, userRepo, rec)

	event := userEvent(t, clerkapi.EventUserCreated, clerkapi.UserEventData{
		ID:                    "user_1",
		FirstName:             "Dana",
		LastName:              "Reyes",
		PrimaryEmailAddressID: "em_1",
		EmailAddresses:        []clerkapi.EmailAddress{{ID: "em_1", EmailAddress: "dana@example.com"}},
	})
	if err := svc.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if userRepo.upserted.ClerkUserID != "user_1" || userRepo.upserted.Email != "dana@example.com" {
		t.Fatalf("unexpected upsert payload: %+v", userRepo.upserted)
	}
	if rec.calls != 0 {
		t.Fatal("expected no reconciliation without an invitation token")
	}
}

func TestHandleUserCreatedWithTokenReconciles(t *testing.T) {
	localID := uuid.New()
	userRepo := &stubUserRepo{user: &models.User{ID: localID}}
	rec := &stubReconciler{}
	svc := newTestService(t, userRepo, rec)

	event := userEvent(t, clerkapi.EventUserCreated, clerkapi.UserEventData{
		ID:                    "user_2",
		PrimaryEmailAddressID: "em_1",
		EmailAddresses:        []clerkapi.EmailAddress{{ID: "em_1", EmailAddress: "tech@example.com"}},
		PublicMetadata:        map[string]any{clerkapi.MetadataKeyInvitationToken: "tok_xyz"},
	})
	if err := svc.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("expected one reconciliation, got %d", rec.calls)
	}
	if rec.lastDTO.Token != "tok_xyz" || rec.lastDTO.UserID != localID {
		t.Fatalf("unexpected reconcile dto: %+v", rec.lastDTO)
	}
}

func TestHandleUserCreatedAppliesMetadataRole(t *testing.T) {
	userRepo := &stubUserRepo{}
	svc := newTestService(t, userRepo, &stubReconciler{})

	event := userEvent(t, clerkapi.EventUserCreated, clerkapi.UserEventData{
		ID:                    "user_8",
		PrimaryEmailAddressID: "em_1",
		EmailAddresses:        []clerkapi.EmailAddress{{ID: "em_1", EmailAddress: "tech@example.com"}},
		PublicMetadata:        map[string]any{clerkapi.MetadataKeyRole: "mechanic"},
	})
	if err := svc.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if userRepo.upserted.Role == nil || *userRepo.upserted.Role != enums.UserRoleShopMechanic {
		t.Fatalf("expected metadata role mapped to shop_mechanic, got %v", userRepo.upserted.Role)
	}
}

func TestHandleUserCreatedIgnoresUnknownMetadataRole(t *testing.T) {
	userRepo := &stubUserRepo{}
	svc := newTestService(t, userRepo, &stubReconciler{})

	event := userEvent(t, clerkapi.EventUserCreated, clerkapi.UserEventData{
		ID:                    "user_9",
		PrimaryEmailAddressID: "em_1",
		EmailAddresses:        []clerkapi.EmailAddress{{ID: "em_1", EmailAddress: "tech@example.com"}},
		PublicMetadata:        map[string]any{clerkapi.MetadataKeyRole: "janitor"},
	})
	if err := svc.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if userRepo.upserted.Role != nil {
		t.Fatalf("expected unknown role dropped, got %v", userRepo.upserted.Role)
	}
}

func TestHandleAcksExpectedReconcileConflicts(t *testing.T) {
	userRepo := &stubUserRepo{user: &models.User{ID: uuid.New()}}
	rec := &stubReconciler{err: apperrors.New(apperrors.CodeStateConflict, "invitation has been revoked")}
	svc := newTestService(t, userRepo, rec)

	event := userEvent(t, clerkapi.EventUserCreated, clerkapi.UserEventData{
		ID:                    "user_3",
		PrimaryEmailAddressID: "em_1",
		EmailAddresses:        []clerkapi.EmailAddress{{ID: "em_1", EmailAddress: "tech@example.com"}},
		PublicMetadata:        map[string]any{clerkapi.MetadataKeyInvitationToken: "tok_dead"},
	})
	if err := svc.Handle(context.Background(), event); err != nil {
		t.Fatalf("expected revoked invitation to be acknowledged, got %v", err)
	}
}

func TestHandleUserEventMissingEmailFails(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{}, &stubReconciler{})

	event := userEvent(t, clerkapi.EventUserCreated, clerkapi.UserEventData{ID: "user_4"})
	err := svc.Handle(context.Background(), event)
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleUserDeletedMarksAccount(t *testing.T) {
	userRepo := &stubUserRepo{}
	svc := newTestService(t, userRepo, &stubReconciler{})

	event := userEvent(t, clerkapi.EventUserDeleted, clerkapi.UserEventData{ID: "user_5", Deleted: true})
	if err := svc.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if userRepo.deletedClerkID != "user_5" {
		t.Fatalf("expected user_5 marked deleted, got %q", userRepo.deletedClerkID)
	}
}

func TestHandleInvitationAcceptedReconcilesByProviderID(t *testing.T) {
	localID := uuid.New()
	userRepo := &stubUserRepo{user: &models.User{ID: localID}}
	rec := &stubReconciler{}
	svc := newTestService(t, userRepo, rec)

	raw, _ := json.Marshal(clerkapi.InvitationEventData{ID: "inv_9", EmailAddress: "tech@example.com", Status: "accepted"})
	event := &clerkapi.Event{ID: "msg_1", Type: clerkapi.EventInvitationAccepted, Data: raw}
	if err := svc.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if rec.lastDTO.ClerkInvitationID != "inv_9" || rec.lastDTO.UserID != localID {
		t.Fatalf("unexpected reconcile dto: %+v", rec.lastDTO)
	}
}

func TestHandleInvitationAcceptedDefersWhenUserUnknown(t *testing.T) {
	userRepo := &stubUserRepo{findErr: gorm.ErrRecordNotFound}
	rec := &stubReconciler{}
	svc := newTestService(t, userRepo, rec)

	raw, _ := json.Marshal(clerkapi.InvitationEventData{ID: "inv_10", EmailAddress: "new@example.com"})
	event := &clerkapi.Event{ID: "msg_2", Type: clerkapi.EventInvitationAccepted, Data: raw}
	if err := svc.Handle(context.Background(), event); err != nil {
		t.Fatalf("expected deferral, got %v", err)
	}
	if rec.calls != 0 {
		t.Fatal("expected no reconciliation before the local mirror exists")
	}
}

func TestHandleIgnoresUnknownEventTypes(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{}, &stubReconciler{})

	event := &clerkapi.Event{ID: "msg_3", Type: "organization.created", Data: json.RawMessage(`{}`)}
	if err := svc.Handle(context.Background(), event); err != nil {
		t.Fatalf("expected unknown types to be ignored, got %v", err)
	}
}

type stubUserRepo struct {
	user    *models.User
	findErr error

	upserted       users.UpsertUserDTO
	deletedClerkID string
}

func (s *stubUserRepo) Upsert(ctx context.Context, dto users.UpsertUserDTO) (*models.User, error) {
	s.upserted = dto
	if s.user != nil {
		return s.user, nil
	}
	return &models.User{ID: uuid.New(), ClerkUserID: dto.ClerkUserID, Email: dto.Email}, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) MarkDeleted(ctx context.Context, clerkUserID string, at time.Time) error {
	s.deletedClerkID = clerkUserID
	return nil
}

type stubReconciler struct {
	err    error
	result invitations.ReconcileResult

	calls   int
	lastDTO invitations.ReconcileDTO
}

func (s *stubReconciler) Reconcile(ctx context.Context, dto invitations.ReconcileDTO) (invitations.ReconcileResult, error) {
	s.calls++
	s.lastDTO = dto
	if s.err != nil {
		return invitations.ReconcileResult{}, s.err
	}
	return s.result, nil
}
