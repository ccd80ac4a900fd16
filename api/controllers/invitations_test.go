package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/api/middleware"
	"github.com/torquehub/torquehub-backend/internal/invitations"
	"github.com/torquehub/torquehub-backend/internal/memberships"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	"github.com/torquehub/torquehub-backend/pkg/types"
)

type stubInvitationService struct {
	invited    *invitations.InviteDTO
	invitation invitations.InvitationDTO
	inviteErr  error

	revokedID  uuid.UUID
	revokeErr  error
	reconciled *invitations.ReconcileDTO
	result     invitations.ReconcileResult
	byToken    string

	removedShop   uuid.UUID
	removedMember uuid.UUID
	removeErr     error
}

func (s *stubInvitationService) Invite(ctx context.Context, dto invitations.InviteDTO) (invitations.InvitationDTO, error) {
	s.invited = &dto
	return s.invitation, s.inviteErr
}

func (s *stubInvitationService) Revoke(ctx context.Context, invitationID, actorID uuid.UUID) error {
	s.revokedID = invitationID
	return s.revokeErr
}

func (s *stubInvitationService) Reconcile(ctx context.Context, dto invitations.ReconcileDTO) (invitations.ReconcileResult, error) {
	s.reconciled = &dto
	return s.result, nil
}

func (s *stubInvitationService) GetByToken(ctx context.Context, token string) (invitations.InvitationDTO, error) {
	s.byToken = token
	return s.invitation, nil
}

func (s *stubInvitationService) ListByShop(ctx context.Context, shopID, actorID uuid.UUID) ([]invitations.InvitationDTO, error) {
	return []invitations.InvitationDTO{s.invitation}, nil
}

func (s *stubInvitationService) ListTeam(ctx context.Context, shopID uuid.UUID) ([]memberships.TeamMemberDTO, error) {
	return nil, nil
}

func (s *stubInvitationService) RemoveMember(ctx context.Context, shopID, memberUserID, actorID uuid.UUID) error {
	s.removedShop = shopID
	s.removedMember = memberUserID
	return s.removeErr
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope
}

func TestCreateInvitationReturnsCreated(t *testing.T) {
	shopID := uuid.New()
	actor := uuid.New()
	svc := &stubInvitationService{
		invitation: invitations.InvitationDTO{
			ID:        uuid.New(),
			ShopID:    shopID,
			Email:     "tech@example.com",
			Role:      enums.MemberRoleMechanic,
			Status:    enums.InvitationStatusPending,
			ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
		},
	}

	router := chi.NewRouter()
	router.Post("/shops/{shopID}/invitations", CreateInvitation(svc, nil))

	body := []byte(`{"email":"tech@example.com","role":"mechanic","first_name":"Sam"}`)
	req := authedRequest(http.MethodPost, "/shops/"+shopID.String()+"/invitations", body, actor.String())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.invited == nil {
		t.Fatal("expected service call")
	}
	if svc.invited.ShopID != shopID {
		t.Fatalf("expected shop id from path, got %s", svc.invited.ShopID)
	}
	if svc.invited.InviterID != actor {
		t.Fatalf("expected inviter from auth context, got %s", svc.invited.InviterID)
	}

	var envelope struct {
		Data invitations.InvitationDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Email != "tech@example.com" {
		t.Fatalf("unexpected email %q", envelope.Data.Email)
	}
}

func TestCreateInvitationRequiresAuth(t *testing.T) {
	svc := &stubInvitationService{}
	router := chi.NewRouter()
	router.Post("/shops/{shopID}/invitations", CreateInvitation(svc, nil))

	body := []byte(`{"email":"tech@example.com","role":"mechanic"}`)
	req := authedRequest(http.MethodPost, "/shops/"+uuid.NewString()+"/invitations", body, "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if svc.invited != nil {
		t.Fatal("service must not be called without auth")
	}
}

func TestCreateInvitationValidatesBody(t *testing.T) {
	svc := &stubInvitationService{}
	router := chi.NewRouter()
	router.Post("/shops/{shopID}/invitations", CreateInvitation(svc, nil))

	body := []byte(`{"email":"not-an-email","role":"janitor"}`)
	req := authedRequest(http.MethodPost, "/shops/"+uuid.NewString()+"/invitations", body, uuid.NewString())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	envelope := decodeErrorEnvelope(t, rec)
	if envelope.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
	if svc.invited != nil {
		t.Fatal("service must not see invalid payloads")
	}
}

func TestCreateInvitationRejectsBadShopID(t *testing.T) {
	svc := &stubInvitationService{}
	router := chi.NewRouter()
	router.Post("/shops/{shopID}/invitations", CreateInvitation(svc, nil))

	req := authedRequest(http.MethodPost, "/shops/not-a-uuid/invitations", []byte(`{}`), uuid.NewString())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAcceptInvitationReconciles(t *testing.T) {
	actor := uuid.New()
	svc := &stubInvitationService{
		result: invitations.ReconcileResult{MembershipCreated: true, RolePatched: true},
	}
	router := chi.NewRouter()
	router.Post("/invitations/accept", AcceptInvitation(svc, nil))

	req := authedRequest(http.MethodPost, "/invitations/accept", []byte(`{"token":"tok_abc"}`), actor.String())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.reconciled == nil {
		t.Fatal("expected reconcile call")
	}
	if svc.reconciled.Token != "tok_abc" {
		t.Fatalf("unexpected token %q", svc.reconciled.Token)
	}
	if svc.reconciled.UserID != actor {
		t.Fatalf("expected actor id, got %s", svc.reconciled.UserID)
	}

	var envelope struct {
		Data invitations.ReconcileResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.MembershipCreated || !envelope.Data.RolePatched {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}

func TestAcceptInvitationRequiresToken(t *testing.T) {
	svc := &stubInvitationService{}
	router := chi.NewRouter()
	router.Post("/invitations/accept", AcceptInvitation(svc, nil))

	req := authedRequest(http.MethodPost, "/invitations/accept", []byte(`{}`), uuid.NewString())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.reconciled != nil {
		t.Fatal("reconcile must not run without a token")
	}
}

func TestRevokeInvitation(t *testing.T) {
	invitationID := uuid.New()
	svc := &stubInvitationService{}
	router := chi.NewRouter()
	router.Delete("/invitations/{invitationID}", RevokeInvitation(svc, nil))

	req := authedRequest(http.MethodDelete, "/invitations/"+invitationID.String(), nil, uuid.NewString())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.revokedID != invitationID {
		t.Fatalf("expected revoke of %s, got %s", invitationID, svc.revokedID)
	}
}

func TestGetInvitationByToken(t *testing.T) {
	svc := &stubInvitationService{
		invitation: invitations.InvitationDTO{Status: enums.InvitationStatusPending},
	}
	router := chi.NewRouter()
	router.Get("/invitations/token/{token}", GetInvitationByToken(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/invitations/token/tok_xyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.byToken != "tok_xyz" {
		t.Fatalf("unexpected token %q", svc.byToken)
	}
}

func TestRemoveTeamMemberRejectsSelf(t *testing.T) {
	actor := uuid.New()
	shopID := uuid.New()
	svc := &stubInvitationService{}
	router := chi.NewRouter()
	router.Delete("/shops/{shopID}/team/{userID}", RemoveTeamMember(svc, nil))

	req := authedRequest(http.MethodDelete, "/shops/"+shopID.String()+"/team/"+actor.String(), nil, actor.String())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if svc.removedMember != uuid.Nil {
		t.Fatal("service must not be called for self-removal")
	}
}

func TestRemoveTeamMember(t *testing.T) {
	actor := uuid.New()
	member := uuid.New()
	shopID := uuid.New()
	svc := &stubInvitationService{}
	router := chi.NewRouter()
	router.Delete("/shops/{shopID}/team/{userID}", RemoveTeamMember(svc, nil))

	req := authedRequest(http.MethodDelete, "/shops/"+shopID.String()+"/team/"+member.String(), nil, actor.String())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.removedShop != shopID || svc.removedMember != member {
		t.Fatalf("unexpected removal %s/%s", svc.removedShop, svc.removedMember)
	}
}
