package routes

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/internal/invitations"
	"github.com/torquehub/torquehub-backend/internal/memberships"
	pkgauth "github.com/torquehub/torquehub-backend/pkg/auth"
	"github.com/torquehub/torquehub-backend/pkg/config"
	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

type routerTestEnv struct {
	key     *rsa.PrivateKey
	cfg     *config.Config
	users   *stubUserResolver
	invites *stubInvitationService
	handler http.Handler
}

func newRouterTestEnv(t *testing.T, role enums.UserRole) routerTestEnv {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	cfg := &config.Config{
		App:   config.AppConfig{Env: "test", BaseURL: "http://localhost:3000"},
		Clerk: config.ClerkConfig{JWTPublicKeyPEM: string(publicPEM)},
	}
	users := &stubUserResolver{user: &models.User{ID: uuid.New(), ClerkUserID: "user_router", Role: role}}
	invites := &stubInvitationService{}

	handler := NewRouter(RouterParams{
		Config:      cfg,
		Logger:      logger.New(logger.Options{ServiceName: "test"}),
		Users:       users,
		Invitations: invites,
	})
	return routerTestEnv{key: key, cfg: cfg, users: users, invites: invites, handler: handler}
}

func (e routerTestEnv) token(t *testing.T) string {
	t.Helper()
	claims := pkgauth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_router",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(e.key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func (e routerTestEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+e.token(t))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// An account still on the default role must be able to settle its
// invitation: acceptance is what grants the portal role.
func TestAcceptInvitationReachableWithDefaultRole(t *testing.T) {
	env := newRouterTestEnv(t, enums.UserRoleUser)

	rec := env.do(t, http.MethodPost, "/api/v1/invitations/accept", `{"token":"tok_router"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 accepting with default role, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.invites.reconciled.Token != "tok_router" {
		t.Fatalf("expected reconcile call with token, got %+v", env.invites.reconciled)
	}
}

func TestPortalRoutesStillGatedByRole(t *testing.T) {
	env := newRouterTestEnv(t, enums.UserRoleUser)

	rec := env.do(t, http.MethodGet, "/api/v1/me/shops", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for default role on portal route, got %d", rec.Code)
	}
}

func TestAcceptInvitationRequiresAuth(t *testing.T) {
	env := newRouterTestEnv(t, enums.UserRoleUser)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/accept", strings.NewReader(`{"token":"tok_router"}`))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
}

type stubUserResolver struct {
	user *models.User
}

func (s *stubUserResolver) FindByClerkID(ctx context.Context, clerkUserID string) (*models.User, error) {
	return s.user, nil
}

type stubInvitationService struct {
	reconciled invitations.ReconcileDTO
}

func (s *stubInvitationService) Invite(ctx context.Context, dto invitations.InviteDTO) (invitations.InvitationDTO, error) {
	return invitations.InvitationDTO{}, nil
}

func (s *stubInvitationService) Revoke(ctx context.Context, invitationID, actorID uuid.UUID) error {
	return nil
}

func (s *stubInvitationService) Reconcile(ctx context.Context, dto invitations.ReconcileDTO) (invitations.ReconcileResult, error) {
	s.reconciled = dto
	return invitations.ReconcileResult{}, nil
}

func (s *stubInvitationService) GetByToken(ctx context.Context, token string) (invitations.InvitationDTO, error) {
	return invitations.InvitationDTO{}, nil
}

func (s *stubInvitationService) ListByShop(ctx context.Context, shopID, actorID uuid.UUID) ([]invitations.InvitationDTO, error) {
	return nil, nil
}

func (s *stubInvitationService) ListTeam(ctx context.Context, shopID uuid.UUID) ([]memberships.TeamMemberDTO, error) {
	return nil, nil
}

func (s *stubInvitationService) RemoveMember(ctx context.Context, shopID, memberUserID, actorID uuid.UUID) error {
	return nil
}
