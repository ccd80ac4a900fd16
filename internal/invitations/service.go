package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/internal/mechanics"
	"github.com/torquehub/torquehub-backend/internal/memberships"
	"github.com/torquehub/torquehub-backend/pkg/clerk"
	"github.com/torquehub/torquehub-backend/pkg/config"
	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	apperrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

type invitationRepo interface {
	Create(ctx context.Context, dto CreateInvitationDTO) (*models.ShopInvitation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShopInvitation, error)
	FindByToken(ctx context.Context, token string) (*models.ShopInvitation, error)
	FindByClerkInvitationID(ctx context.Context, clerkInvitationID string) (*models.ShopInvitation, error)
	FindPendingByShopAndEmail(ctx context.Context, shopID uuid.UUID, email string) (*models.ShopInvitation, error)
	FindLatestPendingByEmail(ctx context.Context, email string) (*models.ShopInvitation, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.ShopInvitation, error)
	MarkAccepted(ctx context.Context, id, userID uuid.UUID, at time.Time) error
	MarkRevoked(ctx context.Context, id uuid.UUID) error
}

type membershipRepo interface {
	GetActiveMembership(ctx context.Context, shopID, userID uuid.UUID) (*models.ShopMembership, error)
	CreateMembership(ctx context.Context, dto memberships.CreateMembershipDTO) (*models.ShopMembership, error)
	UserHasRole(ctx context.Context, shopID, userID uuid.UUID, roles ...enums.MemberRole) (bool, error)
	ListTeamMembers(ctx context.Context, shopID uuid.UUID) ([]memberships.TeamMemberDTO, error)
	Remove(ctx context.Context, shopID, userID uuid.UUID, at time.Time) error
}

type userRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error
}

type mechanicRepo interface {
	Create(ctx context.Context, dto mechanics.CreateMechanicDTO) (*models.Mechanic, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Mechanic, error)
}

type identityProvider interface {
	CreateInvitation(ctx context.Context, params clerk.CreateInvitationParams) (*clerk.Invitation, error)
	RevokeInvitation(ctx context.Context, invitationID string) error
	FindUserByEmail(ctx context.Context, email string) (*clerk.User, error)
	UpdateUserMetadata(ctx context.Context, userID string, params clerk.UpdateUserMetadataParams) (*clerk.User, error)
}

// Service owns the team invitation lifecycle: issuing invitations through
// the identity provider, revoking them, and reconciling acceptance.
// Reconcile is the single acceptance path; every trigger that learns
// "this user accepted this invitation" funnels through it.
type Service struct {
	repo        invitationRepo
	memberships membershipRepo
	users       userRepo
	mechanics   mechanicRepo
	provider    identityProvider
	cfg         config.InvitationsConfig
	acceptURL   string
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the invitation service.
func NewService(
	repo invitationRepo,
	membershipRepo membershipRepo,
	users userRepo,
	mechanicRepo mechanicRepo,
	provider identityProvider,
	cfg config.InvitationsConfig,
	appBaseURL string,
	logg *logger.Logger,
) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invitation repository is required")
	}
	if membershipRepo == nil {
		return nil, fmt.Errorf("membership repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if mechanicRepo == nil {
		return nil, fmt.Errorf("mechanic repository is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("identity provider client is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{
		repo:        repo,
		memberships: membershipRepo,
		users:       users,
		mechanics:   mechanicRepo,
		provider:    provider,
		cfg:         cfg,
		acceptURL:   cfg.AcceptURL(appBaseURL),
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Invite issues an invitation for a teammate. Owners can invite any
// role; managers can only invite mechanics. When the invited address
// already has an account the provider refuses to invite it, so the
// invitation metadata is patched onto the existing account instead and
// the local record still tracks the pending invite.
func (s *Service) Invite(ctx context.Context, dto InviteDTO) (InvitationDTO, error) {
	role, err := enums.ParseMemberRole(dto.Role)
	if err != nil {
		return InvitationDTO{}, apperrors.New(apperrors.CodeValidation, "unknown team role").WithDetails(map[string]any{"role": dto.Role})
	}
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	if err := s.requireInvitePermission(ctx, dto.ShopID, dto.InviterID, role); err != nil {
		return InvitationDTO{}, err
	}

	if existing, err := s.repo.FindPendingByShopAndEmail(ctx, dto.ShopID, email); err != nil {
		return InvitationDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to check pending invitations")
	} else if existing != nil {
		return InvitationDTO{}, apperrors.New(apperrors.CodeConflict, "a pending invitation already exists for this email")
	}

	if err := s.rejectExistingMember(ctx, dto.ShopID, email); err != nil {
		return InvitationDTO{}, err
	}

	mechanicID, err := s.resolveMechanic(ctx, dto, role)
	if err != nil {
		return InvitationDTO{}, err
	}

	token, err := NewToken(s.cfg.TokenBytes)
	if err != nil {
		return InvitationDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to generate invitation token")
	}

	metadata := map[string]any{
		clerk.MetadataKeyRole:            role.String(),
		clerk.MetadataKeyShopID:          dto.ShopID.String(),
		clerk.MetadataKeyInvitationToken: token,
	}
	if mechanicID != nil {
		metadata[clerk.MetadataKeyMechanicID] = mechanicID.String()
	}

	var clerkInvitationID *string
	providerInv, err := s.provider.CreateInvitation(ctx, clerk.CreateInvitationParams{
		EmailAddress:   email,
		RedirectURL:    s.acceptURL,
		PublicMetadata: metadata,
	})
	switch {
	case err == nil:
		clerkInvitationID = &providerInv.ID
	case errors.Is(err, clerk.ErrEmailTaken):
		// The person already has an account. Patch the invitation
		// metadata onto it so the next sign-in can reconcile, and keep
		// the local record as the source of truth.
		if patchErr := s.patchExistingAccount(ctx, email, metadata); patchErr != nil {
			return InvitationDTO{}, patchErr
		}
	case errors.Is(err, clerk.ErrInvitationExists):
		s.logg.Warn(s.logg.WithField(ctx, "email", email), "provider already has an invitation for this email; tracking locally")
	default:
		msg := "identity provider rejected the invitation"
		var apiErr *clerk.APIError
		if errors.As(err, &apiErr) {
			msg = fmt.Sprintf("%s: %s", msg, apiErr.Error())
		}
		return InvitationDTO{}, apperrors.Wrap(apperrors.CodeDependency, err, msg)
	}

	inv, err := s.repo.Create(ctx, CreateInvitationDTO{
		ShopID:            dto.ShopID,
		InviterID:         dto.InviterID,
		Email:             email,
		Role:              role,
		Token:             token,
		MechanicID:        mechanicID,
		ClerkInvitationID: clerkInvitationID,
		ExpiresAt:         s.now().UTC().Add(s.cfg.TTL),
	})
	if err != nil {
		return InvitationDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to persist invitation")
	}
	return FromModel(inv, s.now().UTC()), nil
}

// Revoke cancels a pending invitation. Only owners and managers of the
// invitation's shop may revoke it. The provider-side revoke is best
// effort: the local record is authoritative and a revoked row blocks
// acceptance regardless of provider state.
func (s *Service) Revoke(ctx context.Context, invitationID, actorID uuid.UUID) error {
	inv, err := s.repo.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "invitation not found")
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to load invitation")
	}

	allowed, err := s.memberships.UserHasRole(ctx, inv.ShopID, actorID, enums.MemberRoleOwner, enums.MemberRoleManager)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to check membership")
	}
	if !allowed {
		return apperrors.New(apperrors.CodeForbidden, "only shop owners and managers can revoke invitations")
	}

	if inv.Status != enums.InvitationStatusPending {
		return apperrors.New(apperrors.CodeStateConflict, "only pending invitations can be revoked").
			WithDetails(map[string]any{"status": inv.Status.String()})
	}

	if err := s.repo.MarkRevoked(ctx, inv.ID); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to revoke invitation")
	}

	if inv.ClerkInvitationID != nil {
		if err := s.provider.RevokeInvitation(ctx, *inv.ClerkInvitationID); err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"invitation_id":       inv.ID.String(),
				"clerk_invitation_id": *inv.ClerkInvitationID,
			})
			s.logg.Warn(logCtx, "provider-side revoke failed; local record already revoked")
		}
	}
	return nil
}

// Reconcile is the single, idempotent invitation acceptance operation.
// Every trigger funnels here: the accept page posting a token, the
// user.created webhook carrying token metadata, and the
// invitation.accepted webhook carrying the provider id. Running it twice
// for the same invitation and user is a no-op success.
func (s *Service) Reconcile(ctx context.Context, dto ReconcileDTO) (ReconcileResult, error) {
	inv, err := s.locate(ctx, dto)
	if err != nil {
		return ReconcileResult{}, err
	}
	now := s.now().UTC()

	// Guards run in fixed order so concurrent triggers resolve the same
	// way regardless of which one arrives first.
	switch {
	case inv.Status == enums.InvitationStatusRevoked:
		return ReconcileResult{}, apperrors.New(apperrors.CodeStateConflict, "invitation has been revoked")
	case inv.Status == enums.InvitationStatusAccepted:
		return ReconcileResult{Invitation: FromModel(inv, now), AlreadyAccepted: true}, nil
	case inv.Status == enums.InvitationStatusExpired || inv.Expired(now):
		return ReconcileResult{}, apperrors.New(apperrors.CodeStateConflict, "invitation has expired")
	}

	result := ReconcileResult{}

	existing, err := s.memberships.GetActiveMembership(ctx, inv.ShopID, dto.UserID)
	if err != nil {
		return ReconcileResult{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to check membership")
	}
	if existing == nil {
		invitedAt := inv.CreatedAt
		if _, err := s.memberships.CreateMembership(ctx, memberships.CreateMembershipDTO{
			ShopID:          inv.ShopID,
			UserID:          dto.UserID,
			Role:            inv.Role,
			MechanicID:      inv.MechanicID,
			InvitedByUserID: &inv.InviterID,
			InvitedAt:       &invitedAt,
			AcceptedAt:      &now,
		}); err != nil {
			return ReconcileResult{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to create membership")
		}
		result.MembershipCreated = true
	}

	patched, err := s.patchUserRole(ctx, dto.UserID, inv.Role)
	if err != nil {
		return ReconcileResult{}, err
	}
	result.RolePatched = patched

	if err := s.repo.MarkAccepted(ctx, inv.ID, dto.UserID, now); err != nil {
		return ReconcileResult{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to finalize invitation")
	}

	inv.Status = enums.InvitationStatusAccepted
	inv.AcceptedByUserID = &dto.UserID
	inv.AcceptedAt = &now
	result.Invitation = FromModel(inv, now)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"invitation_id":      inv.ID.String(),
		"shop_id":            inv.ShopID.String(),
		"user_id":            dto.UserID.String(),
		"membership_created": result.MembershipCreated,
		"role_patched":       result.RolePatched,
	})
	s.logg.Info(logCtx, "invitation reconciled")
	return result, nil
}

// GetByToken loads an invitation for the public accept page. Terminal
// states are returned as data, not errors, so the page can explain them.
func (s *Service) GetByToken(ctx context.Context, token string) (InvitationDTO, error) {
	inv, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvitationDTO{}, apperrors.New(apperrors.CodeNotFound, "invitation not found")
		}
		return InvitationDTO{}, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load invitation")
	}
	return FromModel(inv, s.now().UTC()), nil
}

// ListByShop returns a shop's invitations for owners and managers.
func (s *Service) ListByShop(ctx context.Context, shopID, actorID uuid.UUID) ([]InvitationDTO, error) {
	allowed, err := s.memberships.UserHasRole(ctx, shopID, actorID, enums.MemberRoleOwner, enums.MemberRoleManager)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to check membership")
	}
	if !allowed {
		return nil, apperrors.New(apperrors.CodeForbidden, "only shop owners and managers can list invitations")
	}

	invs, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list invitations")
	}
	now := s.now().UTC()
	out := make([]InvitationDTO, 0, len(invs))
	for i := range invs {
		out = append(out, FromModel(&invs[i], now))
	}
	return out, nil
}

// ListTeam returns the shop's active members with their profiles.
func (s *Service) ListTeam(ctx context.Context, shopID uuid.UUID) ([]memberships.TeamMemberDTO, error) {
	members, err := s.memberships.ListTeamMembers(ctx, shopID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list team members")
	}
	return members, nil
}

// RemoveMember takes a teammate off the shop. Owners cannot be removed
// through this path; ownership transfer is a separate concern.
func (s *Service) RemoveMember(ctx context.Context, shopID, memberUserID, actorID uuid.UUID) error {
	allowed, err := s.memberships.UserHasRole(ctx, shopID, actorID, enums.MemberRoleOwner, enums.MemberRoleManager)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to check membership")
	}
	if !allowed {
		return apperrors.New(apperrors.CodeForbidden, "only shop owners and managers can remove members")
	}

	target, err := s.memberships.GetActiveMembership(ctx, shopID, memberUserID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to load membership")
	}
	if target == nil {
		return apperrors.New(apperrors.CodeNotFound, "membership not found")
	}
	if target.Role == enums.MemberRoleOwner {
		return apperrors.New(apperrors.CodeStateConflict, "shop owners cannot be removed")
	}

	if err := s.memberships.Remove(ctx, shopID, memberUserID, s.now().UTC()); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to remove member")
	}
	return nil
}

func (s *Service) locate(ctx context.Context, dto ReconcileDTO) (*models.ShopInvitation, error) {
	if dto.Token != "" {
		inv, err := s.repo.FindByToken(ctx, dto.Token)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load invitation")
		}
	}
	if dto.ClerkInvitationID != "" {
		inv, err := s.repo.FindByClerkInvitationID(ctx, dto.ClerkInvitationID)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load invitation")
		}
	}
	if dto.Email != "" {
		inv, err := s.repo.FindLatestPendingByEmail(ctx, dto.Email)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load invitation")
		}
		if inv != nil {
			return inv, nil
		}
	}
	return nil, apperrors.New(apperrors.CodeNotFound, "invitation not found")
}

func (s *Service) requireInvitePermission(ctx context.Context, shopID, inviterID uuid.UUID, role enums.MemberRole) error {
	if role == enums.MemberRoleMechanic {
		allowed, err := s.memberships.UserHasRole(ctx, shopID, inviterID, enums.MemberRoleOwner, enums.MemberRoleManager)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "failed to check membership")
		}
		if !allowed {
			return apperrors.New(apperrors.CodeForbidden, "only shop owners and managers can invite mechanics")
		}
		return nil
	}
	allowed, err := s.memberships.UserHasRole(ctx, shopID, inviterID, enums.MemberRoleOwner)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to check membership")
	}
	if !allowed {
		return apperrors.New(apperrors.CodeForbidden, "only shop owners can invite owners and managers")
	}
	return nil
}

func (s *Service) rejectExistingMember(ctx context.Context, shopID uuid.UUID, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to look up user")
	}
	membership, err := s.memberships.GetActiveMembership(ctx, shopID, user.ID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to check membership")
	}
	if membership != nil {
		return apperrors.New(apperrors.CodeConflict, "this person is already a member of the shop")
	}
	return nil
}

func (s *Service) resolveMechanic(ctx context.Context, dto InviteDTO, role enums.MemberRole) (*uuid.UUID, error) {
	if role != enums.MemberRoleMechanic {
		return nil, nil
	}
	if dto.MechanicID != nil {
		mechanic, err := s.mechanics.FindByID(ctx, *dto.MechanicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.CodeNotFound, "mechanic profile not found")
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load mechanic")
		}
		if mechanic.ShopID != dto.ShopID {
			return nil, apperrors.New(apperrors.CodeNotFound, "mechanic profile not found")
		}
		return &mechanic.ID, nil
	}

	firstName := strings.TrimSpace(dto.FirstName)
	if firstName == "" {
		// Roster placeholder until the person completes signup.
		firstName = strings.Split(dto.Email, "@")[0]
	}
	mechanic, err := s.mechanics.Create(ctx, mechanics.CreateMechanicDTO{
		ShopID:    dto.ShopID,
		FirstName: firstName,
		LastName:  strings.TrimSpace(dto.LastName),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to create mechanic profile")
	}
	return &mechanic.ID, nil
}

func (s *Service) patchExistingAccount(ctx context.Context, email string, metadata map[string]any) error {
	account, err := s.provider.FindUserByEmail(ctx, email)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "failed to look up existing account")
	}
	if account == nil {
		// The provider refused the invite because the address is taken
		// but no longer returns a matching account.
		return apperrors.New(apperrors.CodeDependency, "identity provider reports this email is taken but has no matching account")
	}
	merged := make(map[string]any, len(account.PublicMetadata)+len(metadata))
	for k, v := range account.PublicMetadata {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}
	if _, err := s.provider.UpdateUserMetadata(ctx, account.ID, clerk.UpdateUserMetadataParams{PublicMetadata: merged}); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "failed to attach invitation to existing account")
	}
	return nil
}

func (s *Service) patchUserRole(ctx context.Context, userID uuid.UUID, role enums.MemberRole) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load user")
	}
	target := role.UserRole()
	if user.Role == enums.UserRoleAdmin || user.Role == target {
		return false, nil
	}
	if err := s.users.UpdateRole(ctx, userID, target); err != nil {
		return false, apperrors.Wrap(apperrors.CodeInternal, err, "failed to update user role")
	}
	return true, nil
}
