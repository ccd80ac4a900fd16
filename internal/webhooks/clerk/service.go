package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/torquehub/torquehub-backend/internal/invitations"
	"github.com/torquehub/torquehub-backend/internal/users"
	clerkapi "github.com/torquehub/torquehub-backend/pkg/clerk"
	"github.com/torquehub/torquehub-backend/pkg/db/models"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	apperrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

type userRepo interface {
	Upsert(ctx context.Context, dto users.UpsertUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	MarkDeleted(ctx context.Context, clerkUserID string, at time.Time) error
}

type reconciler interface {
	Reconcile(ctx context.Context, dto invitations.ReconcileDTO) (invitations.ReconcileResult, error)
}

// Service translates verified identity provider events into local
// commands. Signature verification and replay suppression happen before
// an event reaches this layer.
type Service struct {
	users       userRepo
	invitations reconciler
	logg        *logger.Logger
	now         func() time.Time
}

func NewService(userRepo userRepo, reconciler reconciler, logg *logger.Logger) (*Service, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("invitation reconciler is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{users: userRepo, invitations: reconciler, logg: logg, now: time.Now}, nil
}

// Handle dispatches a verified event. Unknown event types are accepted
// and ignored so new provider events never cause redelivery storms.
func (s *Service) Handle(ctx context.Context, event *clerkapi.Event) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	switch event.Type {
	case clerkapi.EventUserCreated, clerkapi.EventUserUpdated:
		return s.handleUserUpserted(ctx, event)
	case clerkapi.EventUserDeleted:
		return s.handleUserDeleted(ctx, event)
	case clerkapi.EventInvitationAccepted:
		return s.handleInvitationAccepted(ctx, event)
	default:
		s.logg.Info(ctx, "ignoring unhandled webhook event type")
		return nil
	}
}

// handleUserUpserted mirrors the account locally, then tries to settle
// any invitation referenced by the account's metadata. Reconciliation is
// best effort here: the invitation.accepted event and the accept page
// are independent triggers for the same operation.
func (s *Service) handleUserUpserted(ctx context.Context, event *clerkapi.Event) error {
	var data clerkapi.UserEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "malformed user event payload")
	}
	email := data.PrimaryEmail()
	if data.ID == "" || email == "" {
		return apperrors.New(apperrors.CodeValidation, "user event is missing id or email")
	}

	var imageURL *string
	if data.ImageURL != "" {
		imageURL = &data.ImageURL
	}
	user, err := s.users.Upsert(ctx, users.UpsertUserDTO{
		ClerkUserID: data.ID,
		Email:       email,
		FirstName:   data.FirstName,
		LastName:    data.LastName,
		ImageURL:    imageURL,
		Role:        s.metadataRole(ctx, data),
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to mirror user")
	}

	token := data.MetadataString(clerkapi.MetadataKeyInvitationToken)
	if token == "" {
		return nil
	}
	s.reconcileBestEffort(ctx, invitations.ReconcileDTO{
		Token:  token,
		Email:  email,
		UserID: user.ID,
	})
	return nil
}

// metadataRole maps an invitation role carried in the account's public
// metadata onto the platform role for the local mirror. Invitations
// settled through Reconcile patch the role too; this covers accounts
// whose invitation is already expired or lost.
func (s *Service) metadataRole(ctx context.Context, data clerkapi.UserEventData) *enums.UserRole {
	raw := data.MetadataString(clerkapi.MetadataKeyRole)
	if raw == "" {
		return nil
	}
	memberRole, err := enums.ParseMemberRole(raw)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "role", raw), "ignoring unknown role in provider metadata")
		return nil
	}
	role := memberRole.UserRole()
	return &role
}

func (s *Service) handleUserDeleted(ctx context.Context, event *clerkapi.Event) error {
	var data clerkapi.UserEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "malformed user event payload")
	}
	if data.ID == "" {
		return apperrors.New(apperrors.CodeValidation, "user event is missing id")
	}
	if err := s.users.MarkDeleted(ctx, data.ID, s.now().UTC()); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to mark user deleted")
	}
	return nil
}

// handleInvitationAccepted settles the invitation by provider id. When
// the local account mirror does not exist yet the event is dropped: the
// user.created event carries the token and will reconcile instead.
func (s *Service) handleInvitationAccepted(ctx context.Context, event *clerkapi.Event) error {
	var data clerkapi.InvitationEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "malformed invitation event payload")
	}
	if data.EmailAddress == "" {
		return apperrors.New(apperrors.CodeValidation, "invitation event is missing email")
	}

	user, err := s.users.FindByEmail(ctx, data.EmailAddress)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Info(ctx, "no local account for accepted invitation yet; deferring to user.created")
			return nil
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to look up user")
	}

	s.reconcileBestEffort(ctx, invitations.ReconcileDTO{
		ClerkInvitationID: data.ID,
		Email:             data.EmailAddress,
		UserID:            user.ID,
	})
	return nil
}

// reconcileBestEffort runs reconciliation without failing the webhook.
// Settled or missing invitations are normal here because multiple
// triggers race for the same invitation; real faults are logged and the
// event is still acknowledged to stop the provider from redelivering a
// payload that will never succeed differently.
func (s *Service) reconcileBestEffort(ctx context.Context, dto invitations.ReconcileDTO) {
	result, err := s.invitations.Reconcile(ctx, dto)
	if err != nil {
		typed := apperrors.As(err)
		if typed != nil && (typed.Code() == apperrors.CodeNotFound || typed.Code() == apperrors.CodeStateConflict) {
			s.logg.Info(s.logg.WithField(ctx, "reason", typed.Message()), "invitation not reconcilable from webhook")
			return
		}
		s.logg.Error(ctx, "invitation reconciliation failed", err)
		return
	}
	if result.AlreadyAccepted {
		s.logg.Info(ctx, "invitation already settled by another trigger")
	}
}
