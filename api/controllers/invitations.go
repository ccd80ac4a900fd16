package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/torquehub/torquehub-backend/api/middleware"
	"github.com/torquehub/torquehub-backend/api/responses"
	"github.com/torquehub/torquehub-backend/api/validators"
	"github.com/torquehub/torquehub-backend/internal/invitations"
	"github.com/torquehub/torquehub-backend/internal/memberships"
	pkgerrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/logger"
)

// InvitationService is the invitation surface the controllers depend on.
type InvitationService interface {
	Invite(ctx context.Context, dto invitations.InviteDTO) (invitations.InvitationDTO, error)
	Revoke(ctx context.Context, invitationID, actorID uuid.UUID) error
	Reconcile(ctx context.Context, dto invitations.ReconcileDTO) (invitations.ReconcileResult, error)
	GetByToken(ctx context.Context, token string) (invitations.InvitationDTO, error)
	ListByShop(ctx context.Context, shopID, actorID uuid.UUID) ([]invitations.InvitationDTO, error)
	ListTeam(ctx context.Context, shopID uuid.UUID) ([]memberships.TeamMemberDTO, error)
	RemoveMember(ctx context.Context, shopID, memberUserID, actorID uuid.UUID) error
}

// CreateInvitation invites a teammate to the shop.
func CreateInvitation(svc InvitationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto invitations.InviteDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto.ShopID = shopID
		dto.InviterID = actor

		inv, err := svc.Invite(r.Context(), dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, inv)
	}
}

// ListInvitations returns a shop's invitations.
func ListInvitations(svc InvitationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invs, err := svc.ListByShop(r.Context(), shopID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invs)
	}
}

// RevokeInvitation cancels a pending invitation.
func RevokeInvitation(svc InvitationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invitationID, err := uuidParam(r, "invitationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Revoke(r.Context(), invitationID, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}

// GetInvitationByToken shows the accept page what it is accepting.
func GetInvitationByToken(svc InvitationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chiURLParam(r, "token")
		if token == "" {
			responses.WriteError(r.Context(), logg, w, errMissingParam("token"))
			return
		}
		inv, err := svc.GetByToken(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inv)
	}
}

type acceptInvitationBody struct {
	Token string `json:"token" validate:"required"`
}

// AcceptInvitation settles an invitation for the signed-in caller. This
// is the accept-page trigger; webhooks funnel into the same operation.
func AcceptInvitation(svc InvitationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body acceptInvitationBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reconcile(r.Context(), invitations.ReconcileDTO{
			Token:  body.Token,
			UserID: actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListTeam returns a shop's active members.
func ListTeam(svc InvitationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		members, err := svc.ListTeam(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}

// RemoveTeamMember takes a member off the shop.
func RemoveTeamMember(svc InvitationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := uuidParam(r, "shopID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := uuidParam(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorID(r, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if actor == memberID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "you cannot remove yourself from the shop"))
			return
		}
		if err := svc.RemoveMember(r.Context(), shopID, memberID, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
