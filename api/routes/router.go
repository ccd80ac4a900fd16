package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/torquehub/torquehub-backend/api/controllers"
	"github.com/torquehub/torquehub-backend/api/middleware"
	"github.com/torquehub/torquehub-backend/pkg/config"
	"github.com/torquehub/torquehub-backend/pkg/enums"
	"github.com/torquehub/torquehub-backend/pkg/logger"
	"github.com/torquehub/torquehub-backend/pkg/redis"
)

// Pinger reports dependency reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams bundle everything the router wires together.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    Pinger
	RedisClient *redis.Client

	Users           middleware.UserResolver
	Shops           controllers.ShopService
	ShopLister      controllers.ShopLister
	AdminShops      controllers.AdminShopService
	AdminUsers      controllers.AdminUserLister
	AdminWaitlist   controllers.AdminWaitlistLister
	Invitations     controllers.InvitationService
	Mechanics       controllers.MechanicService
	Jobs            controllers.JobService
	Schedule        controllers.ScheduleService
	Waitlist        controllers.WaitlistService
	WebhookVerifier controllers.WebhookVerifier
	WebhookHandler  controllers.WebhookHandler
}

// NewRouter assembles the HTTP surface: public waitlist + webhooks and
// the invitation accept-page reads, the authenticated portal under
// /api/v1, and the admin panel under /api/admin/v1.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.BaseURL),
	)

	r.Get("/health", controllers.Health(cfg.App.Env, p.DBPinger, p.RedisClient, logg))

	r.Route("/api/public", func(r chi.Router) {
		r.With(middleware.RateLimitByIP(
			p.RedisClient,
			"waitlist",
			cfg.Waitlist.RateIPLimit,
			cfg.Waitlist.RateWindow,
			logg,
		)).Post("/waitlist", controllers.WaitlistSignup(p.Waitlist, logg))

		r.Get("/shops/slug/{slug}", controllers.GetShopBySlug(p.Shops, logg))
		r.Get("/invitations/token/{token}", controllers.GetInvitationByToken(p.Invitations, logg))
	})

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Post("/clerk", controllers.ClerkWebhook(p.WebhookVerifier, p.WebhookHandler, p.RedisClient, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Clerk, p.Users, logg))

		// Accepting an invitation must stay reachable for default-role
		// accounts: the reconcile it triggers is what grants the portal
		// role in the first place.
		r.Post("/invitations/accept", controllers.AcceptInvitation(p.Invitations, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, enums.PortalRoles...))

			r.Get("/me/shops", controllers.ListMyShops(p.ShopLister, logg))
			r.Post("/shops", controllers.CreateShop(p.Shops, logg))

			r.Route("/shops/{shopID}", func(r chi.Router) {
				r.Get("/", controllers.GetShop(p.Shops, logg))
				r.Patch("/", controllers.UpdateShop(p.Shops, logg))
				r.Get("/dashboard", controllers.Dashboard(p.Schedule, logg))

				r.Route("/invitations", func(r chi.Router) {
					r.Post("/", controllers.CreateInvitation(p.Invitations, logg))
					r.Get("/", controllers.ListInvitations(p.Invitations, logg))
				})
				r.Route("/team", func(r chi.Router) {
					r.Get("/", controllers.ListTeam(p.Invitations, logg))
					r.Delete("/{userID}", controllers.RemoveTeamMember(p.Invitations, logg))
				})
				r.Route("/mechanics", func(r chi.Router) {
					r.Post("/", controllers.CreateMechanic(p.Mechanics, logg))
					r.Get("/", controllers.ListMechanics(p.Mechanics, logg))
					r.Get("/{mechanicID}", controllers.GetMechanic(p.Mechanics, logg))
					r.Patch("/{mechanicID}", controllers.UpdateMechanic(p.Mechanics, logg))
					r.Delete("/{mechanicID}", controllers.DeactivateMechanic(p.Mechanics, logg))
					r.Post("/{mechanicID}/ratings", controllers.RateMechanic(p.Mechanics, logg))
				})
				r.Route("/jobs", func(r chi.Router) {
					r.Post("/", controllers.CreateJob(p.Jobs, logg))
					r.Get("/", controllers.ListJobs(p.Jobs, logg))
					r.Get("/{jobID}", controllers.GetJob(p.Jobs, logg))
					r.Patch("/{jobID}", controllers.UpdateJob(p.Jobs, logg))
					r.Post("/{jobID}/status", controllers.TransitionJob(p.Jobs, logg))
					r.Post("/{jobID}/assign", controllers.AssignJob(p.Jobs, logg))
				})
				r.Route("/appointments", func(r chi.Router) {
					r.Post("/", controllers.CreateAppointment(p.Schedule, logg))
					r.Get("/", controllers.ListAppointments(p.Schedule, logg))
					r.Patch("/{appointmentID}", controllers.UpdateAppointment(p.Schedule, logg))
				})
			})

			// Revocation is addressed by invitation id; the service
			// resolves the shop and checks membership there.
			r.Delete("/invitations/{invitationID}", controllers.RevokeInvitation(p.Invitations, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Clerk, p.Users, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

		r.Get("/shops", controllers.AdminListShops(p.AdminShops, logg))
		r.Patch("/shops/{shopID}/active", controllers.AdminSetShopActive(p.AdminShops, logg))
		r.Get("/users", controllers.AdminListUsers(p.AdminUsers, logg))
		r.Get("/waitlist", controllers.AdminListWaitlist(p.AdminWaitlist, logg))
	})

	return r
}
