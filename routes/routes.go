package routes

import (
	"github.com/dojoverse/dojo-system/handlers"
	"github.com/dojoverse/dojo-system/middleware"
	"github.com/dojoverse/dojo-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	authenticator *middleware.Authenticator,
	allowedOrigins []string,
	authHandler *handlers.AuthHandler,
	memberHandler *handlers.MemberHandler,
	classHandler *handlers.ClassHandler,
	paymentHandler *handlers.PaymentHandler,
	accessHandler *handlers.AccessHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	bracketHandler *handlers.BracketHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	// Сканер на двери аутентифицируется на уровне сети, не через JWT.
	router.Post("/access/scan", accessHandler.Scan)

	router.Get("/ws/dashboard", webSocketHandler.ServeDashboard)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeTournament)

	staff := []models.UserRole{models.RoleAdmin, models.RoleStaff}

	router.Route("/members", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.Authorize(staff...))

		r.Get("/", memberHandler.List)
		r.Post("/", memberHandler.Create)
		r.Get("/export", memberHandler.ExportCSV)
		r.Get("/{memberID}", memberHandler.GetByID)
		r.Patch("/{memberID}", memberHandler.Update)
		r.Post("/{memberID}/photo", memberHandler.UploadPhoto)
		r.Get("/{memberID}/payments", paymentHandler.ListByMember)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Delete("/{memberID}", memberHandler.Delete)
		})
	})

	router.Route("/classes", func(r chi.Router) {
		r.Get("/", classHandler.List)
		r.Get("/{classID}", classHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Use(middleware.Authorize(staff...))

			r.Post("/", classHandler.Create)
			r.Put("/{classID}", classHandler.Update)
			r.Delete("/{classID}", classHandler.Delete)
		})
	})

	router.Route("/payments", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.Authorize(staff...))

		r.Get("/", paymentHandler.List)
		r.Post("/", paymentHandler.Record)
	})

	router.Route("/access", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.Authorize(staff...))

		r.Get("/log", accessHandler.ListLog)
	})

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров и сеток
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/bracket", bracketHandler.Get)
		r.Get("/{tournamentID}/teams", teamHandler.ListByTournament)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Use(middleware.Authorize(staff...))

			r.Post("/", tournamentHandler.Create)
			r.Put("/{tournamentID}", tournamentHandler.Update)
			r.Post("/{tournamentID}/bracket", bracketHandler.Generate)
			r.Post("/{tournamentID}/teams", teamHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdmin))
				r.Delete("/{tournamentID}", tournamentHandler.Delete)
			})
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)
			r.Use(middleware.Authorize(staff...))

			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
			r.Delete("/{teamID}", teamHandler.Delete)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.Authorize(staff...))

		r.Post("/{matchID}/result", bracketHandler.RecordResult)
	})

	router.Route("/dashboard", func(r chi.Router) {
		r.Use(authenticator.Authenticate)
		r.Use(middleware.Authorize(staff...))

		r.Get("/stats", dashboardHandler.GetStats)
	})
}
