package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bojanm/teamster-api/internal/config"
	"github.com/bojanm/teamster-api/internal/database"
	"github.com/bojanm/teamster-api/internal/handlers"
	"github.com/bojanm/teamster-api/internal/identity"
	authmw "github.com/bojanm/teamster-api/internal/middleware"
	"github.com/bojanm/teamster-api/internal/models"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret)
	userService := services.NewUserService(db)
	teamService := services.NewTeamService(db)
	emailService := services.NewEmailService(cfg.SMTP)
	invitationService := services.NewInvitationService(
		db, services.SystemClock(), services.NewTokenGenerator(),
		emailService, cfg.FrontendURL, cfg.InviteValidity,
	)
	identityClient := identity.NewClient(cfg.Keycloak)

	authHandler := handlers.NewAuthHandler(identityClient, userService, invitationService)
	userHandler := handlers.NewUserHandler(userService, identityClient)
	teamHandler := handlers.NewTeamHandler(teamService, invitationService)
	invitationHandler := handlers.NewInvitationHandler(invitationService, teamService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Public invitation lookups driven by the registration page.
	api.Get("/invitations/validate", invitationHandler.Validate)
	api.Get("/invitations/details", invitationHandler.Details)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService, userService))

	protected.Get("/me", userHandler.Me)
	protected.Post("/invitations/accept", invitationHandler.Accept)

	protected.Get("/teams", teamHandler.List)
	protected.Post("/teams", teamHandler.Create)
	protected.Get("/teams/:teamId", teamHandler.Get)
	protected.Post("/teams/:teamId/invitations", teamHandler.Invite)
	protected.Post("/teams/:teamId/members", teamHandler.AddMembers)
	protected.Delete("/teams/:teamId/members/:userId", teamHandler.RemoveMember)
	protected.Post("/teams/process-invitations", teamHandler.ProcessInvitations)

	admin := api.Group("")
	admin.Use(authmw.Auth(jwtService, userService))
	admin.Use(authmw.RequireRole(models.RoleAdmin))
	admin.Get("/users", userHandler.List)
	admin.Get("/users/:userId", userHandler.Get)
	admin.Patch("/users/:userId", userHandler.Update)
	admin.Delete("/users/:userId", userHandler.Delete)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
