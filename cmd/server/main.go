package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tablefolk/api/internal/config"
	"github.com/tablefolk/api/internal/database"
	"github.com/tablefolk/api/internal/handler"
	"github.com/tablefolk/api/internal/jobs"
	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/repository"
	"github.com/tablefolk/api/internal/service"
	"github.com/tablefolk/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	shopRepo := repository.NewShopRepository(db)
	spaceRenterRepo := repository.NewSpaceRenterRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)

	// Initialize update hub for SSE live updates
	updateHub := service.NewUpdateHub()
	defer updateHub.Close()

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwtService,
		TokenRepo:  tokenRepo,
	})

	authService := service.NewAuthService(service.AuthServiceConfig{
		AccountRepo:  accountRepo,
		TokenService: tokenService,
	})

	oauthService := service.NewOAuthService(service.OAuthServiceConfig{
		Google: service.GoogleConfig{
			ClientID:     cfg.OAuth.Google.ClientID,
			ClientSecret: cfg.OAuth.Google.ClientSecret,
		},
		AccountRepo:  accountRepo,
		TokenService: tokenService,
	})

	pushService := service.NewPushService(service.PushServiceConfig{
		DeviceRepo:      deviceTokenRepo,
		Enabled:         cfg.Push.Enabled,
		CredentialsPath: cfg.Push.CredentialsPath,
	})

	notificationService := service.NewNotificationService(service.NotificationServiceConfig{
		Repo: notificationRepo,
		Hub:  updateHub,
		Push: pushService,
	})

	accountService := service.NewAccountService(service.AccountServiceConfig{
		AccountRepo: accountRepo,
	})

	relationshipService := service.NewRelationshipService(service.RelationshipServiceConfig{
		RelationshipRepo: relationshipRepo,
		AccountRepo:      accountRepo,
		Notifier:         notificationService,
	})

	discussionService := service.NewDiscussionService(service.DiscussionServiceConfig{
		Repo:         discussionRepo,
		AccountRepo:  accountRepo,
		Relationship: relationshipService,
		Notifier:     notificationService,
		Hub:          updateHub,
	})

	sessionService := service.NewSessionService(service.SessionServiceConfig{
		Repo:         sessionRepo,
		Discussion:   discussionService,
		Relationship: relationshipService,
		Notifier:     notificationService,
		Hub:          updateHub,
	})

	shopService := service.NewShopService(service.ShopServiceConfig{
		Repo:        shopRepo,
		AccountRepo: accountRepo,
	})

	spaceRenterService := service.NewSpaceRenterService(service.SpaceRenterServiceConfig{
		Repo:        spaceRenterRepo,
		AccountRepo: accountRepo,
	})

	geocodeService, err := service.NewGeocodeService(service.GeocodeServiceConfig{
		BaseURL:   cfg.Geocode.BaseURL,
		UserAgent: cfg.Geocode.UserAgent,
		Timeout:   cfg.Geocode.Timeout,
		CacheSize: cfg.Geocode.CacheSize,
	})
	if err != nil {
		slog.Error("failed to initialize geocode service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100, // 100 requests per minute
		Window: time.Minute,
		Burst:  20, // Allow bursts up to 20
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Background jobs
	sessionReminder := jobs.NewSessionReminder(sessionService, 5*time.Minute, time.Hour)
	sessionReminder.Start()
	defer sessionReminder.Stop()

	cleanupJob := jobs.NewCleanup(notificationService, tokenService, 24*time.Hour, 30*24*time.Hour)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(authService)
	oauthHandler := handler.NewOAuthHandler(oauthService)
	accountHandler := handler.NewAccountHandler(accountService)
	relationshipHandler := handler.NewRelationshipHandler(relationshipService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	discussionHandler := handler.NewDiscussionHandler(discussionService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	shopHandler := handler.NewShopHandler(shopService)
	spaceRenterHandler := handler.NewSpaceRenterHandler(spaceRenterService)
	geocodeHandler := handler.NewGeocodeHandler(geocodeService)
	deviceHandler := handler.NewDeviceHandler(pushService)
	updatesHandler := handler.NewUpdatesHandler(updateHub)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Auth endpoints (public)
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /v1/auth/refresh", authHandler.Refresh)

	// OAuth endpoints (public)
	mux.HandleFunc("POST /v1/auth/oauth/google", oauthHandler.Google)

	// Auth endpoints (protected)
	authMiddleware := middleware.Auth(tokenService)
	mux.Handle("POST /v1/auth/logout", authMiddleware(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me)))
	mux.Handle("DELETE /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.Delete)))
	mux.Handle("POST /v1/auth/password", authMiddleware(http.HandlerFunc(authHandler.ChangePassword)))

	// Profile and account directory endpoints
	mux.Handle("GET /v1/profile", authMiddleware(http.HandlerFunc(accountHandler.GetProfile)))
	mux.Handle("PATCH /v1/profile", authMiddleware(http.HandlerFunc(accountHandler.UpdateProfile)))
	mux.Handle("GET /v1/accounts/search", authMiddleware(http.HandlerFunc(accountHandler.Search)))
	mux.Handle("GET /v1/accounts/{handle}", authMiddleware(http.HandlerFunc(accountHandler.GetByHandle)))

	// Friend and block endpoints
	mux.Handle("GET /v1/friends", authMiddleware(http.HandlerFunc(relationshipHandler.ListFriends)))
	mux.Handle("DELETE /v1/friends/{accountID}", authMiddleware(http.HandlerFunc(relationshipHandler.Unfriend)))
	mux.Handle("GET /v1/friends/requests", authMiddleware(http.HandlerFunc(relationshipHandler.ListIncoming)))
	mux.Handle("GET /v1/friends/requests/sent", authMiddleware(http.HandlerFunc(relationshipHandler.ListOutgoing)))
	mux.Handle("POST /v1/friends/requests/{accountID}", authMiddleware(http.HandlerFunc(relationshipHandler.SendRequest)))
	mux.Handle("DELETE /v1/friends/requests/{accountID}", authMiddleware(http.HandlerFunc(relationshipHandler.Cancel)))
	mux.Handle("POST /v1/friends/requests/{accountID}/accept", authMiddleware(http.HandlerFunc(relationshipHandler.Accept)))
	mux.Handle("POST /v1/friends/requests/{accountID}/decline", authMiddleware(http.HandlerFunc(relationshipHandler.Decline)))
	mux.Handle("GET /v1/blocked", authMiddleware(http.HandlerFunc(relationshipHandler.ListBlocked)))
	mux.Handle("POST /v1/blocked/{accountID}", authMiddleware(http.HandlerFunc(relationshipHandler.Block)))
	mux.Handle("DELETE /v1/blocked/{accountID}", authMiddleware(http.HandlerFunc(relationshipHandler.Unblock)))
	mux.Handle("GET /v1/relationships/{accountID}", authMiddleware(http.HandlerFunc(relationshipHandler.GetPair)))

	// Notification inbox endpoints
	mux.Handle("GET /v1/notifications", authMiddleware(http.HandlerFunc(notificationHandler.List)))
	mux.Handle("GET /v1/notifications/unread-count", authMiddleware(http.HandlerFunc(notificationHandler.UnreadCount)))
	mux.Handle("POST /v1/notifications/read-all", authMiddleware(http.HandlerFunc(notificationHandler.MarkAllRead)))
	mux.Handle("POST /v1/notifications/{id}/read", authMiddleware(http.HandlerFunc(notificationHandler.MarkRead)))
	mux.Handle("DELETE /v1/notifications/read", authMiddleware(http.HandlerFunc(notificationHandler.DeleteAllRead)))
	mux.Handle("DELETE /v1/notifications/{id}", authMiddleware(http.HandlerFunc(notificationHandler.Delete)))

	// Discussion and message endpoints
	mux.Handle("POST /v1/discussions", authMiddleware(http.HandlerFunc(discussionHandler.Create)))
	mux.Handle("GET /v1/discussions", authMiddleware(http.HandlerFunc(discussionHandler.List)))
	mux.Handle("GET /v1/discussions/{id}", authMiddleware(http.HandlerFunc(discussionHandler.Get)))
	mux.Handle("PATCH /v1/discussions/{id}", authMiddleware(http.HandlerFunc(discussionHandler.Rename)))
	mux.Handle("DELETE /v1/discussions/{id}", authMiddleware(http.HandlerFunc(discussionHandler.Delete)))
	mux.Handle("POST /v1/discussions/{id}/messages", authMiddleware(http.HandlerFunc(discussionHandler.SendMessage)))
	mux.Handle("GET /v1/discussions/{id}/messages", authMiddleware(http.HandlerFunc(discussionHandler.ListMessages)))
	mux.Handle("POST /v1/discussions/{id}/participants", authMiddleware(http.HandlerFunc(discussionHandler.AddParticipant)))
	mux.Handle("DELETE /v1/discussions/{id}/participants/{accountID}", authMiddleware(http.HandlerFunc(discussionHandler.RemoveParticipant)))
	mux.Handle("POST /v1/discussions/{id}/leave", authMiddleware(http.HandlerFunc(discussionHandler.Leave)))
	mux.Handle("PATCH /v1/messages/{id}", authMiddleware(http.HandlerFunc(discussionHandler.EditMessage)))
	mux.Handle("DELETE /v1/messages/{id}", authMiddleware(http.HandlerFunc(discussionHandler.DeleteMessage)))

	// Session endpoints
	mux.Handle("POST /v1/sessions", authMiddleware(http.HandlerFunc(sessionHandler.Create)))
	mux.Handle("GET /v1/sessions/mine", authMiddleware(http.HandlerFunc(sessionHandler.ListMine)))
	mux.Handle("GET /v1/sessions/nearby", authMiddleware(http.HandlerFunc(sessionHandler.Nearby)))
	mux.Handle("GET /v1/sessions/{id}", authMiddleware(http.HandlerFunc(sessionHandler.Get)))
	mux.Handle("PATCH /v1/sessions/{id}", authMiddleware(http.HandlerFunc(sessionHandler.Update)))
	mux.Handle("POST /v1/sessions/{id}/cancel", authMiddleware(http.HandlerFunc(sessionHandler.Cancel)))
	mux.Handle("POST /v1/sessions/{id}/status", authMiddleware(http.HandlerFunc(sessionHandler.SetStatus)))
	mux.Handle("POST /v1/sessions/{id}/join", authMiddleware(http.HandlerFunc(sessionHandler.Join)))
	mux.Handle("POST /v1/sessions/{id}/leave", authMiddleware(http.HandlerFunc(sessionHandler.Leave)))
	mux.Handle("POST /v1/sessions/{id}/invite", authMiddleware(http.HandlerFunc(sessionHandler.Invite)))
	mux.Handle("DELETE /v1/sessions/{id}/participants/{accountID}", authMiddleware(http.HandlerFunc(sessionHandler.Kick)))

	// Shop endpoints (discovery is public, management requires auth)
	mux.HandleFunc("GET /v1/shops/nearby", shopHandler.Nearby)
	mux.HandleFunc("GET /v1/shops/search", shopHandler.Search)
	mux.Handle("GET /v1/shops/mine", authMiddleware(http.HandlerFunc(shopHandler.GetMine)))
	mux.HandleFunc("GET /v1/shops/{id}", shopHandler.Get)
	mux.Handle("POST /v1/shops", authMiddleware(http.HandlerFunc(shopHandler.Create)))
	mux.Handle("PUT /v1/shops/{id}", authMiddleware(http.HandlerFunc(shopHandler.Update)))
	mux.Handle("DELETE /v1/shops/{id}", authMiddleware(http.HandlerFunc(shopHandler.Delete)))

	// Space renter endpoints
	mux.HandleFunc("GET /v1/spaces/nearby", spaceRenterHandler.Nearby)
	mux.HandleFunc("GET /v1/spaces/search", spaceRenterHandler.Search)
	mux.Handle("GET /v1/spaces/mine", authMiddleware(http.HandlerFunc(spaceRenterHandler.GetMine)))
	mux.HandleFunc("GET /v1/spaces/{id}", spaceRenterHandler.Get)
	mux.Handle("POST /v1/spaces", authMiddleware(http.HandlerFunc(spaceRenterHandler.Create)))
	mux.Handle("PUT /v1/spaces/{id}", authMiddleware(http.HandlerFunc(spaceRenterHandler.Update)))
	mux.Handle("DELETE /v1/spaces/{id}", authMiddleware(http.HandlerFunc(spaceRenterHandler.Delete)))

	// Geocoding endpoints
	mux.Handle("GET /v1/geocode", authMiddleware(http.HandlerFunc(geocodeHandler.Search)))
	mux.Handle("GET /v1/geocode/reverse", authMiddleware(http.HandlerFunc(geocodeHandler.Reverse)))

	// Device token endpoints (for push notifications)
	mux.Handle("POST /v1/devices", authMiddleware(http.HandlerFunc(deviceHandler.Register)))
	mux.Handle("GET /v1/devices", authMiddleware(http.HandlerFunc(deviceHandler.List)))
	mux.Handle("DELETE /v1/devices/{id}", authMiddleware(http.HandlerFunc(deviceHandler.Unregister)))

	// SSE live updates endpoint
	mux.Handle("GET /v1/updates", authMiddleware(http.HandlerFunc(updatesHandler.Stream)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
