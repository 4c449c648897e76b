package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/signlyhq/signly/internal/api"
	"github.com/signlyhq/signly/internal/auth"
	"github.com/signlyhq/signly/internal/billing"
	"github.com/signlyhq/signly/internal/config"
	"github.com/signlyhq/signly/internal/consent"
	"github.com/signlyhq/signly/internal/db"
	"github.com/signlyhq/signly/internal/documents"
	"github.com/signlyhq/signly/internal/logger"
	"github.com/signlyhq/signly/internal/storage"
	"github.com/signlyhq/signly/internal/user"
	"github.com/stripe/stripe-go/v84"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	bunDB := db.NewBunPostgresClient(cfg.DatabaseURL)
	defer bunDB.Close()

	ctx := context.Background()

	userRepo := user.NewUserRepository(bunDB)
	billingStore := billing.NewBunStore(bunDB)
	docRepo := documents.NewDocumentRepository(bunDB)
	for name, init := range map[string]func(context.Context) error{
		"users":     userRepo.InitializeDatabase,
		"billing":   billingStore.InitializeDatabase,
		"documents": docRepo.InitializeDatabase,
	} {
		if err := init(ctx); err != nil {
			log.Fatalf("Failed to initialize %s schema: %v", name, err)
		}
	}

	sc := stripe.NewClient(cfg.StripeSecretKey)
	provider := billing.NewClient(sc, cfg.StripeWebhookSecret)

	auth.Configure(cfg.WorkOSApiKey)
	jwtVerifier, err := auth.NewJWTVerifier(cfg.WorkOSClientID)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	urlIssuer, err := storage.NewSignedURLIssuer(ctx, cfg.DocumentsBucket, time.Duration(cfg.SignedURLTTLSeconds)*time.Second)
	if err != nil {
		log.Fatalf("Failed to create signed URL issuer: %v", err)
	}
	defer urlIssuer.Close()

	userService := user.NewUserService(userRepo, provider)
	resolver := billing.NewCustomerResolver(userRepo)
	projector := billing.NewProjector(billingStore, provider, logger.Log)
	usageGate := billing.NewUsageGate(userRepo, resolver, billingStore, billingStore)
	cancels := billing.NewCancellationService(provider, resolver, billingStore, logger.Log)
	docService := documents.NewService(docRepo, usageGate, urlIssuer)

	authMW := auth.NewMiddleware(jwtVerifier)
	gate := consent.NewGate(userService, cfg.LegalVersion)

	handlers := api.Handlers{
		Auth:      auth.NewHandlers(cfg.WorkOSClientID, cfg.WorkOSRedirectURL, cfg.SiteBaseURL),
		Consent:   consent.NewHandlers(userService, cfg.LegalVersion),
		Webhook:   api.NewWebhookHandler(provider, projector, logger.Log),
		Billing:   api.NewBillingHandler(userService, provider, resolver, billingStore, usageGate, cancels, cfg.SiteBaseURL, logger.Log),
		Documents: api.NewDocumentHandler(docService, logger.Log),
		Health:    api.NewHealthHandler(bunDB),
	}

	router := api.SetupRoutes(authMW, gate, userService, handlers, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Println("Server stopped")
}
