package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"stagepass/internal/config"
	"stagepass/internal/database"
	"stagepass/internal/handlers"
	"stagepass/internal/middleware"
	"stagepass/internal/repositories"
	"stagepass/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Database ready")

	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	userRepo := repositories.NewUserRepository(db.DB)
	eventRepo := repositories.NewEventRepository(db.DB)
	productRepo := repositories.NewProductRepository(db.DB)

	emailService, err := services.NewEmailService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	paymentService := services.NewStripeService(cfg.Stripe, userRepo)
	authService := services.NewAuthService(userRepo, emailService, cfg.Server.BaseURL)
	checkoutStore := services.NewSessionCheckoutStore(sessionStore)
	entitlementService := services.NewEntitlementService(eventRepo, productRepo, emailService)

	renderer, err := handlers.NewRenderer()
	if err != nil {
		log.Fatal("Failed to parse templates:", err)
	}

	publicHandler := handlers.NewPublicHandler(eventRepo, productRepo, renderer, sessionStore)
	authHandler := handlers.NewAuthHandler(authService, renderer, sessionStore)
	purchaseHandler := handlers.NewPurchaseHandler(
		eventRepo, productRepo, checkoutStore, paymentService,
		renderer, sessionStore,
		cfg.Stripe.Currency, cfg.Stripe.PublishableKey, cfg.Server.BaseURL,
	)
	webhookHandler := handlers.NewWebhookHandler(paymentService, entitlementService, userRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService, sessionStore)
	csrfMiddleware := middleware.NewCSRFMiddleware(sessionStore, "/stripe/webhook/")

	r := chi.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(authMiddleware.LoadUser)
	r.Use(csrfMiddleware.EnsureCSRFToken)
	r.Use(csrfMiddleware.CSRFProtection)

	r.Get("/", publicHandler.Home)
	r.Get("/event/{eventID}/", publicHandler.EventPage)
	r.With(middleware.RequireAuth).Get("/dashboard/", publicHandler.Dashboard)
	r.Post("/event/{eventID}/purchase/", purchaseHandler.EventPurchase)
	r.Get("/event/{eventID}/pay/", purchaseHandler.EventPay)
	r.Post("/event/{eventID}/pay/", purchaseHandler.EventPay)
	r.With(middleware.RequireAuth).Post("/product/purchase/{productID}/", purchaseHandler.PurchaseProduct)
	r.Get("/payment/confirmation/", purchaseHandler.Confirmation)

	// The processor authenticates with its signature header, not a session.
	r.Post("/stripe/webhook/", webhookHandler.HandleWebhook)

	r.Get("/accounts/register/", authHandler.RegisterPage)
	r.Post("/accounts/register/", authHandler.Register)
	r.Get("/accounts/login/", authHandler.LoginPage)
	r.Post("/accounts/login/", authHandler.Login)
	r.Post("/accounts/logout/", authHandler.Logout)
	r.Get("/activate/{token}/", authHandler.Activate)
	r.Get("/accounts/password-reset/", authHandler.PasswordResetPage)
	r.Post("/accounts/password-reset/", authHandler.PasswordResetRequest)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
