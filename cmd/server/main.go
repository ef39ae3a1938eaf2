package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/config"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/delivery"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/fulfillment"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/handlers"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/packing"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/renewal"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/shipping"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/store"
	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/webshop"
)

func main() {
	// Configure slog as early as possible in main.
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	// TextHandler for console readability; for production JSONHandler might be preferred.
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init DB
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}

	// Run Migrations
	if err := db.Migrate("migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	templates.AddFunc("prevPage", func(currentPage int) int { return currentPage - 1 })
	templates.AddFunc("nextPage", func(currentPage int) int { return currentPage + 1 })

	if err := templates.Load("templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Domain services
	packingCfg, err := packing.LoadConfig(cfg.PackingConfigPath)
	if err != nil {
		slog.Error("Failed to load packing config", "error", err)
		os.Exit(1)
	}

	registry := delivery.NewRegistry(db)
	generator := renewal.NewGenerator(registry, db, db, cfg.RenewalRunDay)
	classifier := packing.NewClassifier(db, packingCfg)
	shipper := shipping.NewClient(cfg.ShippingAPIURL, cfg.ShippingAPIKey, cfg.ShippingSenderID, cfg.ShippingTransportAgreement)
	shop := webshop.NewClient(cfg.WebshopAPIURL, cfg.WebshopAPIKey, cfg.WebshopAPISecret)
	pipeline := fulfillment.NewPipeline(db, shipper, shop, cfg.FulfillmentBatchSize, cfg.FulfillmentBatchDelay)

	// 6. Setup Handlers
	adminHandler := &handlers.AdminHandler{
		Store:        db,
		SessionStore: sessionStore,
		Templates:    templates,
	}
	opsHandler := &handlers.OpsHandler{
		Store:      db,
		Registry:   registry,
		Generator:  generator,
		Classifier: classifier,
		Pipeline:   pipeline,
	}

	mux := http.NewServeMux()

	// Static Files
	fileServer := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Rate Limiter for login attempts
	rateLimiter := handlers.NewRateLimiter(1 * time.Minute)

	mux.HandleFunc("/login", adminHandler.LoginGet)
	mux.HandleFunc("POST /login", rateLimiter.Middleware(adminHandler.LoginPost))
	mux.HandleFunc("/logout", adminHandler.Logout)

	// Protected Routes
	mux.HandleFunc("/admin", adminHandler.AuthMiddleware(adminHandler.Dashboard))

	mux.HandleFunc("/admin/coffees", adminHandler.AuthMiddleware(adminHandler.ListCoffees))
	mux.HandleFunc("/admin/coffees/new", adminHandler.AuthMiddleware(adminHandler.AddCoffeeForm)) // GET form
	mux.HandleFunc("POST /admin/coffees", adminHandler.AuthMiddleware(adminHandler.CreateCoffee))
	mux.HandleFunc("/admin/coffees/edit", adminHandler.AuthMiddleware(adminHandler.EditCoffeeForm))
	mux.HandleFunc("POST /admin/coffees/update", adminHandler.AuthMiddleware(adminHandler.UpdateCoffee))
	mux.HandleFunc("POST /admin/coffees/delete", adminHandler.AuthMiddleware(adminHandler.DeleteCoffee))

	mux.HandleFunc("/admin/deliveries", adminHandler.AuthMiddleware(adminHandler.ListDeliveries))
	mux.HandleFunc("POST /admin/deliveries/coffees", adminHandler.AuthMiddleware(adminHandler.SetDeliveryCoffees))

	mux.HandleFunc("/admin/subscriptions", adminHandler.AuthMiddleware(adminHandler.ListSubscriptions))
	mux.HandleFunc("/admin/orders", adminHandler.AuthMiddleware(adminHandler.ListOrders))

	// Planning and fulfillment operations (JSON)
	mux.HandleFunc("POST /admin/ops/renewals", adminHandler.AuthMiddleware(opsHandler.TriggerRenewals))
	mux.HandleFunc("/admin/ops/roast-overview", adminHandler.AuthMiddleware(opsHandler.RoastOverview))
	mux.HandleFunc("/admin/ops/packing-preview", adminHandler.AuthMiddleware(opsHandler.PackingPreview))
	mux.HandleFunc("POST /admin/ops/fulfillment", adminHandler.AuthMiddleware(opsHandler.TriggerFulfillment))

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
