package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"travelsnap/internal/app"
	"travelsnap/internal/config"
	"travelsnap/internal/consul"
	"travelsnap/internal/logger"
	"travelsnap/internal/web"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	// Initialize structured logger
	log := logger.New()
	logger.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting TravelSnap web",
		"port", cfg.WebPort,
		"backend_url", cfg.BackendURL,
		"backend_service", cfg.BackendService,
		"session_store", cfg.SessionStore,
	)

	application, err := app.New(cfg, log)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	// Boundaries can be large; pages work without them until they arrive
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := application.LoadBoundaries(ctx); err != nil {
			slog.Error("Failed to load country boundaries", "source", cfg.BoundariesSource, "error", err)
		}
	}()

	var origins []string
	if raw := config.GetEnvOrDefault("HOVER_ORIGINS", ""); raw != "" {
		origins = strings.Split(raw, ",")
	}

	// Each browser gets its own explorer and token slot
	browsers := web.NewBrowsers(application.Store, cfg.WebSessionTTL, application.NewExplorer)

	// Setup router
	router := web.NewServer(browsers, cfg.TileURL, origins).Router()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.WebAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("TravelSnap web listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	serviceID := ""
	if cfg.ConsulRegister {
		serviceID, err = register(application.Consul, cfg)
		if err != nil {
			slog.Error("Failed to register with Consul", "error", err)
			os.Exit(1)
		}
		slog.Info("Registered with Consul", "service_id", serviceID)
	}

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down TravelSnap web")
	cancel()

	if serviceID != "" {
		if err := application.Consul.Deregister(serviceID); err != nil {
			slog.Error("Failed to deregister from Consul", "error", err)
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("TravelSnap web stopped")
}

// register announces the web front end to Consul
func register(client *consul.Client, cfg *config.Config) (string, error) {
	if err := config.ValidateEnv([]string{"WEB_HOST"}); err != nil {
		return "", err
	}

	svc := consul.WebService(config.GetEnvOrDefault("WEB_SERVICE_NAME", "travelsnap-web"), cfg.WebHost, cfg.WebPort)
	if err := client.Register(svc); err != nil {
		return "", err
	}
	return svc.ID, nil
}
