package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SICout9010/K-Camp/internal/auth"
	"github.com/SICout9010/K-Camp/internal/config"
	"github.com/SICout9010/K-Camp/internal/database"
	"github.com/SICout9010/K-Camp/internal/handlers"
	"github.com/SICout9010/K-Camp/internal/lifecycle"
	"github.com/SICout9010/K-Camp/internal/notifier"
	"github.com/SICout9010/K-Camp/internal/registrar"
	"github.com/SICout9010/K-Camp/internal/storage"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)
	s := store.New(db)

	// File storage
	var files storage.FileStore
	if cfg.MinioEndpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		minioStore, err := storage.NewMinioStore(ctx, cfg)
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		files = minioStore
	} else {
		log.Println("MINIO_ENDPOINT not set, keeping uploads in memory")
		files = storage.NewMemoryStore(cfg.PublicURL)
	}

	// Registration lifecycle
	counted, err := lifecycle.ParseCountedSet(cfg.CountedStatuses)
	if err != nil {
		log.Fatalf("Invalid COUNTED_STATUSES: %v", err)
	}
	opts := []registrar.Option{}
	if session, err := notifier.NewDiscordSession(cfg.DiscordBotToken); err != nil {
		log.Printf("Discord notifier not initialized: %v", err)
	} else {
		opts = append(opts, registrar.WithNotifier(notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)))
	}
	manager := registrar.New(s, counted, opts...)
	loc := time.FixedZone(fmt.Sprintf("UTC%+d", cfg.TimezoneOffsetHours), cfg.TimezoneOffsetHours*60*60)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, s, files)
	h := handlers.Handlers{
		Auth:          authHandler,
		Camps:         handlers.NewCampHandler(s, manager, authHandler, files),
		Registrations: handlers.NewRegistrationHandler(s, manager, authHandler, files, loc),
		APIKeys:       handlers.NewAPIKeyHandler(s, authHandler),
		Files:         files,
	}

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, cfg, h)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
