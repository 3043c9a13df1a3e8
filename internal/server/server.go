// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root — the one place where the whole
// dependency graph is wired, in dependency order:
//
//	sqlite.DB → TokenService/PasswordService/GoogleProvider/s3.Store
//	          → AuthService/FolderService/FileService
//	          → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete sqlite.DB), handlers get services (never the
// repository or the object store directly).
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/sakif/filevault/internal/auth"
	"github.com/sakif/filevault/internal/config"
	"github.com/sakif/filevault/internal/handler"
	"github.com/sakif/filevault/internal/middleware"
	sqliteRepo "github.com/sakif/filevault/internal/repository/sqlite"
	"github.com/sakif/filevault/internal/service"
	"github.com/sakif/filevault/internal/storage/s3"
)

// Server owns the router, the database connection, and the object store
// client. The database is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the full dependency chain assembled.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires middleware, services, handlers and routes.
//
// MIDDLEWARE ORDER MATTERS — it executes in the order added:
//  1. RequestID — assigns a unique ID to each request (for tracing)
//  2. RealIP — extracts the real client IP from proxy headers
//  3. Recoverer — catches panics and returns 500 instead of crashing
//  4. CORS — the cookie model needs credentialed cross-origin requests
//  5. Logger — logs each request with timing info
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)
	google := auth.NewGoogleProvider(
		s.config.GoogleClientID,
		s.config.GoogleClientSecret,
		s.config.GoogleCallbackURL,
	)

	objects, err := s3.New(s3.Config{
		Endpoint:  s.config.S3Endpoint,
		Region:    s.config.S3Region,
		Bucket:    s.config.S3Bucket,
		AccessKey: s.config.S3AccessKey,
		SecretKey: s.config.S3SecretKey,
	})
	if err != nil {
		return fmt.Errorf("creating object store client: %w", err)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	folderService := service.NewFolderService(s.db, s.db, objects, s.logger)
	fileService := service.NewFileService(s.db, objects, s.logger)

	authHandler := handler.NewAuthHandler(authService, google, s.config.FEBaseURL, s.logger)
	userHandler := handler.NewUserHandler(authService, s.logger)
	folderHandler := handler.NewFolderHandler(folderService, s.logger)
	fileHandler := handler.NewFileHandler(fileService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)

	// SameSite=None cookies only flow cross-origin when the CORS response
	// names the exact origin and allows credentials — a wildcard won't do.
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{s.config.FEBaseURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler)

	s.router.Use(middleware.Logger(s.logger))

	// The guard re-resolves the user through the auth service on every
	// protected request.
	guard := auth.RequireAuth(tokens, authService)

	s.router.Route("/api", func(r chi.Router) {
		// Public auth surface
		r.Post("/auth/sign-up", authHandler.HandleSignUp)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/google", authHandler.HandleGoogleLogin)
		r.Get("/auth/google-redirect", authHandler.HandleGoogleRedirect)
		// Refresh authenticates with the refresh cookie, not the guard
		r.Get("/auth/refresh", authHandler.HandleRefresh)

		// Everything else requires a valid access token
		r.Group(func(r chi.Router) {
			r.Use(guard)

			r.Get("/auth/me", authHandler.HandleMe)
			r.Get("/auth/logout", authHandler.HandleLogout)

			r.Get("/users", userHandler.HandleList)

			r.Post("/folders/new", folderHandler.HandleCreate)
			r.Post("/folders/list-by-parent/{id}", folderHandler.HandleListByParent)
			r.Put("/folders/update/{id}", folderHandler.HandleUpdate)
			r.Put("/folders/update-editors/{id}", folderHandler.HandleUpdateEditors)
			r.Delete("/folders/{id}", folderHandler.HandleDelete)

			r.Post("/files/new", fileHandler.HandleCreate)
			r.Post("/files/presigned-link", fileHandler.HandlePresignedLink)
			r.Post("/files/list-by-folder/{id}", fileHandler.HandleListByFolder)
			r.Get("/files/{key}", fileHandler.HandleObjectURL)
			r.Put("/files/update/{id}", fileHandler.HandleUpdate)
			r.Put("/files/update-editors/{id}", fileHandler.HandleUpdateEditors)
			r.Delete("/files/{id}", fileHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the HTTP server until a shutdown signal arrives.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.Env),
			slog.String("database", s.config.DBPath),
			slog.String("bucket", s.config.S3Bucket),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
