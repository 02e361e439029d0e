// Package server wires the repository, services and handlers into a chi
// router and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/kittygram/internal/auth"
	"github.com/sakif/kittygram/internal/handler"
	"github.com/sakif/kittygram/internal/middleware"
	"github.com/sakif/kittygram/internal/model"
	"github.com/sakif/kittygram/internal/openapi"
	sqliteRepo "github.com/sakif/kittygram/internal/repository/sqlite"
	"github.com/sakif/kittygram/internal/serializer"
	"github.com/sakif/kittygram/internal/service"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

type Config struct {
	Addr            string
	DBPath          string
	JWTSecret       string
	TokenTTL        time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Now is the clock for birth year checks and ages. Nil means time.Now.
	Now func() time.Time
	// PasswordCost overrides the bcrypt cost. Zero means the default.
	PasswordCost int
}

type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	tokens *auth.TokenService
}

// New opens the database, applies migrations and builds the routes. The
// database is closed if anything after opening it fails.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		tokens: tokens,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()
	if s.config.PasswordCost > 0 {
		var err error
		if passwords, err = auth.NewPasswordServiceWithCost(s.config.PasswordCost); err != nil {
			return err
		}
	}

	catSerializer := serializer.NewCatSerializer(s.config.Now)
	catHandler := handler.NewCatHandler(service.NewCatService(s.db, catSerializer, s.logger), catSerializer, s.logger)
	userHandler := handler.NewUserHandler(service.NewUserService(s.db, s.tokens, passwords, s.logger))
	achievementHandler := handler.NewAchievementHandler(service.NewAchievementService(s.db))
	healthHandler := handler.NewHealthHandler(s.db)

	docs, err := newDocs()
	if err != nil {
		return err
	}

	requireAuth := auth.RequireAuth(s.tokens)
	optionalAuth := auth.OptionalAuth(s.tokens)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/openapi.json", docs.Handler())

		r.Post("/users", userHandler.HandleRegister)
		r.Post("/auth/token", userHandler.HandleToken)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/users", userHandler.HandleList)
			r.Get("/users/{id}", userHandler.HandleGet)
			r.Get("/achievements", achievementHandler.HandleList)
			r.Get("/achievements/{id}", achievementHandler.HandleGet)
			r.Get("/cats", catHandler.HandleList)
			r.Get("/cats/{id}", catHandler.HandleGet)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/users/me", userHandler.HandleMe)
			r.Post("/cats", catHandler.HandleCreate)
			r.Put("/cats/{id}", catHandler.HandleUpdate)
			r.Patch("/cats/{id}", catHandler.HandlePatch)
			r.Delete("/cats/{id}", catHandler.HandleDelete)
		})
	})

	return nil
}

// newDocs describes the routes registered in setupRoutes.
func newDocs() (*openapi.Generator, error) {
	g := openapi.NewGenerator("Kittygram API", Version)

	colors := make([]any, 0, len(model.Choices))
	for _, c := range model.Choices {
		colors = append(colors, string(c.Value))
	}
	withColorEnum := func(s *openapi3.Schema) {
		if p, ok := s.Properties["color"]; ok && p.Value != nil {
			p.Value.Enum = colors
		}
	}

	schemas := []struct {
		name      string
		value     any
		customize func(*openapi3.Schema)
	}{
		{"Cat", serializer.CatView{}, withColorEnum},
		{"CatInput", catInputDoc{}, withColorEnum},
		{"Achievement", serializer.AchievementView{}, nil},
		{"User", serializer.UserView{}, nil},
		{"Register", serializer.RegisterInput{}, func(s *openapi3.Schema) { s.Required = []string{"username", "password"} }},
		{"Credentials", serializer.CredentialsInput{}, nil},
		{"Token", handler.TokenResponse{}, nil},
		{"Error", handler.ErrorResponse{}, nil},
	}
	for _, sc := range schemas {
		if err := g.RegisterSchema(sc.name, sc.value, sc.customize); err != nil {
			return nil, err
		}
	}

	bad, unauth, forbidden, missing := http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound
	for _, op := range []openapi.Operation{
		{Method: http.MethodPost, Path: "/api/users", Tag: "users", Summary: "Register a user", Request: "Register", Response: "User", Status: http.StatusCreated, Errors: []int{bad}},
		{Method: http.MethodPost, Path: "/api/auth/token", Tag: "auth", Summary: "Obtain an access token", Request: "Credentials", Response: "Token", Errors: []int{bad, unauth}},
		{Method: http.MethodGet, Path: "/api/users", Tag: "users", Summary: "List users", Response: "[]User"},
		{Method: http.MethodGet, Path: "/api/users/me", Tag: "users", Summary: "Current user", Auth: true, Response: "User", Errors: []int{unauth}},
		{Method: http.MethodGet, Path: "/api/users/{id}", Tag: "users", Summary: "Get a user", Response: "User", Errors: []int{missing}},
		{Method: http.MethodGet, Path: "/api/achievements", Tag: "achievements", Summary: "List achievements", Response: "[]Achievement"},
		{Method: http.MethodGet, Path: "/api/achievements/{id}", Tag: "achievements", Summary: "Get an achievement", Response: "Achievement", Errors: []int{missing}},
		{Method: http.MethodGet, Path: "/api/cats", Tag: "cats", Summary: "List cats", Response: "[]Cat", Query: []string{"owner"}},
		{Method: http.MethodPost, Path: "/api/cats", Tag: "cats", Summary: "Create a cat", Auth: true, Request: "CatInput", Response: "Cat", Status: http.StatusCreated, Errors: []int{bad, unauth}},
		{Method: http.MethodGet, Path: "/api/cats/{id}", Tag: "cats", Summary: "Get a cat", Response: "Cat", Errors: []int{missing}},
		{Method: http.MethodPut, Path: "/api/cats/{id}", Tag: "cats", Summary: "Replace a cat", Auth: true, Request: "CatInput", Response: "Cat", Errors: []int{bad, unauth, forbidden, missing}},
		{Method: http.MethodPatch, Path: "/api/cats/{id}", Tag: "cats", Summary: "Update a cat", Auth: true, Request: "CatInput", Response: "Cat", Errors: []int{bad, unauth, forbidden, missing}},
		{Method: http.MethodDelete, Path: "/api/cats/{id}", Tag: "cats", Summary: "Delete a cat", Auth: true, Status: http.StatusNoContent, Errors: []int{unauth, forbidden, missing}},
		{Method: http.MethodGet, Path: "/healthz", Tag: "ops", Summary: "Health check", Errors: []int{http.StatusServiceUnavailable}},
	} {
		g.AddOperation(op)
	}
	return g, nil
}

// catInputDoc is the documented shape of a cat payload.
type catInputDoc struct {
	Name         string                        `json:"name"`
	Color        string                        `json:"color"`
	BirthYear    int                           `json:"birth_year"`
	Achievements []serializer.AchievementInput `json:"achievements,omitempty"`
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully and
// closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", s.config.Addr),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
