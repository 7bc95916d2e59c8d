package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/blogem/agility-auth/authenticator"
	"github.com/blogem/agility-auth/config"
	"github.com/blogem/agility-auth/controllers"
	"github.com/blogem/agility-auth/database"
	authmiddleware "github.com/blogem/agility-auth/middleware"
	"github.com/blogem/agility-auth/mgmtapi"
	"github.com/blogem/agility-auth/repositories"
	"github.com/blogem/agility-auth/tokenstore"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web login panel and the token routes",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	repos := repositories.NewRepositories(db)

	provider, err := authenticator.NewProvider(ctx, cfg)
	if err != nil {
		return err
	}

	r, err := setupRouter(cfg, provider, repos.Audit, mgmtapi.NewFactory(mgmtBaseURL(cfg), nil))
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", "http://localhost:"+cfg.Port).
			Str("database", cfg.DatabasePath).
			Str("env", cfg.Env).
			Msg("Agility auth server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupRouter configures all routes
func setupRouter(cfg *config.Config, provider authenticator.Provider, audit repositories.AuditRepository, clients mgmtapi.Factory) (*chi.Mux, error) {
	store := tokenstore.NewCookieStore(tokenstore.CookieOptions{
		Domain: cfg.CookieDomain,
		Secure: cfg.SecureCookies(),
	})
	auth := authenticator.New(provider, store)
	ctrl := controllers.NewControllers(cfg, auth, clients)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	// Holds the OAuth state between /api/auth/login and /auth-callback
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "agility_session",
		Secure:         cfg.SecureCookies(),
		Gclifetime:     3600,
		Maxlifetime:    600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	r.Use(authmiddleware.RouteGuard(authmiddleware.RouteOptions{
		ProtectedRoutes: cfg.ProtectedRoutes,
		AuthRoutes:      cfg.AuthRoutes,
		LoginPath:       cfg.LoginPath,
		ProtectedPath:   cfg.ProtectedPath,
	}))
	if audit != nil {
		r.Use(authmiddleware.AuthAuditLogger(audit, "/api/auth"))
	}
	r.Use(tokenstore.BindHTTP)

	r.Get("/", ctrl.Dashboard.Index)
	r.Get("/protected", ctrl.Dashboard.Protected)
	r.Get("/auth-callback", ctrl.Auth.CallbackPage)

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/login", ctrl.Auth.Login)
		r.Post("/callback", ctrl.Auth.Exchange)
		r.Delete("/callback", ctrl.Auth.SignOut)
		r.Get("/status", ctrl.Auth.Status)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "agility-auth"}`)
	})

	return r, nil
}
