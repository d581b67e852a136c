package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/oktasim/internal/api/handler"
	"github.com/jon4hz/oktasim/internal/config"
	"github.com/jon4hz/oktasim/internal/database"
	"github.com/jon4hz/oktasim/internal/directory"
	"github.com/jon4hz/oktasim/internal/gravatar"
	"golang.org/x/sync/errgroup"
)

const sessionName = "oktasim_session"

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	db        database.DB
}

// New builds the HTTP server and registers all routes.
func New(cfg *config.Config, db database.DB, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		db:        db,
	}
	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.ginEngine.HandleMethodNotAllowed = true
	s.ginEngine.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		gzip.Gzip(gzip.DefaultCompression),
	)
	s.setupSession()
}

// setupSession installs a cookie store signed with the configured secret key.
// No route stores session data yet; the store only reserves the key for signed cookies.
func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SecretKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(sessionName, store))
}

func (s *Server) setupRoutes() {
	h := handler.New(directory.New(s.db), gravatar.New(s.cfg.Gravatar))

	s.ginEngine.NoRoute(h.NotFound)
	s.ginEngine.NoMethod(h.MethodNotAllowed)

	s.ginEngine.GET("/", h.Home)

	users := s.ginEngine.Group("/users")
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.DELETE("/:id", h.DeleteUser)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Debug("stopping API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx) //nolint:contextcheck
	})

	return g.Wait()
}
