package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/membersonly/forum/config"
	"github.com/membersonly/forum/internal/db"
	"github.com/membersonly/forum/internal/handlers"
	"github.com/membersonly/forum/internal/mq"
	"github.com/membersonly/forum/internal/services"
	"github.com/membersonly/forum/internal/store"
	"github.com/membersonly/forum/internal/views"
	"go.uber.org/zap"
)

type sessionPruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Server wraps the HTTP server, its router and the resources it owns.
type Server struct {
	httpServer    *http.Server
	router        *chi.Mux
	db            *sql.DB
	sessions      sessionPruner
	events        *mq.Publisher
	logger        *zap.Logger
	pruneInterval time.Duration

	stopPrune context.CancelFunc
	pruneDone sync.WaitGroup
	closeOnce sync.Once
}

// New opens the database and the event broker and wires every component.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backend, err := mq.NewBackend(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("connect message broker: %w", err)
	}
	events := mq.NewPublisher(backend, cfg.MQ.Channel, logger.Named("events"))

	renderer, err := views.New()
	if err != nil {
		_ = events.Close()
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)

	hasher := services.NewBcryptHasher(cfg.Auth.BcryptCost)
	sessions := services.NewSessionManager(sessionRepo, userRepo, cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)

	router := chi.NewRouter()
	router.Use(middlewares(logger)...)
	handlers.Register(router, handlers.Dependencies{
		Users:             services.NewUserService(userRepo, hasher, cfg.Auth.SignupPasscode, events),
		Auth:              services.NewAuthService(userRepo, hasher),
		Posts:             services.NewPostService(postRepo, events),
		Sessions:          sessions,
		Views:             renderer,
		Logger:            logger,
		LoginRedirectPath: cfg.Auth.LoginRedirectPath,
		SecureCookie:      cfg.Auth.SecureCookie,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 5001
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s := &Server{
		httpServer:    httpServer,
		router:        router,
		db:            dbConn,
		sessions:      sessions,
		events:        events,
		logger:        logger,
		pruneInterval: cfg.Auth.SessionPrune,
	}
	s.startPruning()
	return s, nil
}

// middlewares is the chain applied to every route. The recoverer sits inside
// the request logger so a recovered panic is logged with its 500.
func middlewares(logger *zap.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		handlers.RequestLogger(logger.Named("http")),
		RecoverWithLogger(logger),
		middleware.Timeout(60 * time.Second),
	}
}

// startPruning launches the session prune loop. It must run before the
// Server is shared with other goroutines.
func (s *Server) startPruning() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopPrune = cancel
	s.pruneDone.Add(1)
	go func() {
		defer s.pruneDone.Done()
		s.pruneSessions(ctx)
	}()
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves HTTP until Shutdown. It returns nil after a graceful shutdown,
// including when Shutdown ran first.
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases the broker and database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	s.closeOnce.Do(func() {
		s.stopPrune()
		s.pruneDone.Wait()
		if closeErr := s.events.Close(); closeErr != nil {
			s.logger.Warn("close message broker", zap.Error(closeErr))
		}
		if s.db != nil {
			_ = s.db.Close()
		}
	})
	return err
}

func (s *Server) pruneSessions(ctx context.Context) {
	if s.pruneInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.sessions.Prune(ctx)
			if err != nil {
				s.logger.Warn("prune sessions", zap.Error(err))
				continue
			}
			if removed > 0 {
				s.logger.Info("pruned expired sessions", zap.Int64("removed", removed))
			}
		}
	}
}
