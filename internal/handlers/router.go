package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/membersonly/forum/internal/services"
	"github.com/membersonly/forum/internal/views"
	"go.uber.org/zap"
)

// Dependencies carries everything the page handlers need.
type Dependencies struct {
	Users             *services.UserService
	Auth              *services.AuthService
	Posts             *services.PostService
	Sessions          *services.SessionManager
	Views             *views.Renderer
	Logger            *zap.Logger
	LoginRedirectPath string
	SecureCookie      bool
}

// Register mounts the health check and every page route. Page routes resolve
// the session cookie first.
func Register(r chi.Router, deps Dependencies) {
	loginPath := deps.LoginRedirectPath
	if loginPath == "" {
		loginPath = "/login"
	}

	r.Get("/healthz", Healthz)
	r.Group(func(r chi.Router) {
		r.Use(LoadSession(deps.Sessions, deps.Logger))
		AuthRouter(r, NewAuthHandler(deps.Users, deps.Auth, deps.Sessions, deps.Views, deps.Logger, deps.SecureCookie))
		ForumRouter(r, NewForumHandler(deps.Posts, deps.Users, deps.Views, deps.Logger), loginPath)
	})
}
