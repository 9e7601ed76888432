package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/membersonly/forum/internal/services"
	"github.com/membersonly/forum/internal/views"
	"go.uber.org/zap"
)

const (
	formFieldFirstName = "firstName"
	formFieldLastName  = "lastName"
	formFieldUsername  = "username"
	formFieldEmail     = "email"
	formFieldPassword  = "password"
	formFieldStatus    = "membershipStatus"
	formFieldPasscode  = "membershipPasscode"
)

// AuthHandler serves signup, log-in and log-out.
type AuthHandler struct {
	userService  *services.UserService
	authService  *services.AuthService
	sessions     *services.SessionManager
	views        *views.Renderer
	logger       *zap.Logger
	secureCookie bool
}

func NewAuthHandler(
	userService *services.UserService,
	authService *services.AuthService,
	sessions *services.SessionManager,
	renderer *views.Renderer,
	logger *zap.Logger,
	secureCookie bool,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		sessions:     sessions,
		views:        renderer,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Get("/signup", handler.SignupForm)
	r.Post("/signup", handler.Signup)
	r.Get("/log-in", handler.LoginForm)
	r.Post("/log-in", handler.Login)
	r.Get("/log-out", handler.Logout)
}

func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageSignup, views.FormPage{User: CurrentUser(r.Context())})
}

// Signup creates a member when the shared passcode matches.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form")
		return
	}

	user, err := h.userService.Signup(r.Context(), services.SignupRequest{
		Username:         r.PostFormValue(formFieldUsername),
		Password:         r.PostFormValue(formFieldPassword),
		FirstName:        r.PostFormValue(formFieldFirstName),
		LastName:         r.PostFormValue(formFieldLastName),
		Email:            r.PostFormValue(formFieldEmail),
		MembershipStatus: r.PostFormValue(formFieldStatus),
		Passcode:         r.PostFormValue(formFieldPasscode),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWrongPasscode):
			writeText(w, http.StatusForbidden, services.ErrWrongPasscode.Error())
		case errors.Is(err, services.ErrMissingFields), errors.Is(err, services.ErrLongPassword):
			writeText(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUsernameTaken):
			writeText(w, http.StatusConflict, err.Error())
		default:
			internalError(w, r, h.logger, "signup failed", err)
		}
		return
	}

	h.logger.Info("member signed up",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.MembershipStatus.String()),
	)
	redirect(w, r, "/")
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if CurrentUser(r.Context()) != nil {
		redirect(w, r, "/")
		return
	}
	h.render(w, r, http.StatusOK, views.PageLogin, views.FormPage{})
}

// Login verifies credentials and starts a session. Both outcomes land on "/".
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form")
		return
	}

	username := strings.TrimSpace(r.PostFormValue(formFieldUsername))
	user, err := h.authService.Authenticate(r.Context(), username, r.PostFormValue(formFieldPassword))
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) || errors.Is(err, services.ErrBadPassword) {
			h.logger.Info("log-in rejected", zap.String("username", username), zap.String("reason", err.Error()))
			redirect(w, r, "/")
			return
		}
		internalError(w, r, h.logger, "log-in failed", err)
		return
	}

	// Drop any session the browser already holds before issuing a new one.
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("destroy previous session", zap.Error(err))
		}
	}

	token, expiresAt, err := h.sessions.Serialize(r.Context(), user)
	if err != nil {
		internalError(w, r, h.logger, "create session", err)
		return
	}

	setSessionCookie(w, token, expiresAt, h.secureCookie)
	redirect(w, r, "/")
}

// Logout ends the session. Requests without one are redirected all the same.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			internalError(w, r, h.logger, "destroy session", err)
			return
		}
	}
	clearSessionCookie(w, h.secureCookie)
	redirect(w, r, "/")
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := h.views.Render(w, status, page, data); err != nil {
		internalError(w, r, h.logger, "render page", err)
	}
}
