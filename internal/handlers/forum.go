package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/membersonly/forum/internal/services"
	"github.com/membersonly/forum/internal/views"
	"go.uber.org/zap"
)

const formFieldContent = "content"

// ForumHandler serves the landing page, the board and post deletion.
type ForumHandler struct {
	postService *services.PostService
	userService *services.UserService
	views       *views.Renderer
	logger      *zap.Logger
}

func NewForumHandler(postService *services.PostService, userService *services.UserService, renderer *views.Renderer, logger *zap.Logger) *ForumHandler {
	return &ForumHandler{
		postService: postService,
		userService: userService,
		views:       renderer,
		logger:      logger,
	}
}

// ForumRouter registers the board routes. loginPath is where anonymous
// visitors of /forum are sent.
func ForumRouter(r chi.Router, handler *ForumHandler, loginPath string) {
	r.Get("/", handler.Home)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuthenticated(loginPath))
		r.Get("/forum", handler.ListPosts)
		r.Post("/forum", handler.CreatePost)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Get("/confirm-delete/{postID}", handler.ConfirmDelete)
		r.Post("/delete-post/{postID}", handler.DeletePost)
	})
}

// Home lists members and post bodies without authors. A store failure still
// renders the page, empty, with status 500.
func (h *ForumHandler) Home(w http.ResponseWriter, r *http.Request) {
	page := views.IndexPage{User: CurrentUser(r.Context())}

	users, err := h.userService.List(r.Context())
	if err == nil {
		page.Users = users
		page.Posts, err = h.postService.ListContentOnly(r.Context())
	}
	if err != nil {
		h.logger.Error("load home page", zap.String("request_id", requestID(r)), zap.Error(err))
		h.render(w, r, http.StatusInternalServerError, views.PageIndex, views.IndexPage{User: page.User})
		return
	}

	h.render(w, r, http.StatusOK, views.PageIndex, page)
}

func (h *ForumHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListWithAuthor(r.Context())
	if err != nil {
		internalError(w, r, h.logger, "list posts", err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageForum, views.ForumPage{
		User:  CurrentUser(r.Context()),
		Posts: posts,
	})
}

func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form")
		return
	}

	if _, err := h.postService.Create(r.Context(), CurrentUser(r.Context()), r.PostFormValue(formFieldContent)); err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyPost):
			writeText(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUnauthenticated):
			writeText(w, http.StatusUnauthorized, "unauthorized")
		default:
			internalError(w, r, h.logger, "create post", err)
		}
		return
	}

	redirect(w, r, "/forum")
}

func (h *ForumHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeText(w, http.StatusNotFound, services.ErrPostNotFound.Error())
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			writeText(w, http.StatusNotFound, err.Error())
			return
		}
		internalError(w, r, h.logger, "load post", err)
		return
	}

	h.render(w, r, http.StatusOK, views.PageConfirmDelete, views.ConfirmDeletePage{
		User:    CurrentUser(r.Context()),
		PostID:  post.ID,
		Content: post.Content,
	})
}

// DeletePost removes exactly one post. A post that is already gone is a 404.
func (h *ForumHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parsePostID(r)
	if err != nil {
		writeText(w, http.StatusNotFound, services.ErrPostNotFound.Error())
		return
	}

	if err := h.postService.Delete(r.Context(), CurrentUser(r.Context()), id); err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			writeText(w, http.StatusForbidden, err.Error())
		case errors.Is(err, services.ErrPostNotFound):
			writeText(w, http.StatusNotFound, err.Error())
		default:
			internalError(w, r, h.logger, "delete post", err)
		}
		return
	}

	h.logger.Info("post deleted", zap.Int64("post_id", id), zap.Int64("admin_id", CurrentUser(r.Context()).ID))
	redirect(w, r, "/forum")
}

func (h *ForumHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := h.views.Render(w, status, page, data); err != nil {
		internalError(w, r, h.logger, "render page", err)
	}
}
