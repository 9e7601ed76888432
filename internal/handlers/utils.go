package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/membersonly/forum/types"
	"go.uber.org/zap"
)

type contextKey string

const contextUserKey contextKey = "user"

const msgInternalError = "Internal Server Error"

func withUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

// CurrentUser returns the identity attached by LoadSession, or nil.
func CurrentUser(ctx context.Context) *types.User {
	user, _ := ctx.Value(contextUserKey).(*types.User)
	return user
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusFound)
}

func internalError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, msg string, err error) {
	logger.Error(msg,
		zap.String("request_id", requestID(r)),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeText(w, http.StatusInternalServerError, msgInternalError)
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

func parsePostID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "postID"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}
