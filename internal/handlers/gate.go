package handlers

import (
	"net/http"

	"github.com/membersonly/forum/internal/services"
	"github.com/membersonly/forum/types"
)

// RequireAuthenticated redirects anonymous requests to loginPath.
func RequireAuthenticated(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := services.Authorize(CurrentUser(r.Context()), ""); err != nil {
				redirect(w, r, loginPath)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin answers 403 unless the request identity holds the admin role.
// Anonymous requests get the same 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := services.Authorize(CurrentUser(r.Context()), types.RoleAdmin); err != nil {
			writeText(w, http.StatusForbidden, services.ErrForbidden.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
