package middleware

import (
	"fmt"
	"net/http"

	"github.com/lrliang/hmf-ehr/internal/domain/auth"
	"github.com/lrliang/hmf-ehr/internal/handler/http/response"
	"github.com/lrliang/hmf-ehr/internal/pkg/jwt"
)

// RequirePermission checks if user has specific permission
func RequirePermission(permission auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := jwt.RoleFromContext(r.Context())
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			if !auth.HasPermission(role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
