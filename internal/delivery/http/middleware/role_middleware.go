package middleware

import (
	"net/http"

	"smart-opd/internal/domain/entity"
	"smart-opd/pkg/response"
)

// RequireRole allows only the listed role IDs through. It must run after
// Authenticate.
func RequireRole(roleIDs ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleID(r.Context())
			if !ok {
				response.Unauthorized(w, "")
				return
			}

			for _, allowed := range roleIDs {
				if roleID == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

func RequireDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDDoctor)(next)
}

// RequireStaff admits both admins and doctors; queue advancement endpoints
// use it.
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDDoctor)(next)
}
