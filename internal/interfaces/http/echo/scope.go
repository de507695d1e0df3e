package echo

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	domain "github.com/mohammadpnp/client-import/internal/domain/client"
)

const (
	HeaderUserID      = "X-User-ID"
	HeaderUserRole    = "X-User-Role"
	HeaderTeamUserIDs = "X-Team-User-IDs"

	scopeContextKey = "client_scope"
)

// ScopeMiddleware builds the caller's scope from the identity headers set by the
// upstream auth layer and rejects requests without one.
func ScopeMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			userID := strings.TrimSpace(req.Header.Get(HeaderUserID))
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, apiResponse{Error: &errorBody{
					Code:    "unauthenticated",
					Message: HeaderUserID + " header is required",
				}})
			}

			role, err := domain.ParseRole(req.Header.Get(HeaderUserRole))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, apiResponse{Error: &errorBody{
					Code:    "unauthenticated",
					Message: HeaderUserRole + " must be one of seller, manager, admin",
				}})
			}

			c.Set(scopeContextKey, domain.Scope{
				Role:        role,
				UserID:      userID,
				TeamUserIDs: splitIDs(req.Header.Get(HeaderTeamUserIDs)),
			})
			return next(c)
		}
	}
}

func scopeFrom(c echo.Context) (domain.Scope, bool) {
	scope, ok := c.Get(scopeContextKey).(domain.Scope)
	return scope, ok
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
