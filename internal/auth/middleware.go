package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const ContextUserKey = "auth_user"

// Middleware проверяет bearer-токен Supabase и сохраняет пользователя в контексте.
func Middleware(verifier *TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing auth token"})
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			}

			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing auth token"})
			}

			user, err := verifier.Verify(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			}

			SetUser(c, user)
			return next(c)
		}
	}
}

// SetUser сохраняет пользователя в контексте запроса.
func SetUser(c echo.Context, user User) {
	c.Set(ContextUserKey, user)
}

// UserFromContext извлекает пользователя из контекста.
func UserFromContext(c echo.Context) (User, bool) {
	user, ok := c.Get(ContextUserKey).(User)
	return user, ok
}
