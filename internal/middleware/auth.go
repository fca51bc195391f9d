package middleware // middleware contains reusable HTTP middleware functions

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/cinemahub/booking-api/internal/repository"
    "github.com/cinemahub/booking-api/internal/utils"
)

// unauthenticated is the response body returned for every authentication
// failure on protected routes.
var unauthenticated = echo.Map{
    "message": "You need to be authenticated to access this route",
    "status":  http.StatusUnauthorized,
}

// SessionAuth returns an Echo middleware that validates a Bearer session
// token and injects the authenticated user ID and session jti into the
// request context under "user_id" and "session_jti". Validation is two
// staged: the JWT signature and expiry are checked first, then the jti is
// looked up in the session_tokens table so that tokens revoked by logout
// stop working immediately. The secret must match the one used at issue
// time.
func SessionAuth(secret string, tokens *repository.SessionTokenRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, unauthenticated)
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            userID, jti, err := utils.ParseSessionToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, unauthenticated)
            }

            // Revocation lookup is bounded so a slow database cannot hang
            // the request indefinitely. Only a definitive miss means the
            // session is gone; a store failure is an internal error, not a
            // revocation.
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            if _, err := tokens.Validate(ctx, utils.HashJTI(jti)); err != nil {
                if errors.Is(err, sql.ErrNoRows) {
                    return c.JSON(http.StatusUnauthorized, unauthenticated)
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{
                    "status":  "error",
                    "message": "Authentication check failed. Please try again later.",
                })
            }

            c.Set("user_id", userID)
            c.Set("session_jti", jti)
            return next(c)
        }
    }
}
