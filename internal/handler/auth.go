package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/cinemahub/booking-api/internal/config"
    "github.com/cinemahub/booking-api/internal/repository"
    "github.com/cinemahub/booking-api/internal/utils"
)

// AuthHandler bundles dependencies for the session endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tokens *repository.SessionTokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.SessionTokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type userPart struct {
    ID        uint64    `json:"id"`
    Name      string    `json:"name"`
    Email     string    `json:"email"`
    CreatedAt time.Time `json:"created_at"`
}

// Login handles POST /session: verify credentials and issue a session
// token. The token's jti hash is stored so logout can revoke it.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid request body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "Invalid credentials"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "Invalid credentials"})
        }
        return internalError(c, "Login failed")
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "Invalid credentials"})
    }

    tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, h.Cfg.SessionTTLMin)
    if err != nil {
        return internalError(c, "Login failed")
    }
    if err := h.Tokens.Store(ctx, u.ID, utils.HashJTI(tok.JTI), tok.Exp); err != nil {
        return internalError(c, "Login failed")
    }

    return c.JSON(http.StatusOK, echo.Map{
        "status":  "success",
        "message": "Login successful",
        "data": echo.Map{
            "user":  userPart{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt},
            "token": tok.Token,
        },
    })
}

// Logout handles DELETE /session: revoke the caller's current session
// token. The route is protected, so SessionAuth has already validated the
// token and left its jti in the context.
func (h *AuthHandler) Logout(c echo.Context) error {
    jti, ok := c.Get("session_jti").(string)
    if !ok || jti == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{
            "message": "You need to be authenticated to access this route",
            "status":  http.StatusUnauthorized,
        })
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Tokens.Revoke(ctx, utils.HashJTI(jti)); err != nil {
        return internalError(c, "Logout failed")
    }
    return c.JSON(http.StatusOK, echo.Map{
        "status":  "success",
        "message": "Logged out successfully",
    })
}
