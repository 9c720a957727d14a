package handler

import (
	"log"      // startup hash failures are fatal
	"net/http" // HTTP status codes
	"strings"  // email normalization
	"time"     // token expiry in the response

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/brajcamp/camp-registration/internal/config" // app configuration
	"github.com/brajcamp/camp-registration/internal/utils"  // token issuing and password hashing
)

// AuthHandler implements the admin login endpoint.  This service has a
// single operator account configured through the environment; the plain
// password is hashed once at startup and only the hash is kept in memory.
type AuthHandler struct {
	Cfg          config.Config
	adminEmail   string
	passwordHash string
}

// NewAuthHandler hashes the configured admin password.  A hashing failure
// means the bcrypt cost is invalid, which is a configuration error.
func NewAuthHandler(cfg config.Config) *AuthHandler {
	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}
	return &AuthHandler{
		Cfg:          cfg,
		adminEmail:   strings.ToLower(cfg.AdminEmail),
		passwordHash: hash,
	}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login: verify the admin credentials and return an access token.  A wrong
// email and a wrong password produce the same 401 so the endpoint does not
// confirm which account exists.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	if req.Email != h.adminEmail || !utils.VerifyPassword(h.passwordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Email, "ADMIN", h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, loginResp{Token: access.Token, Expires: access.Exp})
}
