package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
	"github.com/nexus-club/admin-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	Logout(ctx context.Context, token string) error
	TTL() time.Duration
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookie  CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Log in
// @Description Checks credentials and sets the HttpOnly session cookie
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindPayload(c, &req, "login"); err != nil {
		response.Error(c, err)
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setCookie(c, session.Token, int(h.service.TTL().Seconds()))
	response.JSON(c, http.StatusOK, gin.H{"ok": true, "admin": session.Admin, "expiresAt": session.ExpiresAt}, nil)
}

// Logout godoc
// @Summary Log out
// @Description Expires the session cookie and revokes the session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [delete]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		_ = h.service.Logout(c.Request.Context(), token)
	}
	h.setCookie(c, "", -1)
	response.JSON(c, http.StatusOK, gin.H{"ok": true}, nil)
}

// Session godoc
// @Summary Current session
// @Description Returns the logged-in admin
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, claims.Identity(), nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
