package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"signature/internal/app/commands"
	accommodationapp "signature/internal/app/handlers/accommodations"
	"signature/internal/app/services/auth"
)

// AdminHandler serves the back-office session and catalogue endpoints.
type AdminHandler struct {
	Auth     *auth.Service
	Commands commands.Bus
	Logger   *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	result, err := h.Auth.Login(c.Request.Context(), auth.LoginParams{Email: req.Email, Password: req.Password})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: result.Token, ExpiresAt: result.ExpiresAt})
}

func (h AdminHandler) Logout(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c.Request.Context())
	if !ok {
		handleError(c, h.Logger, auth.ErrUnauthenticated)
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), p.Token); err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type upsertAccommodationRequest struct {
	Name           string  `json:"name" binding:"required"`
	Type           string  `json:"type"`
	Location       string  `json:"location"`
	PricePerNight  int64   `json:"price_per_night"`
	CommissionRate float64 `json:"commission_rate"`
	Capacity       int     `json:"capacity"`
	Active         *bool   `json:"active"`
	Featured       bool    `json:"featured"`
}

func (h AdminHandler) UpsertAccommodation(c *gin.Context) {
	var req upsertAccommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	cmd := accommodationapp.UpsertAccommodationCommand{
		ID:             c.Param("id"),
		Name:           req.Name,
		Type:           req.Type,
		Location:       req.Location,
		PricePerNight:  req.PricePerNight,
		CommissionRate: req.CommissionRate,
		Capacity:       req.Capacity,
		Active:         req.Active,
		Featured:       req.Featured,
	}
	result, err := commands.Dispatch[accommodationapp.UpsertAccommodationCommand, *accommodationapp.Result](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
