package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"signature/internal/app/commands"
	"signature/internal/app/dto"
	promoapp "signature/internal/app/handlers/promos"
	"signature/internal/app/queries"
)

type PromoHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type validatePromoRequest struct {
	Code      string `json:"code"`
	BasePrice int64  `json:"base_price"`
}

// Validate answers 422 with the rejection reason when the code cannot apply.
func (h PromoHandler) Validate(c *gin.Context) {
	var req validatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	q := promoapp.ValidatePromoCodeQuery{Code: req.Code, BasePrice: req.BasePrice}
	result, err := queries.Ask[promoapp.ValidatePromoCodeQuery, dto.PromoValidation](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

func (h PromoHandler) List(c *gin.Context) {
	result, err := queries.Ask[promoapp.ListPromoCodesQuery, dto.PromoCodeCollection](c.Request.Context(), h.Queries, promoapp.ListPromoCodesQuery{})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type createPromoRequest struct {
	Code          string     `json:"code" binding:"required"`
	DiscountType  string     `json:"discount_type" binding:"required"`
	DiscountValue float64    `json:"discount_value"`
	ExpiresAt     *time.Time `json:"expires_at"`
	MaxUses       *int       `json:"max_uses"`
}

func (h PromoHandler) Create(c *gin.Context) {
	var req createPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	cmd := promoapp.CreatePromoCodeCommand{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ExpiresAt:     req.ExpiresAt,
		MaxUses:       req.MaxUses,
	}
	result, err := commands.Dispatch[promoapp.CreatePromoCodeCommand, *dto.PromoCode](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type togglePromoRequest struct {
	Active bool `json:"active"`
}

func (h PromoHandler) Toggle(c *gin.Context) {
	var req togglePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	cmd := promoapp.TogglePromoCodeCommand{ID: c.Param("id"), Active: req.Active}
	result, err := commands.Dispatch[promoapp.TogglePromoCodeCommand, *dto.PromoCode](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PromoHandler) Delete(c *gin.Context) {
	cmd := promoapp.DeletePromoCodeCommand{ID: c.Param("id")}
	if _, err := commands.Dispatch[promoapp.DeletePromoCodeCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
