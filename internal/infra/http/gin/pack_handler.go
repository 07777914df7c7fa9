package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"signature/internal/app/commands"
	"signature/internal/app/dto"
	packapp "signature/internal/app/handlers/packs"
	"signature/internal/app/queries"
	"signature/internal/domain/shared/daterange"
)

type PackHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h PackHandler) List(c *gin.Context) {
	result, err := queries.Ask[packapp.ListPacksQuery, dto.PackCollection](c.Request.Context(), h.Queries, packapp.ListPacksQuery{})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type packRequestBody struct {
	PackName  string `json:"pack_name" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	EventDate string `json:"event_date"`
	Guests    *int   `json:"guests"`
	Message   string `json:"message"`
	PromoCode string `json:"promo_code"`
}

func (h PackHandler) Request(c *gin.Context) {
	var req packRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	cmd := packapp.RequestPackCommand{
		PackName:  req.PackName,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Guests:    req.Guests,
		Message:   req.Message,
		PromoCode: req.PromoCode,
	}
	if req.EventDate != "" {
		date, err := daterange.ParseDate(req.EventDate)
		if err != nil {
			handleError(c, h.Logger, err)
			return
		}
		cmd.EventDate = &date
	}
	result, err := commands.Dispatch[packapp.RequestPackCommand, *dto.PackRequest](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PackHandler) ListRequests(c *gin.Context) {
	q := packapp.ListPackRequestsQuery{Status: c.Query("status")}
	result, err := queries.Ask[packapp.ListPackRequestsQuery, dto.PackRequestCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type packStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h PackHandler) UpdateRequestStatus(c *gin.Context) {
	var req packStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	cmd := packapp.UpdatePackRequestStatusCommand{RequestID: c.Param("id"), Status: req.Status}
	result, err := commands.Dispatch[packapp.UpdatePackRequestStatusCommand, *dto.PackRequest](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type upsertPackRequest struct {
	Name             string   `json:"name" binding:"required"`
	PackType         string   `json:"pack_type"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	AccommodationIDs []string `json:"accommodation_ids"`
	Featured         bool     `json:"featured"`
	Active           bool     `json:"active"`
}

// Upsert serves both POST /admin/packs and PUT /admin/packs/:id.
func (h PackHandler) Upsert(c *gin.Context) {
	var req upsertPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	cmd := packapp.UpsertPackCommand{
		ID:               c.Param("id"),
		Name:             req.Name,
		PackType:         req.PackType,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		AccommodationIDs: req.AccommodationIDs,
		Featured:         req.Featured,
		Active:           req.Active,
	}
	result, err := commands.Dispatch[packapp.UpsertPackCommand, *dto.Pack](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
