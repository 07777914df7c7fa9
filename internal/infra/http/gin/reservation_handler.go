package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"signature/internal/app/commands"
	"signature/internal/app/dto"
	reservationapp "signature/internal/app/handlers/reservations"
	"signature/internal/app/queries"
	"signature/internal/domain/shared/daterange"
)

type ReservationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createReservationRequest struct {
	AccommodationID string `json:"accommodation_id" binding:"required"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	CheckIn         string `json:"check_in" binding:"required"`
	CheckOut        string `json:"check_out" binding:"required"`
	Guests          int    `json:"guests"`
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
	PromoCode       string `json:"promo_code"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	checkIn, err := daterange.ParseDate(req.CheckIn)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	checkOut, err := daterange.ParseDate(req.CheckOut)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	cmd := reservationapp.CreateReservationCommand{
		AccommodationID: req.AccommodationID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		PromoCode:       req.PromoCode,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[reservationapp.CreateReservationCommand, *reservationapp.CreateReservationResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequestBody(c, err)
			return
		}
		limit = n
	}
	q := reservationapp.ListReservationsQuery{
		Status:          c.Query("status"),
		PaymentStatus:   c.Query("payment_status"),
		AccommodationID: c.Query("accommodation_id"),
		Limit:           limit,
	}
	result, err := queries.Ask[reservationapp.ListReservationsQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Get(c *gin.Context) {
	q := reservationapp.GetReservationQuery{ID: c.Param("id")}
	result, err := queries.Ask[reservationapp.GetReservationQuery, *dto.Reservation](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type adminNotesRequest struct {
	AdminNotes string `json:"admin_notes"`
	Reason     string `json:"reason"`
}

func (h ReservationHandler) Confirm(c *gin.Context) {
	var req adminNotesRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	cmd := reservationapp.ConfirmReservationCommand{ReservationID: c.Param("id"), AdminNotes: req.AdminNotes}
	h.transition(c, func() (*dto.Reservation, error) {
		return commands.Dispatch[reservationapp.ConfirmReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	})
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	var req adminNotesRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	cmd := reservationapp.CancelReservationCommand{ReservationID: c.Param("id"), Reason: req.Reason, AdminNotes: req.AdminNotes}
	h.transition(c, func() (*dto.Reservation, error) {
		return commands.Dispatch[reservationapp.CancelReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	})
}

type paymentRequest struct {
	Status     string `json:"status" binding:"required"`
	Reference  string `json:"reference"`
	AdminNotes string `json:"admin_notes"`
}

func (h ReservationHandler) Payment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	cmd := reservationapp.UpdatePaymentStatusCommand{
		ReservationID: c.Param("id"),
		Status:        req.Status,
		Reference:     req.Reference,
		AdminNotes:    req.AdminNotes,
	}
	h.transition(c, func() (*dto.Reservation, error) {
		return commands.Dispatch[reservationapp.UpdatePaymentStatusCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	})
}

func (h ReservationHandler) Stats(c *gin.Context) {
	result, err := queries.Ask[reservationapp.AdminStatsQuery, dto.AdminStats](c.Request.Context(), h.Queries, reservationapp.AdminStatsQuery{})
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) transition(c *gin.Context, run func() (*dto.Reservation, error)) {
	result, err := run()
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, out any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(out); err != nil {
		badRequestBody(c, err)
		return false
	}
	return true
}
