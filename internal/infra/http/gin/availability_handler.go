package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"signature/internal/app/commands"
	"signature/internal/app/dto"
	availabilityapp "signature/internal/app/handlers/availability"
	"signature/internal/app/queries"
	"signature/internal/domain/shared/daterange"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	checkIn, err := daterange.ParseDate(c.Query("check_in"))
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	checkOut, err := daterange.ParseDate(c.Query("check_out"))
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	q := availabilityapp.CheckAvailabilityQuery{AccommodationID: c.Param("id"), CheckIn: checkIn, CheckOut: checkOut}
	result, err := queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Unavailable(c *gin.Context) {
	var from time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := daterange.ParseDate(raw)
		if err != nil {
			handleError(c, h.Logger, err)
			return
		}
		from = parsed
	}
	q := availabilityapp.UnavailableDatesQuery{AccommodationID: c.Param("id"), From: from}
	result, err := queries.Ask[availabilityapp.UnavailableDatesQuery, dto.UnavailableDates](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateAvailabilityRequest struct {
	Days []struct {
		Date      string `json:"date" binding:"required"`
		Available bool   `json:"available"`
	} `json:"days" binding:"required"`
}

func (h AvailabilityHandler) Update(c *gin.Context) {
	var req updateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, err)
		return
	}
	cmd := availabilityapp.UpdateAvailabilityCommand{AccommodationID: c.Param("id")}
	for _, d := range req.Days {
		date, err := daterange.ParseDate(d.Date)
		if err != nil {
			handleError(c, h.Logger, err)
			return
		}
		cmd.Days = append(cmd.Days, availabilityapp.DayInput{Date: date, Available: d.Available})
	}
	result, err := commands.Dispatch[availabilityapp.UpdateAvailabilityCommand, *availabilityapp.UpdateAvailabilityResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
