package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"signature/internal/app/dto"
	accommodationapp "signature/internal/app/handlers/accommodations"
	"signature/internal/app/queries"
)

// AccommodationHandler serves the catalogue. The admin variants include
// inactive properties and the commission rate.
type AccommodationHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h AccommodationHandler) List(c *gin.Context) {
	h.list(c, false)
}

func (h AccommodationHandler) AdminList(c *gin.Context) {
	h.list(c, true)
}

func (h AccommodationHandler) Get(c *gin.Context) {
	h.get(c, false)
}

func (h AccommodationHandler) AdminGet(c *gin.Context) {
	h.get(c, true)
}

func (h AccommodationHandler) list(c *gin.Context, admin bool) {
	q := accommodationapp.ListAccommodationsQuery{IncludeInactive: admin}
	result, err := queries.Ask[accommodationapp.ListAccommodationsQuery, dto.AccommodationCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AccommodationHandler) get(c *gin.Context, admin bool) {
	q := accommodationapp.GetAccommodationQuery{Ref: c.Param("id"), IncludeInactive: admin}
	result, err := queries.Ask[accommodationapp.GetAccommodationQuery, *dto.Accommodation](c.Request.Context(), h.Queries, q)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
