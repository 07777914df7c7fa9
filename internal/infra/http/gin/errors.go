package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "signature/internal/app/handlers/availability"
	"signature/internal/app/services/auth"
	"signature/internal/app/validation"
	domainaccommodation "signature/internal/domain/accommodation"
	domainavailability "signature/internal/domain/availability"
	domainpack "signature/internal/domain/pack"
	domainpromo "signature/internal/domain/promo"
	domainreservation "signature/internal/domain/reservation"
	"signature/internal/domain/shared/daterange"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

var (
	badRequest = []error{
		validation.ErrInvalidInput,
		daterange.ErrInvalidRange,
		daterange.ErrInvalidDate,
		domainreservation.ErrInvalidDates,
		domainreservation.ErrInvalidGuests,
		domainreservation.ErrCapacityExceeded,
		domainreservation.ErrInvalidContact,
		domainreservation.ErrInvalidPaymentMethod,
		domainaccommodation.ErrInvalidPrice,
		domainaccommodation.ErrInvalidRate,
		domainaccommodation.ErrInvalidCapacity,
		domainpromo.ErrEmptyCode,
		domainpromo.ErrInvalidDiscount,
		domainpack.ErrNameRequired,
		domainpack.ErrInvalidContact,
		availabilityapp.ErrDuplicateDay,
	}
	notFound = []error{
		domainaccommodation.ErrNotFound,
		domainreservation.ErrNotFound,
		domainpromo.ErrNotFound,
		domainpack.ErrNotFound,
		domainpack.ErrRequestNotFound,
	}
	conflict = []error{
		domainavailability.ErrDatesUnavailable,
		domainreservation.ErrInvalidTransition,
		domainreservation.ErrPaymentRequiresConfirmation,
		domainreservation.ErrConcurrentUpdate,
		domainpromo.ErrDuplicateCode,
		domainpromo.ErrUsageLimitReached,
		domainpack.ErrInvalidTransition,
	}
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case isAny(err, badRequest):
		return http.StatusBadRequest
	case isAny(err, notFound):
		return http.StatusNotFound
	case isAny(err, conflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// handleError writes the error response. Server faults are logged and
// answered with a generic message.
func handleError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, errorResponse{Error: "internal error"})
		return
	}
	resp := errorResponse{Error: err.Error()}
	var verr *validation.Error
	if errors.As(err, &verr) {
		resp.Error = "invalid input"
		resp.Fields = make(map[string]string, len(verr.Fields))
		for _, f := range verr.Fields {
			resp.Fields[f.Field] = f.Rule
		}
	}
	c.JSON(status, resp)
}

func badRequestBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
