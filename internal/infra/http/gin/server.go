package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"signature/internal/infra/config"
	"signature/internal/infra/obs"
)

type Handlers struct {
	Accommodations *AccommodationHandler
	Reservations   *ReservationHandler
	Availability   *AvailabilityHandler
	Promos         *PromoHandler
	Packs          *PackHandler
	Admin          *AdminHandler
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Accommodations != nil {
		api.GET("/accommodations", h.Accommodations.List)
		api.GET("/accommodations/:id", h.Accommodations.Get)
	}
	if h.Reservations != nil {
		api.POST("/reservations", h.Reservations.Create)
	}
	if h.Availability != nil {
		api.GET("/accommodations/:id/availability", h.Availability.Check)
		api.GET("/accommodations/:id/unavailable-dates", h.Availability.Unavailable)
	}
	if h.Promos != nil {
		api.POST("/promo-codes/validate", h.Promos.Validate)
	}
	if h.Packs != nil {
		api.GET("/packs", h.Packs.List)
		api.POST("/pack-requests", h.Packs.Request)
	}

	admin := api.Group("/admin")
	if h.Admin != nil {
		if h.Admin.Auth != nil {
			admin.POST("/login", h.Admin.Login)
			admin.POST("/logout", h.Admin.Logout)
		}
		admin.POST("/accommodations", h.Admin.UpsertAccommodation)
		admin.PUT("/accommodations/:id", h.Admin.UpsertAccommodation)
	}
	if h.Accommodations != nil {
		admin.GET("/accommodations", h.Accommodations.AdminList)
		admin.GET("/accommodations/:id", h.Accommodations.AdminGet)
	}
	if h.Reservations != nil {
		admin.GET("/reservations", h.Reservations.List)
		admin.GET("/reservations/:id", h.Reservations.Get)
		admin.POST("/reservations/:id/confirm", h.Reservations.Confirm)
		admin.POST("/reservations/:id/cancel", h.Reservations.Cancel)
		admin.POST("/reservations/:id/payment", h.Reservations.Payment)
		admin.GET("/stats", h.Reservations.Stats)
	}
	if h.Availability != nil {
		admin.PUT("/accommodations/:id/availability", h.Availability.Update)
	}
	if h.Promos != nil {
		admin.GET("/promo-codes", h.Promos.List)
		admin.POST("/promo-codes", h.Promos.Create)
		admin.POST("/promo-codes/:id/toggle", h.Promos.Toggle)
		admin.DELETE("/promo-codes/:id", h.Promos.Delete)
	}
	if h.Packs != nil {
		admin.POST("/packs", h.Packs.Upsert)
		admin.PUT("/packs/:id", h.Packs.Upsert)
		admin.GET("/pack-requests", h.Packs.ListRequests)
		admin.POST("/pack-requests/:id/status", h.Packs.UpdateRequestStatus)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
