package api

import (
	"log"
	stdhttp "net/http"

	intconfig "busbooking/internal/config"
	h "busbooking/internal/http/handlers"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, a *h.API) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	api.Use(middleware.AuthOptional(env.JWTSecret))
	{
		api.GET("/health", a.Health)
		api.GET("/db-check", a.DBCheck)
		api.GET("/routes", h.Routes)

		// Journeys
		journeys := api.Group("/journeys")
		journeys.GET("", a.SearchJourneys)
		journeys.GET("/:id", a.GetJourney)

		// Booking sessions
		sessions := api.Group("/sessions")
		sessions.POST("", a.CreateSession)
		sessions.GET("/:id", a.GetSession)
		sessions.DELETE("/:id", a.CloseSession)
		sessions.POST("/:id/seats", a.ToggleSeat)
		sessions.DELETE("/:id/seats/:seatId", a.DeselectSeat)
		sessions.PUT("/:id/auto-refresh", a.SetAutoRefresh)
		sessions.POST("/:id/steps/next", a.NextStep)
		sessions.POST("/:id/steps/:step", a.GoToStep)
		sessions.PUT("/:id/points", a.SetPoints)
		sessions.POST("/:id/checkout", a.CheckoutSession)

		// Booking history & documents
		bookings := api.Group("/bookings")
		bookings.GET("", a.ListBookings)
		bookings.GET("/:ref", a.GetBooking)
		bookings.GET("/:ref/e-ticket", a.BookingETicket)
		bookings.GET("/:ref/invoice", a.BookingInvoice)

		// Admin
		admin := api.Group("/admin", middleware.RequireRoles("admin", "owner"))
		admin.POST("/buses/:busId/seats", a.PushSeats)
	}

	h.SetRouter(r)
	return r
}
