package routes

import (
	"time"

	"marketplace/handlers"
	"marketplace/middleware"
	"marketplace/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterServiceRequestRoutes registers the request lifecycle, proposal,
// booking and checkout endpoints.
func RegisterServiceRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/service-requests")
	api.Use(auth)
	{
		api.POST("", middleware.RequireRole(models.RoleBuyer), hb.Requests.Create)
		api.GET("", hb.Requests.Browse)
		api.GET("/bookings/my-bookings", middleware.RequireRole(models.RoleSeller), hb.Bookings.ListMine)
		api.GET("/:id", hb.Requests.Get)
		api.POST("/:id/complete", hb.Requests.Complete)
		api.DELETE("/:id", hb.Requests.Delete)

		api.POST("/:id/proposals", middleware.RequireRole(models.RoleSeller), hb.Proposals.Submit)
		api.GET("/:id/proposals", hb.Proposals.List)
		api.POST("/:id/proposals/:pid/accept", hb.Proposals.Accept)
		api.POST("/:id/proposals/:pid/reject", hb.Proposals.Reject)

		api.POST("/:id/book", middleware.RequireRole(models.RoleSeller), hb.Bookings.Book)
		api.GET("/:id/bookings", hb.Bookings.ListForRequest)

		api.POST("/:id/checkout", hb.Payments.Checkout)
	}

	proposals := r.Group("/api/proposals")
	proposals.Use(auth)
	{
		proposals.GET("/mine", middleware.RequireRole(models.RoleSeller), hb.Proposals.ListMine)
	}
}

// RegisterFreelancerRoutes registers profile endpoints.
func RegisterFreelancerRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api/freelancers")
	api.Use(auth)
	{
		api.POST("/profile", middleware.RequireRole(models.RoleSeller), hb.Freelancers.Upsert)
		api.GET("/profile", hb.Freelancers.GetMine)
		api.DELETE("/profile", hb.Freelancers.Delete)
		api.GET("/:userId", hb.Freelancers.GetByUserID)
		api.GET("", hb.Freelancers.Search)
	}
}

// RegisterNotificationRoutes registers the inbox and device token endpoints.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	api := r.Group("/api")
	api.Use(auth)
	{
		api.GET("/notifications", hb.Notifications.List)
		api.PUT("/notifications/:id/read", hb.Notifications.MarkRead)
		api.PUT("/devices/fcm-token", hb.Notifications.RegisterDevice)
	}
}

// RegisterPaymentRoutes registers the Stripe webhook. It carries no JWT.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/payments/stripe/webhook", hb.Payments.Webhook)
}

// RegisterHealthRoutes registers health and metrics endpoints.
func RegisterHealthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, jwtSecret []byte) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	auth := middleware.JWTAuth(jwtSecret)
	RegisterHealthRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterServiceRequestRoutes(r, hb, auth)
	RegisterFreelancerRoutes(r, hb, auth)
	RegisterNotificationRoutes(r, hb, auth)
}
