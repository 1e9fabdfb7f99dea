// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"cinetix/internal/analytics"
	"cinetix/internal/auth"
	"cinetix/internal/checkout"
	"cinetix/internal/discounts"
	"cinetix/internal/events"
	"cinetix/internal/memberships"
	"cinetix/internal/notifications"
	"cinetix/internal/orders"
	"cinetix/internal/products"
	"cinetix/internal/reservations"
	"cinetix/internal/shared/config"
	"cinetix/internal/shared/database"
	"cinetix/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.Producer

	// Services kept for cross-module dependency injection
	eventService       events.Service
	membershipService  memberships.Service
	productService     products.Service
	discountService    discounts.Service
	reservationService reservations.Service
	orderService       orders.Service
	notifier           notifications.Service
}

// NewRouter creates a new router instance. The producer may be nil when Kafka
// is disabled; notifications then fall back to direct delivery.
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.Producer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		authRepo := r.setupAuthRoutes(api)

		// Memberships feed the seat-tier gate, so they come before
		// reservations.
		r.setupMembershipRoutes(api, authRepo)
		r.setupEventRoutes(api)
		r.setupProductRoutes(api)
		r.setupDiscountRoutes(api)

		r.setupReservationRoutes(api)
		r.setupOrderRoutes(api)
		r.setupCheckoutRoutes(api)
		r.setupNotificationRoutes(api)
		r.setupAnalyticsRoutes(api)
	}
}

// Sweeper builds the background job that voids lapsed holds and cancels
// orphaned orders. Call after SetupRoutes has constructed the services.
func (r *Router) Sweeper() *reservations.Sweeper {
	return reservations.NewSweeper(r.reservationService, r.orderService, r.config.Reservation.SweepInterval)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cinetix-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cinetix-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) auth.Repository {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
	return authRepo
}

// setupMembershipRoutes configures membership tier routes
func (r *Router) setupMembershipRoutes(rg *gin.RouterGroup, authRepo auth.Repository) {
	membershipRepo := memberships.NewRepository(r.db.GetPostgreSQL())
	membershipService := memberships.NewService(membershipRepo, auth.NewUserMembershipAdapter(authRepo))
	membershipController := memberships.NewController(membershipService)

	r.membershipService = membershipService

	memberships.SetupMembershipRoutes(rg, membershipController)
}

// setupEventRoutes configures event and seat catalog routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	eventService := events.NewService(eventRepo)

	if r.db.Redis != nil {
		eventService.SetCacheService(cache.NewService(r.db.Redis))
	}

	r.eventService = eventService

	eventController := events.NewController(eventService)
	events.SetupEventRoutes(rg, eventController)
}

// setupProductRoutes configures concession product routes
func (r *Router) setupProductRoutes(rg *gin.RouterGroup) {
	productRepo := products.NewRepository(r.db.GetPostgreSQL())
	productService := products.NewService(productRepo)

	if r.db.Redis != nil {
		productService.SetCacheService(cache.NewService(r.db.Redis))
	}

	r.productService = productService

	productController := products.NewController(productService)
	products.SetupProductRoutes(rg, productController)
}

// setupDiscountRoutes configures discount code routes
func (r *Router) setupDiscountRoutes(rg *gin.RouterGroup) {
	discountRepo := discounts.NewRepository(r.db.GetPostgreSQL())
	discountService := discounts.NewService(discountRepo)

	r.discountService = discountService

	discountController := discounts.NewController(discountService)
	discounts.SetupDiscountRoutes(rg, discountController)
}

// setupReservationRoutes configures seat reservation routes
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	reservationRepo := reservations.NewRepository(r.db.GetPostgreSQL())

	var atomic reservations.SeatHolder
	if r.db.Redis != nil {
		atomic = reservations.NewAtomicRedisOperations(r.db.Redis)
	}

	reservationService := reservations.NewService(
		reservationRepo,
		atomic,
		r.eventService,
		r.membershipService,
		r.config.Reservation.HoldTTL,
	)

	r.reservationService = reservationService

	reservationController := reservations.NewController(reservationService)
	reservations.SetupReservationRoutes(rg, reservationController)
}

// setupOrderRoutes configures cart and order routes
func (r *Router) setupOrderRoutes(rg *gin.RouterGroup) {
	orderRepo := orders.NewRepository(r.db.GetPostgreSQL())
	orderService := orders.NewService(
		orderRepo,
		r.reservationService,
		r.eventService,
		r.productService,
		r.discountService,
	)

	r.orderService = orderService

	orderController := orders.NewController(orderService)
	orders.SetupOrderRoutes(rg, orderController)
}

// setupCheckoutRoutes configures payment checkout routes
func (r *Router) setupCheckoutRoutes(rg *gin.RouterGroup) {
	checkoutRepo := checkout.NewRepository(r.db.GetPostgreSQL())
	provider := checkout.NewProviderClient(r.config.Payment)

	checkoutService := checkout.NewService(
		checkoutRepo,
		provider,
		r.orderService,
		r.reservationService,
		r.notificationService(),
		r.config.Payment,
	)

	checkoutController := checkout.NewController(checkoutService)
	checkout.SetupCheckoutRoutes(rg, checkoutController)
}

// setupNotificationRoutes configures push subscription routes
func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	notificationController := notifications.NewController(r.notificationService())
	notifications.SetupNotificationRoutes(rg, notificationController)
}

// setupAnalyticsRoutes configures the admin sales dashboard routes
func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	analyticsRepo := analytics.NewRepository(r.db.GetPostgreSQL())
	analyticsService := analytics.NewService(analyticsRepo)

	if r.db.Redis != nil {
		analyticsService.SetCacheService(cache.NewService(r.db.Redis))
	}

	analyticsController := analytics.NewController(analyticsService)
	analytics.SetupAnalyticsRoutes(rg, analyticsController)
}

func (r *Router) notificationService() notifications.Service {
	if r.notifier == nil {
		notificationRepo := notifications.NewRepository(r.db.GetPostgreSQL())
		sender := notifications.NewHTTPPushSender(notificationRepo, nil)
		r.notifier = notifications.NewService(notificationRepo, r.producer, sender)
	}
	return r.notifier
}
