package routes

import (
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/appstate"
	"github.com/Sign-up-admin/safe-room-sub007/internal/config"
	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/events"
	"github.com/Sign-up-admin/safe-room-sub007/internal/handlers"
	"github.com/Sign-up-admin/safe-room-sub007/internal/middleware"
	"github.com/Sign-up-admin/safe-room-sub007/internal/repository"
	"github.com/Sign-up-admin/safe-room-sub007/internal/services"
	paymentws "github.com/Sign-up-admin/safe-room-sub007/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

type Dependencies struct {
	Config      *config.Config
	CRUD        *crud.Service
	DB          repository.DBTX
	StateStore  appstate.Store
	Publisher   events.EventPublisher
	PaymentHub  *paymentws.Hub
	CSRFEnabled bool
}

func RegisterRoutes(app *fiber.App, deps Dependencies) error {
	cfg := deps.Config
	accountRepo := repository.NewAccountRepository(deps.DB)

	authHandler := handlers.NewAuthHandler(accountRepo, deps.StateStore, cfg.JWTSecret)
	moduleHandler := handlers.NewModuleHandler(deps.CRUD)

	recommendationService := services.NewRecommendationService(deps.CRUD)
	coachDiscoveryHandler := handlers.NewCoachDiscoveryHandler(deps.CRUD, recommendationService)
	pricingHandler := handlers.NewPricingHandler(services.NewPricingService(deps.CRUD))
	bookingHandler := handlers.NewBookingHandler(services.NewBookingConflictService(deps.CRUD), deps.StateStore)
	topicHandler := handlers.NewTopicHandler(services.NewHotTopicService(deps.CRUD))
	paymentPoller := services.NewPaymentPoller(deps.CRUD, deps.Publisher, services.PollerConfig{
		Interval:    cfg.PaymentPollInterval,
		Timeout:     cfg.PaymentPollTimeout,
		MaxAttempts: cfg.PaymentPollMaxAttempts,
	})
	paymentHandler := handlers.NewPaymentHandler(paymentPoller, deps.CRUD)

	csrfProtect := func(c *fiber.Ctx) error { return c.Next() }
	if deps.CSRFEnabled {
		csrfProtect = csrf.New(csrf.Config{
			KeyLookup:      "header:X-CSRF-Token",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			Expiration:     time.Hour,
			ContextKey:     handlers.CSRFContextKey,
		})
	}
	authRequired := middleware.AuthRequired(cfg.JWTSecret)

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Get("/session", authRequired, authHandler.Session)
	users.Post("/logout", authRequired, authHandler.Logout)
	users.Get("/csrf", csrfProtect, authHandler.CSRFToken)

	if deps.PaymentHub != nil {
		streamHandler := handlers.NewPaymentStreamHandler(deps.PaymentHub, cfg.JWTSecret)
		api.Use("/v1/ws/payments", streamHandler.WebSocketAuth)
		api.Get("/v1/ws/payments", websocket.New(streamHandler.HandleWebSocket))
	}

	console := api.Group("/v1", authRequired)

	coaches := console.Group("/coaches")
	coaches.Get("", coachDiscoveryHandler.ListCoaches)
	coaches.Get("/recommended", coachDiscoveryHandler.GetRecommendedCoaches)
	coaches.Get("/:id", coachDiscoveryHandler.GetCoachDetail)

	pricing := console.Group("/pricing")
	pricing.Get("/packages", pricingHandler.ListPackages)
	pricing.Get("/coupons", pricingHandler.ListCoupons)
	pricing.Post("/quote", pricingHandler.Quote)

	console.Get("/bookings/conflicts", bookingHandler.CheckConflicts)
	console.Get("/topics/hot", topicHandler.GetHotTopics)
	console.Get("/payments/:id/wait", paymentHandler.WaitForPayment)

	modules := api.Group("/:module")
	modules.Get("/list", moduleHandler.List)
	modules.Get("/info/:id", moduleHandler.Info)
	modules.Post("/save", authRequired, csrfProtect, moduleHandler.Save)
	modules.Post("/update", authRequired, csrfProtect, moduleHandler.Update)
	modules.Post("/delete", authRequired, csrfProtect, middleware.RequireRole("admin", "coach"), moduleHandler.Delete)

	if cfg.IsDevelopment() {
		registerDocsRoutes(app)
	}
	return nil
}
