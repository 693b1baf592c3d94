package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"github.com/example/botica/internal/config"
	"github.com/example/botica/internal/handlers"
	"github.com/example/botica/internal/middleware"
	"github.com/example/botica/internal/ws"
)

// Register wires up all HTTP routes and the order events endpoint.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, hub *ws.Hub) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	couponHandler := handlers.NewCouponHandler(db)
	orderHandler := handlers.NewOrderHandler(db, hub)
	profileHandler := handlers.NewProfileHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Catalog routes
	api.Get("/branches", catalogHandler.ListBranches)
	api.Get("/categories", catalogHandler.ListCategories)
	api.Get("/products", catalogHandler.ListProducts)
	api.Get("/products/:id", catalogHandler.GetProduct)

	// Authenticated routes
	authed := api.Group("", middleware.AuthMiddleware(cfg))

	authed.Get("/profile", profileHandler.GetProfile)
	authed.Get("/addresses", profileHandler.ListAddresses)
	authed.Post("/addresses", profileHandler.CreateAddress)

	authed.Get("/coupons/:code", couponHandler.Validate)

	orders := authed.Group("/orders")
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Patch("/:id/status", middleware.CourierOnly(), orderHandler.UpdateStatus)

	// Live order events. The handshake is authenticated like any other
	// request; the hub checks room access per order.
	app.Use("/ws/orders", middleware.AuthMiddleware(cfg), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/orders", websocket.New(hub.Handler()))
}
