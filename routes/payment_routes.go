package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studiobook/studiobook/handlers"
	"github.com/studiobook/studiobook/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Stripe calls this; authentication is the signature header.
	api.Post("/payments/webhook", handlers.HandleStripeWebhook)

	api.Post("/payments/checkout", middleware.Protected(), handlers.CreateCheckout)
}
