package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studiobook/studiobook/handlers"
	"github.com/studiobook/studiobook/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("", handlers.CreateBooking)
	booking.Post("/:bookingId/cancel", handlers.CancelBooking)

	// Remaining-spots display, no auth needed.
	api.Get("/classes/:instanceId/availability", handlers.GetClassAvailability)
}
