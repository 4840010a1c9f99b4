package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studiobook/studiobook/handlers"
	"github.com/studiobook/studiobook/middleware"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("", handlers.GetProfile)
	profile.Get("/packages", handlers.GetMyPackages)
}
