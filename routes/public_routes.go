package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studiobook/studiobook/handlers"
)

// PublicRoutes is the unauthenticated storefront for an org's catalog.
func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/orgs/:slug/classes", handlers.ListOrgClasses)
	api.Get("/orgs/:slug/packages", handlers.ListOrgPackages)
}
