package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/studiobook/studiobook/handlers"
	"github.com/studiobook/studiobook/middleware"
)

func OrgRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	orgs := api.Group("/organizations", middleware.Protected())
	orgs.Post("", handlers.CreateOrganization)
	orgs.Put("/:orgId/settings", handlers.UpdateOrgSettings)
	orgs.Post("/:orgId/stripe/connect", handlers.ConnectStripe)

	orgs.Post("/:orgId/classes", handlers.CreateClassTemplate)
	orgs.Get("/:orgId/classes", handlers.ListClassTemplates)
	orgs.Delete("/:orgId/classes/:templateId", handlers.DeactivateClassTemplate)
	orgs.Post("/:orgId/classes/generate", handlers.GenerateClassInstances)

	orgs.Post("/:orgId/packages", handlers.CreatePackage)
	orgs.Get("/:orgId/packages", handlers.ListPackages)
	orgs.Delete("/:orgId/packages/:packageId", handlers.DeactivatePackage)

	admin := api.Group("/admin", middleware.Protected(), middleware.SuperAdminRequired())
	admin.Get("/organizations", handlers.ListOrganizations)
}
