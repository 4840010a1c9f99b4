package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/ledger"
	"github.com/studiobook/studiobook/models"
)

func GetProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(user)
}

// GetMyPackages lists the caller's currently usable entitlements: bundles
// with credits left and unexpired monthly passes. Scope to one org with
// ?org_id=.
func GetMyPackages(c *fiber.Ctx) error {
	userID := currentUserID(c)
	now := time.Now()

	var entitlements []models.UserPackage
	var err error

	if orgParam := c.Query("org_id"); orgParam != "" {
		orgID, parseErr := uuid.Parse(orgParam)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
		}
		entitlements, err = ledger.ValidEntitlements(database.DB, userID, orgID, now)
	} else {
		entitlements, err = ledger.ValidEntitlementsForUser(database.DB, userID, now)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	type entitlementView struct {
		ID               uuid.UUID  `json:"id"`
		PackageName      string     `json:"package_name"`
		PackageType      string     `json:"package_type"`
		TotalClasses     *int       `json:"total_classes"`
		RemainingClasses *int       `json:"remaining_classes"`
		ExpiresAt        *time.Time `json:"expires_at"`
		PurchasedAt      time.Time  `json:"purchased_at"`
	}

	views := make([]entitlementView, 0, len(entitlements))
	for _, e := range entitlements {
		views = append(views, entitlementView{
			ID:               e.ID,
			PackageName:      e.Package.Name,
			PackageType:      e.Package.Type,
			TotalClasses:     e.Package.ClassCount,
			RemainingClasses: e.RemainingClasses,
			ExpiresAt:        e.ExpiresAt,
			PurchasedAt:      e.PurchasedAt,
		})
	}

	return c.JSON(views)
}
