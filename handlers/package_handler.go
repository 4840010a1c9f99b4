package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/models"
)

type PackageRequest struct {
	Name         string  `json:"name" validate:"required,min=2"`
	Description  *string `json:"description,omitempty"`
	Type         string  `json:"type" validate:"required,oneof=BUNDLE MONTHLY"`
	ClassCount   *int    `json:"class_count" validate:"omitempty,min=1"`
	DurationDays *int    `json:"duration_days" validate:"omitempty,min=1"`
	Price        int     `json:"price" validate:"min=0"`
}

func CreatePackage(c *fiber.Ctx) error {
	userID := currentUserID(c)

	orgID, err := uuid.Parse(c.Params("orgId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
	}
	if _, err := staffMembership(userID, orgID, models.MembershipRoleOwner, models.MembershipRoleAdmin); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req PackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// A bundle is a credit count, a monthly pass is a validity window; each
	// type carries exactly its own field.
	if req.Type == models.PackageTypeBundle && req.ClassCount == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "class_count is required for BUNDLE packages"})
	}
	if req.Type == models.PackageTypeMonthly && req.DurationDays == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_days is required for MONTHLY packages"})
	}

	pkg := models.Package{
		OrgID:       orgID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Price:       req.Price,
	}
	if req.Type == models.PackageTypeBundle {
		pkg.ClassCount = req.ClassCount
	} else {
		pkg.DurationDays = req.DurationDays
	}

	if err := database.DB.Create(&pkg).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create package"})
	}

	return c.Status(fiber.StatusCreated).JSON(pkg)
}

func ListPackages(c *fiber.Ctx) error {
	userID := currentUserID(c)

	orgID, err := uuid.Parse(c.Params("orgId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
	}
	if _, err := staffMembership(userID, orgID,
		models.MembershipRoleOwner, models.MembershipRoleAdmin, models.MembershipRoleInstructor); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	query := database.DB.Where("org_id = ?", orgID)
	switch c.Query("is_active") {
	case "true":
		query = query.Where("is_active = ?", true)
	case "false":
		query = query.Where("is_active = ?", false)
	}

	var pkgs []models.Package
	query.Order("created_at desc").Find(&pkgs)

	return c.JSON(pkgs)
}

func DeactivatePackage(c *fiber.Ctx) error {
	userID := currentUserID(c)

	orgID, err := uuid.Parse(c.Params("orgId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
	}
	if _, err := staffMembership(userID, orgID, models.MembershipRoleOwner, models.MembershipRoleAdmin); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	result := database.DB.Model(&models.Package{}).
		Where("id = ? AND org_id = ?", c.Params("packageId"), orgID).
		Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate package"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Package not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListOrgPackages is the public storefront for an org's active packages.
func ListOrgPackages(c *fiber.Ctx) error {
	var org models.Organization
	if err := database.DB.Where("slug = ?", c.Params("slug")).First(&org).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Organization not found"})
	}

	var pkgs []models.Package
	database.DB.
		Where("org_id = ? AND is_active = ?", org.ID, true).
		Order("price asc").
		Find(&pkgs)

	return c.JSON(pkgs)
}
