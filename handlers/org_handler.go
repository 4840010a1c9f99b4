package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	config "github.com/studiobook/studiobook/configs"
	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/models"
	"github.com/studiobook/studiobook/payments"
	"github.com/studiobook/studiobook/utils"
)

type CreateOrgRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Slug        *string `json:"slug,omitempty" validate:"omitempty,min=3,lowercase"`
	Description *string `json:"description,omitempty"`
}

type UpdateOrgSettingsRequest struct {
	Name              string `json:"name" validate:"required,min=1,max=100"`
	CancellationHours *int   `json:"cancellation_hours" validate:"required,min=0"`
	DefaultCapacity   int    `json:"default_capacity" validate:"required,min=1"`
}

// staffMembership returns the caller's ACTIVE membership in the org if its
// role is one of the given ones.
func staffMembership(userID, orgID uuid.UUID, roles ...string) (*models.Membership, error) {
	var membership models.Membership
	err := database.DB.
		Where("user_id = ? AND org_id = ? AND status = ? AND role IN ?",
			userID, orgID, "ACTIVE", roles).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func CreateOrganization(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req CreateOrgRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var org models.Organization
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		slug := ""
		if req.Slug != nil {
			slug = utils.Slugify(*req.Slug)
			var taken int64
			tx.Model(&models.Organization{}).Where("slug = ?", slug).Count(&taken)
			if taken > 0 {
				return errors.New("an organization with this slug already exists")
			}
		} else {
			generated, err := utils.GenerateUniqueOrgSlug(tx, req.Name)
			if err != nil {
				return err
			}
			slug = generated
		}

		org = models.Organization{
			Name:        req.Name,
			Slug:        slug,
			Description: req.Description,
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		owner := models.Membership{
			UserID: userID,
			OrgID:  org.ID,
			Role:   models.MembershipRoleOwner,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(org)
}

func UpdateOrgSettings(c *fiber.Ctx) error {
	userID := currentUserID(c)

	orgID, err := uuid.Parse(c.Params("orgId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
	}

	if _, err := staffMembership(userID, orgID, models.MembershipRoleOwner, models.MembershipRoleAdmin); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only owners and admins can update settings"})
	}

	var req UpdateOrgSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var org models.Organization
	if err := database.DB.First(&org, "id = ?", orgID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Organization not found"})
	}

	org.Name = req.Name
	org.CancellationHours = *req.CancellationHours
	org.DefaultCapacity = req.DefaultCapacity
	if err := database.DB.Save(&org).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update settings"})
	}

	return c.JSON(org)
}

// ListOrganizations is the platform-admin view of every org.
func ListOrganizations(c *fiber.Ctx) error {
	var orgs []models.Organization
	if err := database.DB.Order("created_at desc").Find(&orgs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(orgs)
}

// ConnectStripe provisions (once) a connected account for the org and
// returns a fresh onboarding link. Owner only.
func ConnectStripe(c *fiber.Ctx) error {
	userID := currentUserID(c)

	orgID, err := uuid.Parse(c.Params("orgId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid org ID format"})
	}

	if _, err := staffMembership(userID, orgID, models.MembershipRoleOwner); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the organization owner can connect Stripe"})
	}

	var org models.Organization
	if err := database.DB.First(&org, "id = ?", orgID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Organization not found"})
	}

	if org.StripeAccountID == nil {
		account, err := payments.CreateConnectAccount(org.ID.String())
		if err != nil {
			log.Printf("🔥 Stripe Connect account creation failed for org %s: %v", org.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create Stripe account"})
		}
		org.StripeAccountID = &account.ID
		if err := database.DB.Save(&org).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save Stripe account"})
		}
	}

	link, err := payments.CreateAccountLink(*org.StripeAccountID, config.Config("APP_BASE_URL")+"/admin")
	if err != nil {
		log.Printf("🔥 Stripe account link creation failed for org %s: %v", org.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create Stripe Connect link"})
	}

	return c.JSON(fiber.Map{"url": link.URL})
}
