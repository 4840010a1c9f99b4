package handlers

import (
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	config "github.com/studiobook/studiobook/configs"
	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/models"
	"github.com/studiobook/studiobook/payments"
)

const defaultCommissionRate = 0.05

type CheckoutRequest struct {
	ClassInstanceID *string `json:"class_instance_id,omitempty" validate:"omitempty,uuid"`
	PackageID       *string `json:"package_id,omitempty" validate:"omitempty,uuid"`
}

// CreateCheckout opens a Stripe Checkout session for a single class or a
// package, payable to the org's connected account minus the platform
// commission. The webhook finishes the job when the payment completes.
func CreateCheckout(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.ClassInstanceID == nil && req.PackageID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Either class_instance_id or package_id is required"})
	}

	var amount int
	var productName string
	var org models.Organization
	metadata := map[string]string{"userId": userID.String()}

	if req.ClassInstanceID != nil {
		instanceID, _ := uuid.Parse(*req.ClassInstanceID)
		var instance models.ClassInstance
		if err := database.DB.Preload("Template").Preload("Organization").First(&instance, "id = ?", instanceID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class instance not found"})
		}
		amount = instance.Template.Price
		productName = instance.Template.Name
		org = instance.Organization
		metadata["classInstanceId"] = instance.ID.String()
	} else {
		packageID, _ := uuid.Parse(*req.PackageID)
		var pkg models.Package
		if err := database.DB.Preload("Organization").First(&pkg, "id = ?", packageID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Package not found"})
		}
		amount = pkg.Price
		productName = pkg.Name
		org = pkg.Organization
		metadata["packageId"] = pkg.ID.String()
	}

	if org.StripeAccountID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Organization has not connected Stripe"})
	}
	metadata["orgId"] = org.ID.String()

	rate := defaultCommissionRate
	if configured, err := strconv.ParseFloat(config.Config("PLATFORM_COMMISSION_RATE"), 64); err == nil && configured > 0 {
		rate = configured
	}
	fee := int(math.Round(float64(amount) * rate))

	base := config.Config("APP_BASE_URL")
	session, err := payments.CreateCheckoutSession(payments.CheckoutParams{
		ProductName:    productName,
		Amount:         amount,
		ApplicationFee: fee,
		ConnectedAcct:  *org.StripeAccountID,
		SuccessURL:     fmt.Sprintf("%s/%s?checkout=success", base, org.Slug),
		CancelURL:      fmt.Sprintf("%s/%s?checkout=cancelled", base, org.Slug),
		Metadata:       metadata,
	})
	if err != nil {
		log.Printf("🔥 Stripe Checkout session creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}

	return c.JSON(fiber.Map{"url": session.URL})
}
