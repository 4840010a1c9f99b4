package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	config "github.com/studiobook/studiobook/configs"
	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/ledger"
	"github.com/studiobook/studiobook/models"
	"github.com/studiobook/studiobook/notifications"
	"github.com/studiobook/studiobook/payments"
)

// HandleStripeWebhook receives payment-completion events. Delivery is
// at-least-once: a verified, well-formed event must always be answered 200 or
// Stripe keeps redelivering, and FulfillPayment makes the redeliveries
// converge on the same ledger state.
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	err := payments.VerifyWebhookSignature(payload, c.Get("Stripe-Signature"),
		config.Config("STRIPE_WEBHOOK_SECRET"), time.Now())
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	event, err := payments.ParseWebhookEvent(payload)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	if event.Type != "checkout.session.completed" {
		return c.JSON(fiber.Map{"received": true})
	}

	session := event.Data.Object
	userID, uerr := uuid.Parse(session.Metadata["userId"])
	orgID, oerr := uuid.Parse(session.Metadata["orgId"])
	if uerr != nil || oerr != nil {
		log.Printf("🔥 Webhook event %s is missing userId or orgId metadata", event.ID)
		return c.JSON(fiber.Map{"received": true})
	}

	completed := ledger.CompletedPayment{
		EventID:         event.ID,
		UserID:          userID,
		OrgID:           orgID,
		Amount:          session.AmountTotal,
		PaymentIntentID: session.PaymentIntentID(),
	}
	if raw := session.Metadata["classInstanceId"]; raw != "" {
		if instanceID, err := uuid.Parse(raw); err == nil {
			completed.ClassInstanceID = &instanceID
		}
	}
	if raw := session.Metadata["packageId"]; raw != "" {
		if packageID, err := uuid.Parse(raw); err == nil {
			completed.PackageID = &packageID
		}
	}
	if completed.ClassInstanceID == nil && completed.PackageID == nil {
		// A malformed event stays malformed; acknowledge it so Stripe stops
		// redelivering, same as missing identity metadata above.
		log.Printf("🔥 Webhook event %s has no usable classInstanceId or packageId metadata", event.ID)
		return c.JSON(fiber.Map{"received": true})
	}

	payment, err := ledger.FulfillPayment(database.DB, completed)
	if err != nil {
		if errors.Is(err, ledger.ErrServiceUnavailable) {
			// Let Stripe redeliver.
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("🔥 CRITICAL: Error processing webhook event %s: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
	}

	go sendPaymentConfirmedEmail(payment)

	return c.JSON(fiber.Map{"received": true})
}

func sendPaymentConfirmedEmail(payment *models.Payment) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", payment.UserID).Error; err != nil {
		return
	}
	if payment.Type == models.PaymentTypePackage {
		notifications.SendEmail(user.Name, user.Email, "Package Purchase Confirmed!",
			"<h1>Success!</h1><p>Your package purchase is complete. You can now use it to book classes.</p>")
		return
	}
	notifications.SendEmail(user.Name, user.Email, "Your Booking is Confirmed!",
		"<h1>Booking Confirmed</h1><p>Your payment was successful and your class is confirmed.</p>")
}
