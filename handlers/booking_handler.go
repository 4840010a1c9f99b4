package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/ledger"
	"github.com/studiobook/studiobook/models"
	"github.com/studiobook/studiobook/notifications"
)

type CreateBookingRequest struct {
	ClassInstanceID string `json:"class_instance_id" validate:"required,uuid"`
}

func CreateBooking(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	instanceID, _ := uuid.Parse(req.ClassInstanceID)

	booking, err := ledger.ReserveSeat(database.DB, userID, instanceID, time.Now())
	if err != nil {
		return ledgerError(c, err)
	}

	go sendBookingConfirmedEmail(userID, booking)

	return c.Status(fiber.StatusCreated).JSON(booking)
}

func CancelBooking(c *fiber.Ctx) error {
	userID := currentUserID(c)

	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID format"})
	}

	booking, err := ledger.CancelBooking(database.DB, bookingID, userID, time.Now())
	if err != nil {
		return ledgerError(c, err)
	}

	return c.JSON(booking)
}

func GetMyBookings(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var bookings []models.Booking
	err := database.DB.
		Preload("ClassInstance.Template").
		Where("bookings.user_id = ?", userID).
		Joins("JOIN class_instances ON bookings.class_instance_id = class_instances.id").
		Order("class_instances.date desc").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(bookings)
}

// GetClassAvailability is public: it backs the "spots left" display.
func GetClassAvailability(c *fiber.Ctx) error {
	instanceID, err := uuid.Parse(c.Params("instanceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid class instance ID format"})
	}

	var instance models.ClassInstance
	if err := database.DB.First(&instance, "id = ?", instanceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class instance not found"})
	}

	confirmed, err := ledger.ConfirmedCount(database.DB, instanceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	spotsLeft := int64(instance.Capacity) - confirmed
	if spotsLeft < 0 {
		spotsLeft = 0
	}

	return c.JSON(fiber.Map{
		"class_instance_id": instance.ID,
		"capacity":          instance.Capacity,
		"confirmed":         confirmed,
		"spots_left":        spotsLeft,
	})
}

// ledgerError maps ledger sentinel errors onto HTTP statuses; everything the
// ledger does not claim is a 500.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInstanceNotFound), errors.Is(err, ledger.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrServiceUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrInstanceNotBookable),
		errors.Is(err, ledger.ErrInstanceInPast),
		errors.Is(err, ledger.ErrAlreadyBooked),
		errors.Is(err, ledger.ErrClassFull),
		errors.Is(err, ledger.ErrAlreadyCancelled),
		errors.Is(err, ledger.ErrNotCancellable),
		errors.Is(err, ledger.ErrTooLate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "An unexpected error occurred"})
}

func sendBookingConfirmedEmail(userID uuid.UUID, booking *models.Booking) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return
	}
	var instance models.ClassInstance
	if err := database.DB.Preload("Template").First(&instance, "id = ?", booking.ClassInstanceID).Error; err != nil {
		return
	}
	notifications.SendEmail(user.Name, user.Email, "Your Booking is Confirmed!",
		"<h1>Booking Confirmed</h1><p>Your spot in "+instance.Template.Name+" on "+
			instance.Date.Format("Mon, 02 Jan 2006 15:04")+" is confirmed.</p>")
}
