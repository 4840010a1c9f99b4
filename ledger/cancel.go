package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiobook/studiobook/models"
)

// WithinCancellationWindow reports whether a cancellation at `now` is still
// inside the org's allowed window for a class starting at `classDate`.
func WithinCancellationWindow(classDate, now time.Time, cancellationHours int) bool {
	hoursUntilClass := classDate.Sub(now).Hours()
	return hoursUntilClass >= float64(cancellationHours)
}

// CancelBooking transitions a booking CONFIRMED -> CANCELLED on behalf of its
// owner, subject to the org's cancellation window. When the booking was
// funded by a bundle entitlement the credit goes back (+1); monthly passes
// and unfunded reservations refund nothing. The status transition and the
// refund commit together or not at all.
func CancelBooking(db *gorm.DB, bookingID, userID uuid.UUID, now time.Time) (*models.Booking, error) {
	var booking models.Booking

	err := runInTx(db, func(tx *gorm.DB) error {
		if err := forUpdate(tx, "").First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if booking.UserID != userID {
			return ErrForbidden
		}
		if booking.Status == models.BookingStatusCancelled {
			return ErrAlreadyCancelled
		}
		if booking.Status != models.BookingStatusConfirmed {
			return ErrNotCancellable
		}

		var instance models.ClassInstance
		if err := tx.Preload("Organization").First(&instance, "id = ?", booking.ClassInstanceID).Error; err != nil {
			return err
		}

		if !WithinCancellationWindow(instance.Date, now, instance.Organization.CancellationHours) {
			return ErrTooLate
		}

		booking.Status = models.BookingStatusCancelled
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}

		if booking.PaymentID != nil {
			res := tx.Model(&models.UserPackage{}).
				Where("payment_id = ? AND remaining_classes IS NOT NULL", *booking.PaymentID).
				Update("remaining_classes", gorm.Expr("remaining_classes + 1"))
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}
