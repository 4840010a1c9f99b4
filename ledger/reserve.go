package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiobook/studiobook/models"
)

// ReserveSeat books one seat on a class instance for the given user.
//
// The capacity check, the entitlement debit and the booking insert run as one
// transaction holding a write lock on the instance row, so two racing
// requests for the last seat cannot both get in. When the user holds a valid
// entitlement it funds the booking (bundles lose one credit, monthly passes
// are not decremented); otherwise the booking is still confirmed with no
// payment attached and billing happens later through checkout.
func ReserveSeat(db *gorm.DB, userID, instanceID uuid.UUID, now time.Time) (*models.Booking, error) {
	var booking models.Booking

	err := runInTx(db, func(tx *gorm.DB) error {
		var instance models.ClassInstance
		if err := forUpdate(tx, "").First(&instance, "id = ?", instanceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInstanceNotFound
			}
			return err
		}

		if instance.Status != models.InstanceStatusScheduled {
			return ErrInstanceNotBookable
		}
		if !instance.Date.After(now) {
			return ErrInstanceInPast
		}

		var existing int64
		if err := tx.Model(&models.Booking{}).
			Where("user_id = ? AND class_instance_id = ?", userID, instanceID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyBooked
		}

		var confirmed int64
		if err := tx.Model(&models.Booking{}).
			Where("class_instance_id = ? AND status = ?", instanceID, models.BookingStatusConfirmed).
			Count(&confirmed).Error; err != nil {
			return err
		}
		if confirmed >= int64(instance.Capacity) {
			return ErrClassFull
		}

		entitlement, err := findValidEntitlementForUpdate(tx, userID, instance.OrgID, now)
		if err != nil {
			return err
		}

		booking = models.Booking{
			ID:              uuid.New(),
			UserID:          userID,
			ClassInstanceID: instanceID,
			Status:          models.BookingStatusConfirmed,
		}

		if entitlement != nil {
			booking.PaymentID = &entitlement.PaymentID

			if entitlement.RemainingClasses != nil && *entitlement.RemainingClasses > 0 {
				res := tx.Model(&models.UserPackage{}).
					Where("id = ? AND remaining_classes > 0", entitlement.ID).
					Update("remaining_classes", gorm.Expr("remaining_classes - 1"))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					// Balance drained between lookup and debit; retry the
					// whole reservation so another entitlement (or none)
					// is picked.
					return errTxConflict
				}
			}
		}

		if err := tx.Create(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyBooked
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}
