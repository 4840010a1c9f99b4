package ledger

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studiobook/studiobook/models"
)

// CompletedPayment is a payment-completion notification from the external
// processor, already authenticated by the webhook layer. Delivery is
// at-least-once; EventID is the dedup key. Exactly one of ClassInstanceID and
// PackageID is set.
type CompletedPayment struct {
	EventID         string
	UserID          uuid.UUID
	OrgID           uuid.UUID
	Amount          int
	PaymentIntentID *string
	ClassInstanceID *uuid.UUID
	PackageID       *uuid.UUID
}

// FulfillPayment converges a completed-payment event to a consistent ledger
// state exactly once. Redelivery of the same EventID is a no-op returning the
// previously recorded Payment: the unique index on payments.stripe_event_id
// makes the create-if-absent race-safe against concurrent deliveries.
//
// If the referenced class instance or package has vanished, the money was
// still received: the Payment is recorded COMPLETED, the case is logged for
// reconciliation, and no Booking or UserPackage is created.
func FulfillPayment(db *gorm.DB, ev CompletedPayment) (*models.Payment, error) {
	if ev.EventID == "" {
		return nil, errors.New("payment event is missing an event id")
	}
	if ev.ClassInstanceID == nil && ev.PackageID == nil {
		return nil, errors.New("payment event has no class instance or package target")
	}

	if existing, err := paymentByEventID(db, ev.EventID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	eventID := ev.EventID
	payment := models.Payment{
		ID:              uuid.New(),
		UserID:          ev.UserID,
		OrgID:           ev.OrgID,
		Amount:          ev.Amount,
		Status:          models.PaymentStatusCompleted,
		StripeEventID:   &eventID,
		StripePaymentID: ev.PaymentIntentID,
	}

	err := runInTx(db, func(tx *gorm.DB) error {
		if ev.ClassInstanceID != nil {
			payment.Type = models.PaymentTypeSingleClass
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			return fulfillSingleClass(tx, ev, payment.ID)
		}

		payment.Type = models.PaymentTypePackage
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return fulfillPackage(tx, ev, payment.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent delivery of the same event won the insert; its
			// side effects are already in place.
			if existing, ferr := paymentByEventID(db, ev.EventID); ferr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	return &payment, nil
}

func fulfillSingleClass(tx *gorm.DB, ev CompletedPayment, paymentID uuid.UUID) error {
	var instance models.ClassInstance
	if err := tx.First(&instance, "id = ?", *ev.ClassInstanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logReconciliation(ev, fmt.Sprintf("class instance %s no longer exists", *ev.ClassInstanceID))
			return nil
		}
		return err
	}

	booking := models.Booking{
		ID:              uuid.New(),
		UserID:          ev.UserID,
		ClassInstanceID: *ev.ClassInstanceID,
		Status:          models.BookingStatusConfirmed,
		PaymentID:       &paymentID,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "class_instance_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     models.BookingStatusConfirmed,
			"payment_id": paymentID,
			"updated_at": time.Now(),
		}),
	}).Create(&booking).Error
}

func fulfillPackage(tx *gorm.DB, ev CompletedPayment, paymentID uuid.UUID) error {
	var pkg models.Package
	if err := tx.First(&pkg, "id = ?", *ev.PackageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logReconciliation(ev, fmt.Sprintf("package %s no longer exists", *ev.PackageID))
			return nil
		}
		return err
	}

	now := time.Now()
	userPackage := models.UserPackage{
		ID:          uuid.New(),
		UserID:      ev.UserID,
		PackageID:   pkg.ID,
		PaymentID:   paymentID,
		PurchasedAt: now,
	}
	if pkg.Type == models.PackageTypeMonthly {
		if pkg.DurationDays != nil {
			expiresAt := now.Add(time.Duration(*pkg.DurationDays) * 24 * time.Hour)
			userPackage.ExpiresAt = &expiresAt
		}
	} else if pkg.ClassCount != nil {
		remaining := *pkg.ClassCount
		userPackage.RemainingClasses = &remaining
	}

	return tx.Create(&userPackage).Error
}

func paymentByEventID(db *gorm.DB, eventID string) (*models.Payment, error) {
	var payment models.Payment
	err := db.Where("stripe_event_id = ?", eventID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func logReconciliation(ev CompletedPayment, detail string) {
	log.Printf("🔥 RECONCILIATION: payment event %s (user %s, org %s, amount %d) recorded but not fulfilled: %s",
		ev.EventID, ev.UserID, ev.OrgID, ev.Amount, detail)
}
