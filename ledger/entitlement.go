package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiobook/studiobook/models"
)

// validEntitlementScope narrows user_packages to entitlements that can fund a
// booking in the given org right now: a bundle with credits left, or a
// monthly pass that has not expired yet.
func validEntitlementScope(db *gorm.DB, userID, orgID uuid.UUID, now time.Time) *gorm.DB {
	return db.Model(&models.UserPackage{}).
		Select("user_packages.*").
		Joins("JOIN packages ON packages.id = user_packages.package_id").
		Where("user_packages.user_id = ? AND packages.org_id = ?", userID, orgID).
		Where("user_packages.remaining_classes > 0 OR (packages.type = ? AND user_packages.expires_at > ?)",
			models.PackageTypeMonthly, now)
}

// findValidEntitlementForUpdate picks the entitlement a reservation will
// consume, locking the row for the rest of the transaction. Soonest-to-expire
// passes go first so a bundle is not burned while a monthly pass is ticking
// away; among bundles, oldest purchase wins.
func findValidEntitlementForUpdate(tx *gorm.DB, userID, orgID uuid.UUID, now time.Time) (*models.UserPackage, error) {
	var entitlement models.UserPackage
	err := forUpdate(validEntitlementScope(tx, userID, orgID, now), "user_packages").
		Order("user_packages.expires_at IS NULL, user_packages.expires_at ASC, user_packages.purchased_at ASC").
		First(&entitlement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entitlement, nil
}

// ValidEntitlements lists a user's currently usable entitlements in an org,
// newest purchase first. Used by the profile surface to show balances.
func ValidEntitlements(db *gorm.DB, userID, orgID uuid.UUID, now time.Time) ([]models.UserPackage, error) {
	var entitlements []models.UserPackage
	err := validEntitlementScope(db, userID, orgID, now).
		Preload("Package").
		Order("user_packages.purchased_at DESC").
		Find(&entitlements).Error
	return entitlements, err
}

// ValidEntitlementsForUser lists a user's usable entitlements across every
// org they belong to.
func ValidEntitlementsForUser(db *gorm.DB, userID uuid.UUID, now time.Time) ([]models.UserPackage, error) {
	var entitlements []models.UserPackage
	err := db.Model(&models.UserPackage{}).
		Select("user_packages.*").
		Joins("JOIN packages ON packages.id = user_packages.package_id").
		Where("user_packages.user_id = ?", userID).
		Where("user_packages.remaining_classes > 0 OR (packages.type = ? AND user_packages.expires_at > ?)",
			models.PackageTypeMonthly, now).
		Preload("Package").
		Order("user_packages.purchased_at DESC").
		Find(&entitlements).Error
	return entitlements, err
}

// ConfirmedCount reports how many confirmed bookings a class instance has,
// used to display remaining spots.
func ConfirmedCount(db *gorm.DB, instanceID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&models.Booking{}).
		Where("class_instance_id = ? AND status = ?", instanceID, models.BookingStatusConfirmed).
		Count(&count).Error
	return count, err
}
