package ledger

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studiobook/studiobook/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// One in-memory database per test; pooling more connections would hand
	// each its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Membership{},
		&models.ClassTemplate{},
		&models.ClassInstance{},
		&models.Package{},
		&models.Payment{},
		&models.UserPackage{},
		&models.Booking{},
	))
	return db
}

func createOrg(t *testing.T, db *gorm.DB, cancellationHours int) models.Organization {
	t.Helper()
	org := models.Organization{
		Name:              "Flow Studio",
		Slug:              "flow-studio-" + uuid.NewString()[:8],
		CancellationHours: cancellationHours,
		DefaultCapacity:   10,
	}
	require.NoError(t, db.Create(&org).Error)
	return org
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Name: "Test User", Email: email, Password: "x", Role: "member"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createInstance(t *testing.T, db *gorm.DB, org models.Organization, capacity int, date time.Time) models.ClassInstance {
	t.Helper()
	template := models.ClassTemplate{
		OrgID:        org.ID,
		InstructorID: uuid.New(),
		Name:         "Morning Yoga",
		Time:         "09:00",
		Duration:     60,
		Capacity:     capacity,
		Price:        1500,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&template).Error)

	instance := models.ClassInstance{
		OrgID:      org.ID,
		TemplateID: template.ID,
		Date:       date,
		Capacity:   capacity,
		Status:     models.InstanceStatusScheduled,
	}
	require.NoError(t, db.Create(&instance).Error)
	return instance
}

func createCompletedPayment(t *testing.T, db *gorm.DB, user models.User, org models.Organization, paymentType string) models.Payment {
	t.Helper()
	eventID := "evt_" + uuid.NewString()
	payment := models.Payment{
		UserID:        user.ID,
		OrgID:         org.ID,
		Amount:        5000,
		Type:          paymentType,
		Status:        models.PaymentStatusCompleted,
		StripeEventID: &eventID,
	}
	require.NoError(t, db.Create(&payment).Error)
	return payment
}

func createBundleEntitlement(t *testing.T, db *gorm.DB, user models.User, org models.Organization, remaining int) models.UserPackage {
	t.Helper()
	classCount := remaining
	pkg := models.Package{
		OrgID:      org.ID,
		Name:       "10 Class Bundle",
		Type:       models.PackageTypeBundle,
		ClassCount: &classCount,
		Price:      10000,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&pkg).Error)

	payment := createCompletedPayment(t, db, user, org, models.PaymentTypePackage)
	entitlement := models.UserPackage{
		UserID:           user.ID,
		PackageID:        pkg.ID,
		RemainingClasses: &remaining,
		PaymentID:        payment.ID,
		PurchasedAt:      time.Now(),
	}
	require.NoError(t, db.Create(&entitlement).Error)
	return entitlement
}

func createMonthlyEntitlement(t *testing.T, db *gorm.DB, user models.User, org models.Organization, expiresAt time.Time) models.UserPackage {
	t.Helper()
	durationDays := 30
	pkg := models.Package{
		OrgID:        org.ID,
		Name:         "Monthly Pass",
		Type:         models.PackageTypeMonthly,
		DurationDays: &durationDays,
		Price:        20000,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&pkg).Error)

	payment := createCompletedPayment(t, db, user, org, models.PaymentTypePackage)
	entitlement := models.UserPackage{
		UserID:      user.ID,
		PackageID:   pkg.ID,
		ExpiresAt:   &expiresAt,
		PaymentID:   payment.ID,
		PurchasedAt: time.Now(),
	}
	require.NoError(t, db.Create(&entitlement).Error)
	return entitlement
}

func reloadEntitlement(t *testing.T, db *gorm.DB, id uuid.UUID) models.UserPackage {
	t.Helper()
	var entitlement models.UserPackage
	require.NoError(t, db.First(&entitlement, "id = ?", id).Error)
	return entitlement
}
