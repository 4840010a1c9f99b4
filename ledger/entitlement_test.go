package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiobook/studiobook/models"
)

func TestValidEntitlements_FiltersUsableOnly(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	user := createUser(t, db, "a@test.io")
	now := time.Now()

	usableBundle := createBundleEntitlement(t, db, user, org, 3)
	drained := createBundleEntitlement(t, db, user, org, 1)
	require.NoError(t, db.Model(&models.UserPackage{}).
		Where("id = ?", drained.ID).
		Update("remaining_classes", 0).Error)

	activePass := createMonthlyEntitlement(t, db, user, org, now.Add(10*24*time.Hour))
	createMonthlyEntitlement(t, db, user, org, now.Add(-time.Hour)) // expired

	entitlements, err := ValidEntitlements(db, user.ID, org.ID, now)
	require.NoError(t, err)
	require.Len(t, entitlements, 2)

	ids := []string{entitlements[0].ID.String(), entitlements[1].ID.String()}
	assert.Contains(t, ids, usableBundle.ID.String())
	assert.Contains(t, ids, activePass.ID.String())
	for _, e := range entitlements {
		assert.NotEmpty(t, e.Package.Name, "Package association should be preloaded")
	}
}

func TestValidEntitlements_ScopedToOrg(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	otherOrg := createOrg(t, db, 2)
	user := createUser(t, db, "a@test.io")
	now := time.Now()

	mine := createBundleEntitlement(t, db, user, org, 5)
	createBundleEntitlement(t, db, user, otherOrg, 5)

	entitlements, err := ValidEntitlements(db, user.ID, org.ID, now)
	require.NoError(t, err)
	require.Len(t, entitlements, 1)
	assert.Equal(t, mine.ID, entitlements[0].ID)
}

func TestValidEntitlementsForUser_SpansOrgs(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	otherOrg := createOrg(t, db, 2)
	user := createUser(t, db, "a@test.io")
	stranger := createUser(t, db, "b@test.io")
	now := time.Now()

	createBundleEntitlement(t, db, user, org, 5)
	createMonthlyEntitlement(t, db, user, otherOrg, now.Add(24*time.Hour))
	createBundleEntitlement(t, db, stranger, org, 5)

	entitlements, err := ValidEntitlementsForUser(db, user.ID, now)
	require.NoError(t, err)
	assert.Len(t, entitlements, 2)
}

func TestConfirmedCount_IgnoresCancelled(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	instance := createInstance(t, db, org, 10, time.Now().Add(48*time.Hour))

	for i, email := range []string{"a@test.io", "b@test.io", "c@test.io"} {
		user := createUser(t, db, email)
		createBundleEntitlement(t, db, user, org, 5)
		booking, err := ReserveSeat(db, user.ID, instance.ID, time.Now())
		require.NoError(t, err)
		if i == 0 {
			_, err = CancelBooking(db, booking.ID, user.ID, time.Now())
			require.NoError(t, err)
		}
	}

	count, err := ConfirmedCount(db, instance.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
