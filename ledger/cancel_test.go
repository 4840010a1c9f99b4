package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiobook/studiobook/models"
)

func TestWithinCancellationWindow(t *testing.T) {
	now := time.Now()

	assert.True(t, WithinCancellationWindow(now.Add(3*time.Hour), now, 2))
	assert.False(t, WithinCancellationWindow(now.Add(1*time.Hour), now, 2))
	// Exactly on the boundary still counts.
	assert.True(t, WithinCancellationWindow(now.Add(2*time.Hour), now, 2))
	assert.True(t, WithinCancellationWindow(now.Add(1*time.Minute), now, 0))
}

func TestCancelBooking_TooLate(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	user := createUser(t, db, "a@test.io")
	now := time.Now()
	instance := createInstance(t, db, org, 5, now.Add(1*time.Hour))

	booking, err := ReserveSeat(db, user.ID, instance.ID, now)
	require.NoError(t, err)

	_, err = CancelBooking(db, booking.ID, user.ID, now)
	assert.ErrorIs(t, err, ErrTooLate)

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusConfirmed, reloaded.Status)
}

func TestCancelBooking_OnlyOwnerMayCancel(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	owner := createUser(t, db, "a@test.io")
	other := createUser(t, db, "b@test.io")
	instance := createInstance(t, db, org, 5, time.Now().Add(24*time.Hour))

	booking, err := ReserveSeat(db, owner.ID, instance.ID, time.Now())
	require.NoError(t, err)

	_, err = CancelBooking(db, booking.ID, other.ID, time.Now())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	user := createUser(t, db, "a@test.io")
	instance := createInstance(t, db, org, 5, time.Now().Add(24*time.Hour))

	booking, err := ReserveSeat(db, user.ID, instance.ID, time.Now())
	require.NoError(t, err)

	_, err = CancelBooking(db, booking.ID, user.ID, time.Now())
	require.NoError(t, err)

	_, err = CancelBooking(db, booking.ID, user.ID, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelBooking_NotFound(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "a@test.io")

	_, err := CancelBooking(db, uuid.New(), user.ID, time.Now())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBooking_RefundsBundleCredit(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	user := createUser(t, db, "a@test.io")
	instance := createInstance(t, db, org, 5, time.Now().Add(24*time.Hour))
	entitlement := createBundleEntitlement(t, db, user, org, 1)

	booking, err := ReserveSeat(db, user.ID, instance.ID, time.Now())
	require.NoError(t, err)
	require.Equal(t, 0, *reloadEntitlement(t, db, entitlement.ID).RemainingClasses)

	cancelled, err := CancelBooking(db, booking.ID, user.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	assert.Equal(t, 1, *reloadEntitlement(t, db, entitlement.ID).RemainingClasses)
}

func TestCancelBooking_MonthlyPassNotRefunded(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	user := createUser(t, db, "a@test.io")
	instance := createInstance(t, db, org, 5, time.Now().Add(24*time.Hour))
	entitlement := createMonthlyEntitlement(t, db, user, org, time.Now().Add(20*24*time.Hour))

	booking, err := ReserveSeat(db, user.ID, instance.ID, time.Now())
	require.NoError(t, err)

	_, err = CancelBooking(db, booking.ID, user.ID, time.Now())
	require.NoError(t, err)

	assert.Nil(t, reloadEntitlement(t, db, entitlement.ID).RemainingClasses)
}

func TestCancelBooking_UnfundedBookingTouchesNoLedger(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	user := createUser(t, db, "a@test.io")
	instance := createInstance(t, db, org, 5, time.Now().Add(24*time.Hour))

	booking, err := ReserveSeat(db, user.ID, instance.ID, time.Now())
	require.NoError(t, err)
	require.Nil(t, booking.PaymentID)

	cancelled, err := CancelBooking(db, booking.ID, user.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	var packages int64
	db.Model(&models.UserPackage{}).Count(&packages)
	assert.EqualValues(t, 0, packages)
}

func TestCancelBooking_WaitlistedIsNotCancellable(t *testing.T) {
	db := newTestDB(t)
	org := createOrg(t, db, 2)
	user := createUser(t, db, "a@test.io")
	instance := createInstance(t, db, org, 5, time.Now().Add(24*time.Hour))

	booking := models.Booking{
		UserID:          user.ID,
		ClassInstanceID: instance.ID,
		Status:          models.BookingStatusWaitlisted,
	}
	require.NoError(t, db.Create(&booking).Error)

	_, err := CancelBooking(db, booking.ID, user.ID, time.Now())
	assert.ErrorIs(t, err, ErrNotCancellable)

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", booking.ID).Error)
	assert.Equal(t, models.BookingStatusWaitlisted, reloaded.Status)
}
