package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiobook/studiobook/database"
	"github.com/studiobook/studiobook/models"
)

const webhookTestSecret = "whsec_handler_test"

func newWebhookTestApp(t *testing.T) *fiber.App {
	t.Helper()

	newHandlerTestDB(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookTestSecret)

	app := fiber.New()
	app.Post("/api/v1/payments/webhook", HandleStripeWebhook)
	return app
}

func signedWebhookRequest(payload []byte) *http.Request {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)

	req := httptest.NewRequest("POST", "/api/v1/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return req
}

func completedSessionPayload(eventID string, metadata map[string]string) []byte {
	meta := ""
	for k, v := range metadata {
		if meta != "" {
			meta += ","
		}
		meta += fmt.Sprintf("%q:%q", k, v)
	}
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"amount_total": 1500,
				"payment_intent": "pi_test",
				"metadata": {%s}
			}
		}
	}`, eventID, meta))
}

func TestHandleStripeWebhook_TargetlessEventIsAcknowledged(t *testing.T) {
	app := newWebhookTestApp(t)

	// Identity metadata only: nothing to fulfill, but redelivery cannot make
	// the event better, so it must be acknowledged with 200.
	payload := completedSessionPayload("evt_no_target", map[string]string{
		"userId": uuid.NewString(),
		"orgId":  uuid.NewString(),
	})
	resp, err := app.Test(signedWebhookRequest(payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"received":true`)

	var payments int64
	database.DB.Model(&models.Payment{}).Count(&payments)
	assert.EqualValues(t, 0, payments)
}

func TestHandleStripeWebhook_UnparseableTargetIsAcknowledged(t *testing.T) {
	app := newWebhookTestApp(t)

	payload := completedSessionPayload("evt_bad_target", map[string]string{
		"userId":          uuid.NewString(),
		"orgId":           uuid.NewString(),
		"classInstanceId": "not-a-uuid",
	})
	resp, err := app.Test(signedWebhookRequest(payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payments int64
	database.DB.Model(&models.Payment{}).Count(&payments)
	assert.EqualValues(t, 0, payments)
}

func TestHandleStripeWebhook_BadSignatureRejected(t *testing.T) {
	app := newWebhookTestApp(t)

	payload := completedSessionPayload("evt_sig", map[string]string{"userId": uuid.NewString()})
	req := httptest.NewRequest("POST", "/api/v1/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", "t=123,v1=deadbeef")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleStripeWebhook_SingleClassFulfilled(t *testing.T) {
	app := newWebhookTestApp(t)

	org := models.Organization{Name: "Test Studio", Slug: "test-studio", CancellationHours: 2, DefaultCapacity: 10}
	require.NoError(t, database.DB.Create(&org).Error)
	user := models.User{Name: "Member", Email: "member@test.io", Password: "x"}
	require.NoError(t, database.DB.Create(&user).Error)
	template := models.ClassTemplate{OrgID: org.ID, InstructorID: user.ID, Name: "Yoga", Time: "10:00", Duration: 60, Capacity: 10, Price: 1500}
	require.NoError(t, database.DB.Create(&template).Error)
	instance := models.ClassInstance{OrgID: org.ID, TemplateID: template.ID, Date: time.Now().Add(24 * time.Hour), Capacity: 10, Status: models.InstanceStatusScheduled}
	require.NoError(t, database.DB.Create(&instance).Error)

	payload := completedSessionPayload("evt_single_class", map[string]string{
		"userId":          user.ID.String(),
		"orgId":           org.ID.String(),
		"classInstanceId": instance.ID.String(),
	})
	resp, err := app.Test(signedWebhookRequest(payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var booking models.Booking
	require.NoError(t, database.DB.First(&booking, "user_id = ? AND class_instance_id = ?", user.ID, instance.ID).Error)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	require.NotNil(t, booking.PaymentID)
}
