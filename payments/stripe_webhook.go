package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WebhookEvent is the slice of a Stripe event envelope the fulfillment flow
// needs: the event id (idempotency key), the type, and the completed checkout
// session with its metadata.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object WebhookSession `json:"object"`
	} `json:"data"`
}

type WebhookSession struct {
	ID            string            `json:"id"`
	AmountTotal   int               `json:"amount_total"`
	PaymentIntent json.RawMessage   `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentIntentID handles both shapes Stripe sends: a bare id string or an
// expanded object.
func (s WebhookSession) PaymentIntentID() *string {
	if len(s.PaymentIntent) == 0 {
		return nil
	}
	var id string
	if err := json.Unmarshal(s.PaymentIntent, &id); err == nil && id != "" {
		return &id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(s.PaymentIntent, &obj); err == nil && obj.ID != "" {
		return &obj.ID
	}
	return nil
}

const signatureTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing stripe-signature header")
	ErrBadSignature     = errors.New("webhook signature verification failed")
)

// VerifyWebhookSignature checks the Stripe-Signature header (t=...,v1=...)
// against an HMAC-SHA256 of "<timestamp>.<payload>" with the webhook secret,
// rejecting stale timestamps.
func VerifyWebhookSignature(payload []byte, header, secret string, now time.Time) error {
	if header == "" {
		return ErrMissingSignature
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ErrBadSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return ErrBadSignature
	}

	sent := time.Unix(timestamp, 0)
	if now.Sub(sent) > signatureTolerance || sent.Sub(now) > signatureTolerance {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrBadSignature
}

// ParseWebhookEvent decodes a verified payload into the event envelope.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("cannot parse webhook payload: %w", err)
	}
	return &event, nil
}
