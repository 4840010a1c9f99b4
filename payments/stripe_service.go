package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	config "github.com/studiobook/studiobook/configs"
)

const stripeAPIBase = "https://api.stripe.com/v1"

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ConnectAccount struct {
	ID string `json:"id"`
}

type AccountLink struct {
	URL string `json:"url"`
}

type CheckoutParams struct {
	ProductName    string
	Amount         int
	ApplicationFee int
	ConnectedAcct  string
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
}

func stripeRequest(method, path, connectedAcct string, form url.Values, out interface{}) error {
	req, err := http.NewRequest(method, fmt.Sprintf("%s%s", stripeAPIBase, path), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(config.Config("STRIPE_SECRET_KEY"), "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if connectedAcct != "" {
		req.Header.Set("Stripe-Account", connectedAcct)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("stripe %s %s failed: %s", method, path, string(respBody))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateCheckoutSession opens a one-time payment session on the org's
// connected account, with the platform commission taken as an application
// fee. Metadata rides along to the payment intent so the webhook can tell
// what was bought and for whom.
func CreateCheckoutSession(p CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][product_data][name]", p.ProductName)
	form.Set("line_items[0][price_data][unit_amount]", strconv.Itoa(p.Amount))
	form.Set("line_items[0][quantity]", "1")
	form.Set("payment_intent_data[application_fee_amount]", strconv.Itoa(p.ApplicationFee))
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	for key, value := range p.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
		form.Set(fmt.Sprintf("payment_intent_data[metadata][%s]", key), value)
	}

	var session CheckoutSession
	if err := stripeRequest("POST", "/checkout/sessions", p.ConnectedAcct, form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateConnectAccount provisions a standard connected account for an org.
func CreateConnectAccount(orgID string) (*ConnectAccount, error) {
	form := url.Values{}
	form.Set("type", "standard")
	form.Set("metadata[orgId]", orgID)

	var account ConnectAccount
	if err := stripeRequest("POST", "/accounts", "", form, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccountLink returns a fresh onboarding link for a connected account.
func CreateAccountLink(accountID, returnURL string) (*AccountLink, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("refresh_url", returnURL)
	form.Set("return_url", returnURL)
	form.Set("type", "account_onboarding")

	var link AccountLink
	if err := stripeRequest("POST", "/account_links", "", form, &link); err != nil {
		return nil, err
	}
	return &link, nil
}
