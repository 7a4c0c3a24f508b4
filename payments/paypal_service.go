package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type PayPalConfig struct {
	APIBase   string
	ClientID  string
	Secret    string
	ReturnURL string
	CancelURL string
}

type PayPal struct {
	cfg    PayPalConfig
	client *http.Client
}

func NewPayPal(cfg PayPalConfig, client *http.Client) *PayPal {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &PayPal{cfg: cfg, client: client}
}

func (p *PayPal) Name() string { return "paypal" }

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalOrder struct {
	ID            string       `json:"id"`
	Status        string       `json:"status"`
	Links         []paypalLink `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBase+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.Secret)
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal: access token status %s", resp.Status)
	}

	var tokenResp accessTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	return tokenResp.AccessToken, nil
}

func (p *PayPal) CreateOrder(ctx context.Context, order Order) (*Checkout, error) {
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": order.Reference,
				"description":  order.Description,
				"amount": map[string]string{
					"currency_code": order.Currency,
					"value":         fmt.Sprintf("%.2f", order.Amount),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": p.cfg.ReturnURL,
			"cancel_url": p.cfg.CancelURL,
		},
	}

	var created paypalOrder
	if err := p.call(ctx, "/v2/checkout/orders", payload, http.StatusCreated, &created); err != nil {
		return nil, fmt.Errorf("paypal: create order: %w", err)
	}

	checkout := &Checkout{OrderID: created.ID}
	for _, l := range created.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			checkout.ApprovalURL = l.Href
		}
	}
	return checkout, nil
}

func (p *PayPal) Capture(ctx context.Context, orderID string) (*Capture, error) {
	var captured paypalOrder
	if err := p.call(ctx, "/v2/checkout/orders/"+orderID+"/capture", nil, http.StatusCreated, &captured); err != nil {
		return nil, fmt.Errorf("paypal: capture order: %w", err)
	}

	result := &Capture{OrderID: captured.ID, Status: CaptureFailed}
	if captured.Status == "COMPLETED" {
		result.Status = CaptureSucceeded
	}
	for _, unit := range captured.PurchaseUnits {
		for _, c := range unit.Payments.Captures {
			result.TransactionID = c.ID
			if c.Status == "PENDING" {
				result.Status = CapturePending
			}
		}
	}
	return result, nil
}

func (p *PayPal) call(ctx context.Context, path string, payload interface{}, wantStatus int, out interface{}) error {
	token, err := p.accessToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrOrderNotFound
	}
	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %s: %s", resp.Status, string(respBody))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
