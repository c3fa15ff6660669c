package utils

import (
	"encoding/json"
	"erudio/config"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// Paystack wraps the two gateway calls used for checkout: transaction
// initialize and transaction verify. A nil response from either call means
// the gateway was unreachable (network error, timeout or non-2xx), which is
// a distinct outcome from an explicit payment decline.
type Paystack struct {
	BaseURL   string
	SecretKey string
	client    *resty.Client
}

// NewPaystack builds a client against the configured gateway.
func NewPaystack() *Paystack {
	return NewPaystackClient(config.AppConfig.PaystackBaseURL, config.AppConfig.PaystackSecretKey)
}

// NewPaystackClient builds a client against an explicit base URL.
func NewPaystackClient(baseURL, secretKey string) *Paystack {
	return &Paystack{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    resty.New().SetTimeout(15 * time.Second),
	}
}

// InitializeResponse is the gateway reply to a transaction initialize call.
type InitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// VerifyResponse is the gateway reply to a transaction verify call.
type VerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"` // "success" when the charge went through
		Amount int64  `json:"amount"`
	} `json:"data"`
}

// InitializeTransaction starts a checkout session. Amount is in the lowest
// currency unit (kobo). Returns nil when the gateway cannot be reached.
func (p *Paystack) InitializeTransaction(email string, amountKobo int64, reference, callbackURL string) *InitializeResponse {
	payload := map[string]interface{}{
		"email":        email,
		"amount":       amountKobo,
		"reference":    reference,
		"callback_url": callbackURL,
	}

	resp, err := p.client.R().
		SetHeader("Authorization", "Bearer "+p.SecretKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(p.BaseURL + "/transaction/initialize")
	if err != nil {
		log.Printf("[PAYSTACK] Initialize request failed for %s: %v", reference, err)
		return nil
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		log.Printf("[PAYSTACK] Initialize returned %d for %s: %s", resp.StatusCode(), reference, resp.String())
		return nil
	}

	var result InitializeResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		log.Printf("[PAYSTACK] Invalid initialize response for %s: %v", reference, err)
		return nil
	}
	return &result
}

// VerifyTransaction checks the status of a transaction by reference.
// Returns nil when the gateway cannot be reached.
func (p *Paystack) VerifyTransaction(reference string) *VerifyResponse {
	resp, err := p.client.R().
		SetHeader("Authorization", "Bearer "+p.SecretKey).
		Get(p.BaseURL + "/transaction/verify/" + reference)
	if err != nil {
		log.Printf("[PAYSTACK] Verify request failed for %s: %v", reference, err)
		return nil
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		log.Printf("[PAYSTACK] Verify returned %d for %s: %s", resp.StatusCode(), reference, resp.String())
		return nil
	}

	var result VerifyResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		log.Printf("[PAYSTACK] Invalid verify response for %s: %v", reference, err)
		return nil
	}
	return &result
}
