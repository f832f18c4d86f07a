package external

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"
)

// BillingClient talks to the external billing processor that hosts invoices
// for client payment.
type BillingClient struct {
	baseURL     string
	accountSlug string
	apiKey      string
	httpClient  *http.Client
}

type BillingConfig struct {
	BaseURL     string
	AccountSlug string
	APIKey      string
	Timeout     time.Duration
}

type RegisterInvoiceRequest struct {
	AccountSlug   string `json:"accountSlug"`
	Token         string `json:"token"`
	InvoiceNumber string `json:"invoiceNumber"`
	Amount        int64  `json:"amount"` // minor units
	Currency      string `json:"currency"`
	DueDate       string `json:"dueDate"`
	Description   string `json:"description,omitempty"`
	Email         string `json:"email,omitempty"`
}

type RegisterInvoiceResponse struct {
	Success     bool   `json:"success"`
	ProcessorID string `json:"processorId"`
	Status      string `json:"status"`
	PaymentURL  string `json:"paymentURL"`
	CreatedAt   string `json:"createdAt"`
}

type CancelInvoiceRequest struct {
	AccountSlug string `json:"accountSlug"`
	Token       string `json:"token"`
	ProcessorID string `json:"processorId"`
	Reason      string `json:"reason,omitempty"`
}

type CancelInvoiceResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

func NewBillingClient(cfg BillingConfig) *BillingClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &BillingClient{
		baseURL:     cfg.BaseURL,
		accountSlug: cfg.AccountSlug,
		apiKey:      cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// generateToken builds the request signature: parameters sorted by name,
// values concatenated, SHA-256 hashed.
func (bc *BillingClient) generateToken(params map[string]string) string {
	params["AccountSlug"] = bc.accountSlug
	params["ApiKey"] = bc.apiKey

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokenString string
	for _, key := range keys {
		tokenString += params[key]
	}

	hash := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(hash[:])
}

// RegisterInvoice registers an invoice with the processor and returns the
// processor-side identifier the portal stores on the invoice record.
func (bc *BillingClient) RegisterInvoice(invoiceNumber string, amount float64, dueDate time.Time, clientEmail, description string) (*RegisterInvoiceResponse, error) {
	amountMinor := int64(amount * 100)
	token := bc.generateToken(map[string]string{
		"Amount":        strconv.FormatInt(amountMinor, 10),
		"Currency":      "USD",
		"InvoiceNumber": invoiceNumber,
	})

	req := RegisterInvoiceRequest{
		AccountSlug:   bc.accountSlug,
		Token:         token,
		InvoiceNumber: invoiceNumber,
		Amount:        amountMinor,
		Currency:      "USD",
		DueDate:       dueDate.Format("2006-01-02"),
		Description:   description,
		Email:         clientEmail,
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := bc.httpClient.Post(bc.baseURL+"/v1/invoices/register", "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to register invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("billing processor returned status %d", resp.StatusCode)
	}

	var result RegisterInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("billing processor rejected invoice %s (status: %s)", invoiceNumber, result.Status)
	}

	return &result, nil
}

// CancelInvoice voids a previously registered invoice
func (bc *BillingClient) CancelInvoice(processorID, reason string) error {
	token := bc.generateToken(map[string]string{
		"ProcessorId": processorID,
	})

	req := CancelInvoiceRequest{
		AccountSlug: bc.accountSlug,
		Token:       token,
		ProcessorID: processorID,
		Reason:      reason,
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := bc.httpClient.Post(bc.baseURL+"/v1/invoices/cancel", "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to cancel invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("billing processor returned status %d", resp.StatusCode)
	}

	var result CancelInvoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("billing processor refused to cancel %s (status: %s)", processorID, result.Status)
	}

	return nil
}
