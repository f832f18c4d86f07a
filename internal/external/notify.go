package external

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NotifyClient talks to the outbound notification gateway used for booking
// confirmations and invoice emails.
type NotifyClient struct {
	baseURL     string
	apiKey      string
	fromAddress string
	httpClient  *http.Client
}

type NotifyConfig struct {
	BaseURL     string
	APIKey      string
	FromAddress string
	Timeout     time.Duration
}

type SendMessageRequest struct {
	From     string            `json:"from"`
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params,omitempty"`
}

type SendMessageResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

func NewNotifyClient(cfg NotifyConfig) *NotifyClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &NotifyClient{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		fromAddress: cfg.FromAddress,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendEmail queues a templated email through the gateway
func (nc *NotifyClient) SendEmail(to, subject, template string, params map[string]string) (*SendMessageResponse, error) {
	req := SendMessageRequest{
		From:     nc.fromAddress,
		To:       to,
		Subject:  subject,
		Template: template,
		Params:   params,
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, nc.baseURL+"/v1/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+nc.apiKey)

	resp, err := nc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("notification gateway returned status %d", resp.StatusCode)
	}

	var result SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
