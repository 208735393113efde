// Package bland talks to the Bland AI voice and SMS API.
package bland

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://api.bland.ai/v1"
	defaultVoice   = "maya"
)

type Config struct {
	BaseURL    string
	APIKey     string
	WebhookURL string
	Voice      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	apiKey     string
	baseURL    string
	webhookURL string
	voice      string
	httpClient *http.Client
}

// CallRequest describes an outbound call. Metadata is echoed back by the
// provider on the completion webhook.
type CallRequest struct {
	PhoneNumber string
	Task        string
	Metadata    map[string]string
}

type CallResponse struct {
	Status string `json:"status"`
	CallID string `json:"call_id"`
}

type SMSResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bland: status %d: %s", e.StatusCode, e.Body)
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("bland: API key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoice
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		webhookURL: cfg.WebhookURL,
		voice:      voice,
		httpClient: httpClient,
	}, nil
}

func (c *Client) MakeCall(ctx context.Context, req CallRequest) (*CallResponse, error) {
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return nil, errors.New("bland: phone number required")
	}
	body := map[string]interface{}{
		"phone_number":   req.PhoneNumber,
		"task":           req.Task,
		"voice":          c.voice,
		"reduce_latency": true,
	}
	if c.webhookURL != "" {
		body["webhook"] = c.webhookURL
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}
	out := &CallResponse{}
	if err := c.post(ctx, "/calls", body, out); err != nil {
		return nil, err
	}
	if out.CallID == "" {
		return nil, errors.New("bland: response carried no call id")
	}
	log.Info().Str("callId", out.CallID).Str("callType", req.Metadata["call_type"]).Msg("Call dispatched")
	return out, nil
}

func (c *Client) SendSMS(ctx context.Context, phoneNumber, message string) (*SMSResponse, error) {
	if strings.TrimSpace(phoneNumber) == "" {
		return nil, errors.New("bland: phone number required")
	}
	out := &SMSResponse{}
	if err := c.post(ctx, "/sms", map[string]string{"phone_number": phoneNumber, "message": message}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("bland: marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("bland: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bland: %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("bland: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("bland: decode response: %w", err)
	}
	return nil
}
