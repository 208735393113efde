// Package elevenlabs clones and removes provider voices.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Sample is an audio recording uploaded for cloning.
type Sample struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

type Voice struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
	Status  string `json:"status,omitempty"`
}

type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs: status %d: %s", e.StatusCode, e.Detail)
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("elevenlabs: API key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{apiKey: cfg.APIKey, baseURL: baseURL, httpClient: httpClient}, nil
}

// CloneVoice uploads the sample and returns the new voice.
func (c *Client) CloneVoice(ctx context.Context, name, description string, sample Sample) (*Voice, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("files", sample.Filename)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build form: %w", err)
	}
	if _, err := io.Copy(part, sample.Data); err != nil {
		return nil, fmt.Errorf("elevenlabs: copy sample: %w", err)
	}
	if err := form.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("elevenlabs: build form: %w", err)
	}
	if description != "" {
		if err := form.WriteField("description", description); err != nil {
			return nil, fmt.Errorf("elevenlabs: build form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("elevenlabs: build form: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/voices/add", &buf, form.FormDataContentType())
	if err != nil {
		return nil, err
	}
	voice := &Voice{}
	if err := json.Unmarshal(data, voice); err != nil {
		return nil, fmt.Errorf("elevenlabs: decode response: %w", err)
	}
	if voice.VoiceID == "" {
		return nil, errors.New("elevenlabs: response carried no voice id")
	}
	if voice.Name == "" {
		voice.Name = name
	}
	return voice, nil
}

func (c *Client) DeleteVoice(ctx context.Context, voiceID string) error {
	if strings.TrimSpace(voiceID) == "" {
		return errors.New("elevenlabs: voice id required")
	}
	_, err := c.do(ctx, http.MethodDelete, "/voices/"+url.PathEscape(voiceID), nil, "")
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: detail(data, resp.Status)}
	}
	return data, nil
}

// detail extracts the provider's error detail, which is either a string or
// an object with a message.
func detail(data []byte, fallback string) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return fallback
	}
	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		return text
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Detail, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return fallback
}
