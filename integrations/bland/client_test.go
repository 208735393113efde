package bland

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	client, err := New(Config{APIKey: "key", BaseURL: "http://bland.test/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "http://bland.test/v1", client.baseURL)
	assert.Equal(t, defaultVoice, client.voice)
	assert.Equal(t, 15*time.Second, client.httpClient.Timeout)
}

func TestMakeCall(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calls", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","call_id":"call-123"}`))
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "key", BaseURL: server.URL, WebhookURL: "https://medicall.test/api/webhooks/bland"})
	require.NoError(t, err)

	resp, err := client.MakeCall(context.Background(), CallRequest{
		PhoneNumber: "+15550001111",
		Task:        "say hi",
		Metadata:    map[string]string{"patient_id": "p1", "agent_id": "a1", "call_type": "reminder"},
	})
	require.NoError(t, err)
	assert.Equal(t, "call-123", resp.CallID)

	assert.Equal(t, "+15550001111", got["phone_number"])
	assert.Equal(t, "say hi", got["task"])
	assert.Equal(t, "https://medicall.test/api/webhooks/bland", got["webhook"])
	assert.Equal(t, map[string]interface{}{"patient_id": "p1", "agent_id": "a1", "call_type": "reminder"}, got["metadata"])
}

func TestMakeCallProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid phone", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.MakeCall(context.Background(), CallRequest{PhoneNumber: "1", Task: "x"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid phone", apiErr.Body)
}

func TestMakeCallRequiresPhone(t *testing.T) {
	client, err := New(Config{APIKey: "key"})
	require.NoError(t, err)
	_, err = client.MakeCall(context.Background(), CallRequest{Task: "x"})
	assert.Error(t, err)
}

func TestSendSMS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sms", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "take your pill", body["message"])
		_, _ = w.Write([]byte(`{"status":"success","message_id":"m-1"}`))
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)
	resp, err := client.SendSMS(context.Background(), "+15550001111", "take your pill")
	require.NoError(t, err)
	assert.Equal(t, "m-1", resp.MessageID)
}

func TestScripts(t *testing.T) {
	script := MedicationReminderScript("Ana", "Metformin", "500mg", "08:00")
	assert.Contains(t, script, "Hello Ana")
	assert.Contains(t, script, "Metformin medication, 500mg")
	assert.Contains(t, script, "08:00")

	appt := AppointmentReminderScript("Ana", "Grey", "2026-11-02", "10:30")
	assert.Contains(t, appt, "Dr. Grey")
	assert.Contains(t, appt, "2026-11-02 at 10:30")
}
