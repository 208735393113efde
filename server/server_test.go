package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MediCall/config"
	"MediCall/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		GinMode:          gin.TestMode,
		StoreBackend:     "memory",
		CacheEnabled:     true,
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		ReminderTimezone: "UTC",
		ReminderSchedule: "@every 1h",
		UploadDir:        t.TempDir(),
		UploadURLPrefix:  "/uploads",
		MaxUploadBytes:   1 << 20,
	}
}

type harness struct {
	t      *testing.T
	app    *App
	engine *gin.Engine
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return &harness{t: t, app: app, engine: app.Engine(nil)}
}

func (h *harness) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.serve(req)
}

func (h *harness) serve(req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	h.t.Helper()
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	out := map[string]interface{}{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (h *harness) login(email, password string) string {
	h.t.Helper()
	w, out := h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	token, _ := out["token"].(string)
	require.NotEmpty(h.t, token)
	return token
}

func (h *harness) agentToken() string {
	h.t.Helper()
	w, _ := h.do(http.MethodPost, "/api/auth/signup", "", gin.H{
		"name": "Alex Agent", "email": "alex@medicall.test", "password": "secret1",
	})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return h.login("alex@medicall.test", "secret1")
}

func (h *harness) adminToken() string {
	h.t.Helper()
	_, err := h.app.Handlers.Users.Create(context.Background(), validation.Payload{
		"name": "Ada Admin", "email": "ada@medicall.test", "password": "secret1", "role": "admin",
	})
	require.NoError(h.t, err)
	return h.login("ada@medicall.test", "secret1")
}

func detailFields(out map[string]interface{}) []string {
	var fields []string
	details, _ := out["details"].([]interface{})
	for _, d := range details {
		if m, ok := d.(map[string]interface{}); ok {
			fields = append(fields, m["field"].(string))
		}
	}
	return fields
}

func TestHealth(t *testing.T) {
	h := newHarness(t, testConfig(t))
	w, out := h.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newHarness(t, testConfig(t))
	for _, path := range []string{"/api/patients", "/api/doctors", "/api/bookings", "/api/call-logs", "/api/auth/me"} {
		w, out := h.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.NotEmpty(t, out["error"], path)
	}
	w, _ := h.do(http.MethodGet, "/api/patients", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginSessionAndLogoutRevokes(t *testing.T) {
	h := newHarness(t, testConfig(t))
	token := h.agentToken()

	w, out := h.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := out["user"].(map[string]interface{})
	assert.Equal(t, "alex@medicall.test", user["email"])
	assert.Equal(t, "agent", user["role"])
	assert.NotContains(t, user, "password")

	w, out = h.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, out["message"])

	w, _ = h.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := newHarness(t, testConfig(t))
	h.agentToken()

	w, _ := h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alex@medicall.test", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	w, _ = h.serve(req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginFailureIsUnauthenticated(t *testing.T) {
	h := newHarness(t, testConfig(t))
	h.agentToken()
	w, _ := h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alex@medicall.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, out := h.do(http.MethodPost, "/api/auth/signup", "", gin.H{"name": "A", "email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, out["details"])
}

func TestUserAdministrationIsAdminOnly(t *testing.T) {
	h := newHarness(t, testConfig(t))
	agent := h.agentToken()
	admin := h.adminToken()

	w, _ := h.do(http.MethodGet, "/api/users", agent, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, out := h.do(http.MethodGet, "/api/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["users"], 2)

	w, _ = h.do(http.MethodPost, "/api/users", admin, gin.H{
		"name": "Sam Supervisor", "email": "sam@medicall.test", "password": "secret1", "role": "supervisor",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDoctorListPaginationAndMalformedID(t *testing.T) {
	h := newHarness(t, testConfig(t))
	token := h.agentToken()
	for i, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		w, _ := h.do(http.MethodPost, "/api/doctors", token, gin.H{
			"name": "Meredith Grey", "email": email, "phoneNumber": "+15550002222",
			"specialty": "Cardiology", "department": "Heart",
			"licenseNumber": "LIC-" + string(rune('1'+i)), "experience": 12,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, out := h.do(http.MethodGet, "/api/doctors?page=2&limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, out["total"])
	assert.EqualValues(t, 2, out["totalPages"])
	assert.Len(t, out["doctors"], 1)

	w, _ = h.do(http.MethodGet, "/api/doctors/not-an-id", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoiceCloneNeedsAudio(t *testing.T) {
	h := newHarness(t, testConfig(t))
	token := h.agentToken()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("name", "Grey"))
	require.NoError(t, form.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/doctors/64b7f0c2a1b2c3d4e5f60718/voice-clone", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w, out := h.serve(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"audio"}, detailFields(out))
}

func uploadRequest(t *testing.T, token, typeTag, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if typeTag != "" {
		require.NoError(t, form.WriteField("type", typeTag))
	}
	if filename != "" {
		part, err := form.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadStoresAndServesFile(t *testing.T) {
	h := newHarness(t, testConfig(t))
	token := h.agentToken()

	w, out := h.serve(uploadRequest(t, token, "profile", "me.png", "png-bytes"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	url := out["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/uploads/profile_"))
	assert.True(t, strings.HasSuffix(out["filename"].(string), ".png"))

	w, _ = h.serve(httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestUploadValidation(t *testing.T) {
	h := newHarness(t, testConfig(t))
	token := h.agentToken()

	w, out := h.serve(uploadRequest(t, token, "profile", "", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"file"}, detailFields(out))

	w, out = h.serve(uploadRequest(t, token, "avatar", "me.png", "x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"type"}, detailFields(out))
}

func TestWebhookSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.BlandWebhookSecret = "hook-secret"
	h := newHarness(t, cfg)
	payload := []byte(`{"call_id":"unknown","status":"completed"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/bland", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w, _ := h.serve(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for _, path := range []string{"/api/webhooks/bland", "/api/bland-ai/webhook"} {
		req = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Secret", "hook-secret")
		w, out := h.serve(req)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "ignored", out["result"], path)
	}
}

func TestPatientRemindWithoutProviderIsBadGateway(t *testing.T) {
	h := newHarness(t, testConfig(t))
	token := h.agentToken()

	w, out := h.do(http.MethodPost, "/api/patients", token, gin.H{
		"name": "Ana Lima", "email": "ana@x.io", "mobileNumber": "+15550001111",
		"medications": []gin.H{{"name": "Metformin", "dosage": "500mg", "times": []string{"08:00"}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := out["patient"].(map[string]interface{})["id"].(string)

	w, _ = h.do(http.MethodPost, "/api/patients/"+id+"/remind", token, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w, out = h.do(http.MethodGet, "/api/call-logs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, out["callLogs"])
}

func TestDefaultOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.MigrationsEnabled = true
	cfg.JobsEnabled = true
	opts := GetDefaultOptions(cfg)
	assert.False(t, opts.MigrationEnabled)
	assert.True(t, opts.JobsEnabled)

	h := newHarness(t, cfg)
	assert.NoError(t, opts.MigrationHandler(context.Background(), h.app))
	stop, err := opts.JobsHandler(h.app)
	require.NoError(t, err)
	stop()

	cfg.ReminderSchedule = "not a schedule"
	_, err = StartReminders(h.app)
	assert.Error(t, err)
}

func TestBuildRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReminderTimezone = "Mars/Olympus"
	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	h := newHarness(t, testConfig(t))
	h.do(http.MethodGet, "/api/health", "", nil)

	w, _ := h.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `medicall_http_requests_total{method="GET",path="/api/health",status="200"}`)
}

func TestWebhookAcceptsLooselyTypedPayloads(t *testing.T) {
	h := newHarness(t, testConfig(t))
	for _, payload := range []string{
		`{"call_id":"c-1","metadata":{"attempt":2}}`,
		`{"call_id":"c-2","metadata":{"patient_id":7,"retry":true}}`,
		`{"call_id":"c-3","duration":"12.5"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/bland", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w, out := h.serve(req)
		assert.Equal(t, http.StatusOK, w.Code, payload)
		assert.Equal(t, "ignored", out["result"], payload)
	}
}

func TestAccountChangesApplyToIssuedTokens(t *testing.T) {
	h := newHarness(t, testConfig(t))
	agent := h.agentToken()
	admin := h.adminToken()

	_, out := h.do(http.MethodGet, "/api/auth/me", agent, nil)
	id, _ := out["user"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, id)

	w, _ := h.do(http.MethodPut, "/api/users/"+id, admin, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = h.do(http.MethodGet, "/api/users", agent, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(http.MethodPut, "/api/users/"+id, admin, gin.H{"role": "agent", "isActive": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, out = h.do(http.MethodGet, "/api/auth/me", agent, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Account is inactive", out["error"])

	w, _ = h.do(http.MethodPut, "/api/users/"+id, admin, gin.H{"isActive": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = h.do(http.MethodGet, "/api/users", agent, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = h.do(http.MethodDelete, "/api/users/"+id, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = h.do(http.MethodGet, "/api/auth/me", agent, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookHasItsOwnRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitPerSecond = 0.001
	cfg.RateLimitBurst = 1
	h := newHarness(t, cfg)

	creds := gin.H{"email": "nobody@medicall.test", "password": "secret1"}
	w, _ := h.do(http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = h.do(http.MethodPost, "/api/auth/login", "", creds)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	for i := 0; i < 3; i++ {
		w, out := h.do(http.MethodPost, "/api/webhooks/bland", "", gin.H{"call_id": "c-1", "status": "completed"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ignored", out["result"])
	}

	cfg = testConfig(t)
	cfg.WebhookRateLimitPerSecond = 0.001
	cfg.WebhookRateLimitBurst = 1
	h = newHarness(t, cfg)
	w, _ = h.do(http.MethodPost, "/api/webhooks/bland", "", gin.H{"call_id": "c-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = h.do(http.MethodPost, "/api/webhooks/bland", "", gin.H{"call_id": "c-1"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	h.agentToken()
}
