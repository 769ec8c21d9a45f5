package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BriarPort/TILT/internal/auth"
	"github.com/BriarPort/TILT/internal/config"
	"github.com/BriarPort/TILT/internal/observability"
	"github.com/BriarPort/TILT/internal/osint"
	"github.com/BriarPort/TILT/internal/risk"
	"github.com/BriarPort/TILT/internal/store"
	"github.com/BriarPort/TILT/internal/vault"
	"github.com/BriarPort/TILT/modules/certcheck"
	"github.com/BriarPort/TILT/modules/dmarc"
	"github.com/BriarPort/TILT/modules/ransomwatch"
)

const testPassword = "test-password-1"

type testEnv struct {
	server  *Server
	handler http.Handler
	token   string
}

// newTestEnv builds a server over a temp vault with network checks faked
// out, unlocks it and returns a ready session token.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	origCert, origDMARC := certcheck.Check, dmarc.Check
	t.Cleanup(func() { certcheck.Check, dmarc.Check = origCert, origDMARC })
	certcheck.Check = func(ctx context.Context, domain string, cfg certcheck.CheckConfig) (certcheck.Result, error) {
		return certcheck.Result{Valid: false, DaysRemaining: 2, Grade: "F"}, nil
	}
	dmarc.Check = func(ctx context.Context, domain string, cfg dmarc.CheckConfig) (dmarc.Result, error) {
		return dmarc.Result{Domain: domain}, errors.New("dns timeout")
	}

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"post_title":"someone else entirely","group_name":"lockbit"}]`))
	}))
	t.Cleanup(feed.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scanner := osint.NewScanner(osint.Config{
		Feed:      ransomwatch.NewClient(feed.URL, nil),
		NetCache:  store.NewCache(store.NewMemoryStore(), time.Minute),
		ScanDelay: time.Millisecond,
		Timeout:   time.Second,
		Logger:    logger,
	})

	tokens, err := auth.NewTokenService("tilt-test", time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{HTTPPort: "0", DataDir: t.TempDir()}
	srv := New(cfg, tokens, scanner, observability.NewMetrics(), logger)
	t.Cleanup(func() { srv.Close() })

	env := &testEnv{server: srv, handler: srv.Routes()}

	status, body := env.do(t, http.MethodPost, "/api/v1/unlock", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, status, "unlock failed: %s", body)
	var unlock map[string]string
	require.NoError(t, json.Unmarshal(body, &unlock))
	env.token = unlock["token"]
	require.NotEmpty(t, env.token)

	return env
}

// do performs a request against the handler, attaching the session token
// when one has been issued.
func (e *testEnv) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func TestLockStatusAndUnlock(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/api/v1/lock-status", nil)
	require.Equal(t, http.StatusOK, status)
	var lockStatus map[string]bool
	require.NoError(t, json.Unmarshal(body, &lockStatus))
	require.False(t, lockStatus["locked"])
	require.False(t, lockStatus["needsPassword"])

	status, _ = env.do(t, http.MethodPost, "/api/v1/unlock", map[string]string{"password": "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/unlock", map[string]string{"password": ""})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestFirstUnlockRejectsWeakPassword(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("tilt-test", time.Hour)
	require.NoError(t, err)
	srv := New(&config.Config{DataDir: t.TempDir()}, tokens, nil, nil, logger)
	env := &testEnv{server: srv, handler: srv.Routes()}

	status, _ := env.do(t, http.MethodPost, "/api/v1/unlock", map[string]string{"password": "short"})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	env.token = ""

	status, _ := env.do(t, http.MethodGet, "/api/v1/vendors", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	env.token = "not-a-real-token"
	status, _ = env.do(t, http.MethodGet, "/api/v1/vendors", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	// Health stays open.
	env.token = ""
	status, _ = env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
}

func TestVendorCRUD(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/v1/vendors", map[string]any{
		"name":          "Acme Corp",
		"status":        risk.StatusStandard,
		"vulnerability": 40,
		"osint_urls":    map[string]string{"primary_domain": "acme.example"},
	})
	require.Equal(t, http.StatusCreated, status, "create failed: %s", body)
	var created vault.Vendor
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotZero(t, created.ID)

	status, body = env.do(t, http.MethodGet, "/api/v1/vendors", nil)
	require.Equal(t, http.StatusOK, status)
	var listed []vendorResponse
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	require.Equal(t, "Acme Corp", listed[0].Name)

	status, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/vendors/%d", created.ID), map[string]any{
		"name":          "Acme Corp",
		"status":        risk.StatusElite,
		"vulnerability": 10,
	})
	require.Equal(t, http.StatusOK, status, "update failed: %s", body)
	var updated vault.Vendor
	require.NoError(t, json.Unmarshal(body, &updated))
	require.Equal(t, risk.StatusElite, updated.Status)

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/vendors/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/vendors/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/vendors", map[string]string{"status": "x"})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestCalculateStandard(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/v1/assessment/calculate", map[string]any{
		"assessment_type": "standard",
		"answers":         map[string]int{"1": 5, "2": 5},
		"questions":       []map[string]any{{"id": 1}, {"id": 2}},
	})
	require.Equal(t, http.StatusOK, status, "calculate failed: %s", body)
	var rating risk.Rating
	require.NoError(t, json.Unmarshal(body, &rating))
	require.Equal(t, 20, rating.Vulnerability)
	require.InDelta(t, 6-5/1.2, rating.Impact, 0.0001)
	require.InDelta(t, 6-5/1.2, rating.Likelihood, 0.0001)
}

func TestCalculateStandardNullAnswers(t *testing.T) {
	env := newTestEnv(t)

	// Null entries mean unanswered: an all-null questionnaire scores the
	// same worst-case vulnerability and default pair as an empty one.
	status, body := env.do(t, http.MethodPost, "/api/v1/assessment/calculate", map[string]any{
		"assessment_type": "standard",
		"answers":         map[string]any{"1": nil, "2": nil},
		"questions":       []map[string]any{{"id": 1}, {"id": 2}},
	})
	require.Equal(t, http.StatusOK, status, "calculate failed: %s", body)
	var rating risk.Rating
	require.NoError(t, json.Unmarshal(body, &rating))
	require.Equal(t, 100, rating.Vulnerability)
	require.Equal(t, 3.0, rating.Impact)
	require.Equal(t, 3.0, rating.Likelihood)

	// A null alongside a real answer is simply skipped.
	status, body = env.do(t, http.MethodPost, "/api/v1/assessment/calculate", map[string]any{
		"assessment_type": "standard",
		"answers":         map[string]any{"1": 5, "2": nil},
		"questions":       []map[string]any{{"id": 1}, {"id": 2}},
	})
	require.Equal(t, http.StatusOK, status, "calculate failed: %s", body)
	require.NoError(t, json.Unmarshal(body, &rating))
	require.Equal(t, 20, rating.Vulnerability)
}

func TestCalculateCloudWithStoredCriteria(t *testing.T) {
	env := newTestEnv(t)

	// Full maturity on every seeded criterion scores the whole card.
	scores := map[string]int{}
	for i := 1; i <= 11; i++ {
		scores[fmt.Sprint(i)] = 5
	}
	status, body := env.do(t, http.MethodPost, "/api/v1/assessment/calculate", map[string]any{
		"assessment_type": "cloud",
		"cloudScores":     scores,
	})
	require.Equal(t, http.StatusOK, status, "calculate failed: %s", body)
	var rating risk.CloudRating
	require.NoError(t, json.Unmarshal(body, &rating))
	require.Equal(t, risk.CloudMaxScore, rating.Score)
	require.Equal(t, risk.StatusElite, rating.Status)
	require.False(t, rating.MissedCritical)
	require.Equal(t, 0, rating.Vulnerability)
}

func TestCalculateClientErrors(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/api/v1/assessment/calculate", map[string]any{
		"assessment_type": "quantum",
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/assessment/calculate", map[string]any{
		"assessment_type": "standard",
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/assessment/calculate", map[string]any{
		"assessment_type": "cloud",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestScanVendorFloorsVulnerability(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/v1/vendors", map[string]any{
		"name":          "Acme Corp",
		"status":        risk.StatusStandard,
		"vulnerability": 40,
		"osint_urls":    map[string]string{"primary_domain": "acme.example"},
	})
	require.Equal(t, http.StatusCreated, status)
	var created vault.Vendor
	require.NoError(t, json.Unmarshal(body, &created))

	status, body = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/osint/scan/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, status, "scan failed: %s", body)
	var scan scanResponse
	require.NoError(t, json.Unmarshal(body, &scan))

	// Failing certificate floors the stored score at 80.
	require.Equal(t, 80, scan.Vulnerability)
	require.Equal(t, "F", scan.Results.SSL)
	require.NotNil(t, scan.Results.Ransomware)
	require.False(t, *scan.Results.Ransomware)

	status, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/vendors/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var vendor vendorResponse
	require.NoError(t, json.Unmarshal(body, &vendor))
	require.Equal(t, 80, vendor.Vulnerability)
	require.NotEmpty(t, vendor.OSINTWarnings)
	require.Equal(t, "F", vendor.OSINTResults.SSL, "list must rebuild the ssl signal from warnings")
}

func TestScanVendorDomainFallback(t *testing.T) {
	vendor := vault.Vendor{Name: "Globex Industries"}
	require := require.New(t)
	require.Equal("globexindustries.com", scanDomain(vendor))

	vendor.OSINTURLs = map[string]string{"primary_domain": " globex.example "}
	require.Equal("globex.example", scanDomain(vendor))

	require.Empty(scanDomain(vault.Vendor{Name: "   "}))
}

func TestScanVendorNoDomain(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/v1/vendors", map[string]any{
		"name":   " ",
		"status": risk.StatusStandard,
	})
	// Blank-but-nonempty names pass creation validation; the scan is where
	// the missing domain surfaces.
	require.Equal(t, http.StatusCreated, status, "create failed: %s", body)
	var created vault.Vendor
	require.NoError(t, json.Unmarshal(body, &created))

	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/osint/scan/%d", created.ID), nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/osint/scan/9999", nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestSettingsRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/api/v1/settings", map[string]string{"orgName": "Briar Port Ltd"})
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, status)
	var settings map[string]string
	require.NoError(t, json.Unmarshal(body, &settings))
	require.Equal(t, "Briar Port Ltd", settings["orgName"])
}

func TestQuestionEndpoints(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/api/v1/questions/standard", nil)
	require.Equal(t, http.StatusOK, status)
	var questions []vault.Question
	require.NoError(t, json.Unmarshal(body, &questions))
	require.NotEmpty(t, questions)

	status, body = env.do(t, http.MethodPost, "/api/v1/questions/standard", map[string]any{
		"question": "Added over the API",
		"weight":   "Low",
	})
	require.Equal(t, http.StatusOK, status, "save failed: %s", body)
	var saved vault.Question
	require.NoError(t, json.Unmarshal(body, &saved))
	require.NotZero(t, saved.ID)

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/questions/standard/%d", saved.ID), nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/questions/standard/%d", saved.ID), nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestChangePasswordOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/api/v1/change-password", map[string]string{
		"current_password": "wrong", "new_password": "a-new-password",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/change-password", map[string]string{
		"current_password": testPassword, "new_password": "a-new-password",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/unlock", map[string]string{"password": "a-new-password"})
	require.Equal(t, http.StatusOK, status)
}
