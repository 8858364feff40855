package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/apperror"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/call"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/setting"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testSecret = []byte("test-secret")

const testIssuer = "volterra-dashboard"

func signToken(t *testing.T, role string, issuer string, expiresIn time.Duration) string {
	t.Helper()

	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops@volterra.example",
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		Role: role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	return token
}

type fakeSummaries struct {
	callID  string
	prompt  string
	preview bool
	summary string
	err     error
}

func (f *fakeSummaries) GenerateSummary(_ context.Context, callID string, prompt string, preview bool) (string, error) {
	f.callID, f.prompt, f.preview = callID, prompt, preview
	return f.summary, f.err
}

type fakeReprocessor struct {
	callID   string
	testMode bool
	err      error
}

func (f *fakeReprocessor) Reprocess(_ context.Context, callID string, testMode bool) error {
	f.callID, f.testMode = callID, testMode
	return f.err
}

type fakeCalls struct {
	filter call.Filter
	calls  map[string]*call.Call
}

func (f *fakeCalls) GetCallByID(_ context.Context, callID string) (*call.Call, error) {
	record, ok := f.calls[callID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	return record, nil
}

func (f *fakeCalls) ListCalls(_ context.Context, filter call.Filter) ([]call.Call, error) {
	f.filter = filter

	var out []call.Call
	for _, record := range f.calls {
		out = append(out, *record)
	}

	return out, nil
}

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) GetSetting(_ context.Context, key string) (*setting.Setting, error) {
	value, ok := f.values[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	return &setting.Setting{Key: key, Value: value}, nil
}

func (f *fakeSettings) UpsertSetting(_ context.Context, s *setting.Setting) error {
	f.values[s.Key] = s.Value
	return nil
}

type apiFixture struct {
	summaries   *fakeSummaries
	reprocessor *fakeReprocessor
	calls       *fakeCalls
	settings    *fakeSettings
	router      http.Handler
}

func newAPIFixture(testMode bool) *apiFixture {
	f := &apiFixture{
		summaries:   &fakeSummaries{summary: "A short summary"},
		reprocessor: &fakeReprocessor{},
		calls:       &fakeCalls{calls: map[string]*call.Call{"c1": {ID: "c1", Status: call.StatusCompleted}}},
		settings:    &fakeSettings{values: map[string]string{}},
	}

	handler := NewHandler(f.summaries, f.reprocessor, f.calls, f.settings, testMode)
	f.router = NewRouter(handler, RouterConfig{
		JWTSecret:      testSecret,
		JWTIssuer:      testIssuer,
		RequestTimeout: 5 * time.Second,
	})

	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func TestHealthzIsPublic(t *testing.T) {
	rec := newAPIFixture(false).do(t, http.MethodGet, "/healthz", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAdminOnlyRejectsBadTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "not admin", token: signToken(t, "viewer", testIssuer, time.Hour)},
		{name: "expired", token: signToken(t, RoleAdmin, testIssuer, -time.Hour)},
		{name: "wrong issuer", token: signToken(t, RoleAdmin, "someone-else", time.Hour)},
		{name: "garbage", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(false)

			rec := f.do(t, http.MethodPost, "/api/calls/c1/reprocess", "", tt.token)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Empty(t, f.reprocessor.callID)
		})
	}
}

func TestGenerateSummaryEndpoint(t *testing.T) {
	f := newAPIFixture(false)
	token := signToken(t, RoleAdmin, testIssuer, time.Hour)

	rec := f.do(t, http.MethodPost, "/api/calls/c1/summary", `{"prompt":"Brief: {transcription}","preview":true}`, token)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"summary":"A short summary"}`, rec.Body.String())
	require.Equal(t, "c1", f.summaries.callID)
	require.Equal(t, "Brief: {transcription}", f.summaries.prompt)
	require.True(t, f.summaries.preview)
}

func TestGenerateSummaryEndpointAcceptsEmptyBody(t *testing.T) {
	f := newAPIFixture(false)
	token := signToken(t, RoleAdmin, testIssuer, time.Hour)

	rec := f.do(t, http.MethodPost, "/api/calls/c1/summary", "", token)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, f.summaries.prompt)
	require.False(t, f.summaries.preview)
}

func TestGenerateSummaryEndpointErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "transcript not found",
			err:      apperror.NotFound(apperror.ResourceTranscript),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"transcript not found"}`,
		},
		{
			name:     "upstream",
			err:      &apperror.UpstreamError{StatusCode: http.StatusTooManyRequests},
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"completion service request failed","status":429}`,
		},
		{
			name:     "empty completion",
			err:      apperror.ErrEmptyCompletion,
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"completion returned no content"}`,
		},
		{
			name:     "unexpected",
			err:      gorm.ErrInvalidDB,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(false)
			f.summaries.err = tt.err

			rec := f.do(t, http.MethodPost, "/api/calls/c1/summary", `{}`, signToken(t, RoleAdmin, testIssuer, time.Hour))

			require.Equal(t, tt.wantCode, rec.Code)
			require.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestGenerateSummaryEndpointRejectsMalformedBody(t *testing.T) {
	f := newAPIFixture(false)

	rec := f.do(t, http.MethodPost, "/api/calls/c1/summary", `{"prompt":12}`, signToken(t, RoleAdmin, testIssuer, time.Hour))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, f.summaries.callID)
}

func TestReprocessEndpointPassesTestMode(t *testing.T) {
	f := newAPIFixture(true)

	rec := f.do(t, http.MethodPost, "/api/calls/c1/reprocess", "", signToken(t, RoleAdmin, testIssuer, time.Hour))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
	require.Equal(t, "c1", f.reprocessor.callID)
	require.True(t, f.reprocessor.testMode)
}

func TestReprocessEndpointConfigurationError(t *testing.T) {
	f := newAPIFixture(false)
	f.reprocessor.err = apperror.Configuration("processing backend")

	rec := f.do(t, http.MethodPost, "/api/calls/c1/reprocess", "", signToken(t, RoleAdmin, testIssuer, time.Hour))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReprocessEndpointPersistenceError(t *testing.T) {
	f := newAPIFixture(false)
	f.reprocessor.err = apperror.Persistence("reset call", gorm.ErrInvalidDB)

	rec := f.do(t, http.MethodPost, "/api/calls/c1/reprocess", "", signToken(t, RoleAdmin, testIssuer, time.Hour))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListCallsEndpoint(t *testing.T) {
	f := newAPIFixture(false)
	token := signToken(t, RoleAdmin, testIssuer, time.Hour)

	rec := f.do(t, http.MethodGet, "/api/calls?status=completed&limit=10", "", token)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, call.Filter{Status: call.StatusCompleted, Limit: 10}, f.calls.filter)
	require.Contains(t, rec.Body.String(), `"id":"c1"`)

	rec = f.do(t, http.MethodGet, "/api/calls?status=archived", "", token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/calls?limit=ten", "", token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCallEndpoint(t *testing.T) {
	f := newAPIFixture(false)
	token := signToken(t, RoleAdmin, testIssuer, time.Hour)

	rec := f.do(t, http.MethodGet, "/api/calls/c1", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"completed"`)

	rec = f.do(t, http.MethodGet, "/api/calls/missing", "", token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingEndpoints(t *testing.T) {
	f := newAPIFixture(false)
	token := signToken(t, RoleAdmin, testIssuer, time.Hour)

	rec := f.do(t, http.MethodGet, "/api/settings/summary_prompt", "", token)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/settings/summary_prompt", `{"value":"Summarize: {transcription}"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Summarize: {transcription}", f.settings.values["summary_prompt"])

	rec = f.do(t, http.MethodGet, "/api/settings/summary_prompt", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"value":"Summarize: {transcription}"`)

	rec = f.do(t, http.MethodPut, "/api/settings/summary_prompt", `{"value":""}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
