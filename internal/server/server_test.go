package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codexswitch/internal/config"
	"codexswitch/internal/data/db"
	"codexswitch/internal/diagnose"
)

func newTestServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()
	store, err := config.NewStore(config.WithDir(t.TempDir()))
	require.NoError(t, err)
	opts = append([]ServerOption{
		WithProbeEngine(diagnose.New(
			diagnose.WithoutLatencyProbe(),
			diagnose.WithSleep(func(time.Duration) {}),
		)),
	}, opts...)
	return NewServer(store, opts...)
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)
	recorder := doJSON(t, server, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp HealthCheckResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "codexswitch", resp.Service)
}

func TestAccountLifecycle(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/accounts", AccountRequest{
		Name:    "work",
		BaseURL: "https://relay.example.com/v1",
		APIKey:  "sk-1234567890abcdef",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var created AccountResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	require.True(t, created.Success)
	require.NotNil(t, created.Account)
	assert.Equal(t, "proxy", created.Account.AccountType)
	assert.NotContains(t, created.Account.KeyPreview, "7890abcd")

	recorder = doJSON(t, server, http.MethodGet, "/api/accounts", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var list AccountListResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &list))
	require.True(t, list.Success)
	require.Len(t, list.Accounts, 1)
	assert.Equal(t, "work", list.Accounts[0].Name)
	assert.False(t, list.Accounts[0].Active)

	recorder = doJSON(t, server, http.MethodDelete, "/api/accounts/work", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodDelete, "/api/accounts/work", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUpsertAccountValidation(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/accounts", map[string]string{"name": "x"})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	var resp AccountResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_request_error", resp.Error.Type)
}

func TestActivateAccountAppliesConfig(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/accounts", AccountRequest{
		Name:    "corp",
		BaseURL: "https://corp.example.com/v1",
		APIKey:  "sk-corp-1234567890",
		OrgID:   "org-1",
		IsTeam:  true,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/accounts/corp/activate", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var resp AccountResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	assert.True(t, resp.Account.Active)

	active, ok := server.store.Active()
	require.True(t, ok)
	assert.Equal(t, "corp", active.Name)
}

func TestDiagnoseEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/v1/chat/completions" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"chatcmpl-1","model":"gpt-5","choices":[{"message":{"content":"ok"}}]}`))
			return
		}
		http.Error(w, `{"error":{"message":"not found"}}`, http.StatusNotFound)
	}))
	defer upstream.Close()

	history, err := db.NewHistoryStore(t.TempDir())
	require.NoError(t, err)
	defer history.Close()
	server := newTestServer(t, WithHistoryStore(history))

	recorder := doJSON(t, server, http.MethodPost, "/api/diagnose", DiagnoseRequest{
		BaseURL: upstream.URL,
		APIKey:  "sk-test",
		Model:   "gpt-5",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var resp DiagnoseResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Report)
	assert.Contains(t, resp.Report.Conclusion, "link is healthy")
	assert.Contains(t, recorder.Body.String(), `"supported":"yes"`)
	assert.NotContains(t, recorder.Body.String(), "sk-test")

	records, err := history.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "yes", records[0].ModelSupported)
}

func TestDiagnoseInvalidBaseURL(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/diagnose", DiagnoseRequest{
		BaseURL: "not-a-url",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	var resp DiagnoseResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
}

func TestDiagnoseResolvesStoredAccount(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"unauthorized"}}`, http.StatusUnauthorized)
	}))
	defer upstream.Close()

	server := newTestServer(t)
	require.NoError(t, server.store.Upsert("work", config.Profile{
		BaseURL: upstream.URL,
		APIKey:  "sk-stored",
	}, false))

	recorder := doJSON(t, server, http.MethodPost, "/api/diagnose", DiagnoseRequest{
		BaseURL: upstream.URL,
		Account: "work",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/diagnose", DiagnoseRequest{
		BaseURL: upstream.URL,
		Account: "missing",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestModelProbeEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"resp-1","object":"response","model":"gpt-5","status":"completed"}`))
	}))
	defer upstream.Close()

	server := newTestServer(t)
	recorder := doJSON(t, server, http.MethodPost, "/api/probe", ModelProbeRequest{
		BaseURL: upstream.URL,
		APIKey:  "sk-test",
		Model:   "gpt-5",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var resp ModelProbeResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.OK)
	assert.Equal(t, "gpt-5", resp.Result.Model)
}

func TestHistoryEndpointWithoutStore(t *testing.T) {
	server := newTestServer(t)
	recorder := doJSON(t, server, http.MethodGet, "/api/history", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}
