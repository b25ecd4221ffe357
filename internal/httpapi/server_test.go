package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johncarpenter/osdu-mcp-demo/internal/catalog"
	"github.com/johncarpenter/osdu-mcp-demo/internal/mcp"
	"github.com/johncarpenter/osdu-mcp-demo/internal/store"
	"github.com/johncarpenter/osdu-mcp-demo/internal/types"
)

func setupTestServer(t *testing.T, d *types.Dataset) *Server {
	t.Helper()
	s, err := store.NewMemoryStore(d)
	require.NoError(t, err)
	return NewServer(mcp.NewServer(catalog.New(s), "test", nil), s, "127.0.0.1:0", nil)
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMCPEndpoint(t *testing.T) {
	h := setupTestServer(t, types.Seed()).Handler()

	for _, path := range []string{"/mcp/", "/mcp"} {
		t.Run(path, func(t *testing.T) {
			rec := post(t, h, path, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"add_numbers","arguments":{"a":2,"b":3}}}`)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, float64(5), resp["result"])
			assert.Equal(t, float64(3), resp["id"])
		})
	}
}

func TestMCPEndpointProtocolErrorsAreOK(t *testing.T) {
	h := setupTestServer(t, types.Seed()).Handler()

	rec := post(t, h, "/mcp/", `{"jsonrpc":"2.0","method":"bogus"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp mcp.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.MethodNotFound, resp.Error.Code)
	assert.JSONEq(t, `1`, string(resp.ID))
}

func TestMCPEndpointInvalidJSON(t *testing.T) {
	h := setupTestServer(t, types.Seed()).Handler()

	bodies := []string{
		`{"jsonrpc":`,
		``,
		`{"jsonrpc":"2.0","method":"tools/list","id":3} trailing-garbage`,
		`{"jsonrpc":"2.0","method":"tools/list","id":3}{"x":`,
		`{"jsonrpc":"2.0","method":"ping","id":1}{"jsonrpc":"2.0","method":"ping","id":2}`,
	}
	for _, body := range bodies {
		rec := post(t, h, "/mcp/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Invalid JSON"}`, rec.Body.String(), body)
	}

	rec := post(t, h, "/mcp/", "{\"jsonrpc\":\"2.0\",\"method\":\"ping\",\"id\":1}\n")
	assert.Equal(t, http.StatusOK, rec.Code, "trailing whitespace is allowed")
}

func TestMCPEndpointRejectsWrongVersion(t *testing.T) {
	h := setupTestServer(t, types.Seed()).Handler()

	rec := post(t, h, "/mcp/", `{"jsonrpc":"1.0","id":4,"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp mcp.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.InvalidRequest, resp.Error.Code)
	assert.Equal(t, "Invalid JSON-RPC version", resp.Error.Message)
	assert.Nil(t, resp.Result)
}

func TestMethodNotAllowed(t *testing.T) {
	h := setupTestServer(t, types.Seed()).Handler()

	tests := []struct {
		method, path string
	}{
		{http.MethodGet, "/mcp/"},
		{http.MethodPut, "/mcp"},
		{http.MethodPost, "/"},
		{http.MethodDelete, "/"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tt.method, tt.path)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		data   *types.Dataset
		status string
		counts types.RecordCounts
	}{
		{"seeded", types.Seed(), "Data loaded successfully.", types.RecordCounts{Wells: 2, Trajectories: 2, Casings: 3}},
		{"empty", &types.Dataset{}, "Data failed to load.", types.RecordCounts{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestServer(t, tt.data).Handler()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var got Health
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.counts, got.RecordCounts)
		})
	}
}

func TestRequestID(t *testing.T) {
	h := setupTestServer(t, types.Seed()).Handler()

	first := post(t, h, "/mcp/", `{"method":"ping"}`).Header().Get(RequestIDHeader)
	second := post(t, h, "/mcp/", `{"method":"ping"}`).Header().Get(RequestIDHeader)

	_, err := uuid.Parse(first)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
}

// panicStore blows up on every count, to exercise recovery.
type panicStore struct {
	store.Store
}

func (panicStore) Counts(context.Context) (types.RecordCounts, error) {
	panic("boom")
}

func TestPanicRecovery(t *testing.T) {
	s, err := store.NewMemoryStore(types.Seed())
	require.NoError(t, err)
	srv := NewServer(mcp.NewServer(catalog.New(s), "test", nil), panicStore{s}, "127.0.0.1:0", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestServerStartStop(t *testing.T) {
	server := setupTestServer(t, types.Seed())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, server.Start(ctx))
	assert.True(t, server.IsRunning())
	assert.NotEqual(t, "127.0.0.1:0", server.Addr())

	assert.Error(t, server.Start(ctx), "second start should fail")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post("http://"+server.Addr()+"/mcp/", "application/json",
		bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "get_casings_for_well")

	require.NoError(t, server.Stop())
	assert.False(t, server.IsRunning())
	assert.NoError(t, server.Stop(), "stop should be idempotent")
}

func TestServerStopsOnContextCancel(t *testing.T) {
	server := setupTestServer(t, types.Seed())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, server.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !server.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}
