package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fast-gateway-protocol/github/internal/config"
	"github.com/fast-gateway-protocol/github/internal/service"
)

type stubDispatcher struct {
	dispatch func(method string, params map[string]any) (any, *service.Error)
	health   func() map[string]service.HealthStatus
}

func (d *stubDispatcher) Name() string { return "github" }

func (d *stubDispatcher) Methods() []*service.Method {
	return []*service.Method{{Name: "echo", Description: "Echo params back"}}
}

func (d *stubDispatcher) Dispatch(method string, params map[string]any) (any, *service.Error) {
	if d.dispatch != nil {
		return d.dispatch(method, params)
	}
	return map[string]any{"method": method, "params": params}, nil
}

func (d *stubDispatcher) HealthCheck() map[string]service.HealthStatus {
	if d.health != nil {
		return d.health()
	}
	return map[string]service.HealthStatus{"github_api": {Healthy: true}}
}

func testConfig(t *testing.T) config.GatewayConfig {
	t.Helper()
	cfg := config.Defaults().Gateway
	cfg.Socket = filepath.Join(t.TempDir(), "daemon.sock")
	return cfg
}

// startServer runs a gateway over the stub and blocks until the socket
// accepts connections.
func startServer(t *testing.T, cfg config.GatewayConfig, d Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srv := New(cfg, d, testLogger())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.Dial("unix", cfg.Socket)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("socket never came up")
}

func dial(t *testing.T, socket string) *Client {
	t.Helper()
	c, err := Dial(socket, 3*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSocketRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	startServer(t, cfg, &stubDispatcher{})

	c := dial(t, cfg.Socket)
	resp, err := c.Call("echo", map[string]any{"word": "hi"})
	require.NoError(t, err)
	require.True(t, resp.OK)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "echo", result["method"])
}

func TestSocketDispatchError(t *testing.T) {
	cfg := testConfig(t)
	startServer(t, cfg, &stubDispatcher{
		dispatch: func(method string, params map[string]any) (any, *service.Error) {
			return nil, service.Errorf(service.CodeNotFound, "no such repo")
		},
	})

	c := dial(t, cfg.Socket)
	resp, err := c.Call("issues", map[string]any{"repo": "golang/gone"})
	require.NoError(t, err)
	require.False(t, resp.OK)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "no such repo", resp.Error.Message)
}

func TestSocketMalformedLine(t *testing.T) {
	cfg := testConfig(t)
	startServer(t, cfg, &stubDispatcher{})

	conn, err := net.Dial("unix", cfg.Socket)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("this is not json\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	line := string(buf[:n])
	assert.Contains(t, line, `"ok":false`)
	assert.Contains(t, line, "VALIDATION_FAILED")
}

func TestSocketMethodsBuiltin(t *testing.T) {
	cfg := testConfig(t)
	startServer(t, cfg, &stubDispatcher{})

	c := dial(t, cfg.Socket)
	for _, name := range []string{"methods", "github.methods"} {
		resp, err := c.Call(name, nil)
		require.NoError(t, err)
		require.True(t, resp.OK, "method %s", name)

		result := resp.Result.(map[string]any)
		assert.Equal(t, "github", result["service"])
		assert.Equal(t, float64(ProtocolVersion), result["protocol"])
		methods := result["methods"].([]any)
		require.Len(t, methods, 1)
	}
}

func TestSocketGatewayHealth(t *testing.T) {
	cfg := testConfig(t)
	startServer(t, cfg, &stubDispatcher{})

	c := dial(t, cfg.Socket)
	resp, err := c.Call("gateway.health", nil)
	require.NoError(t, err)
	require.True(t, resp.OK)
	result := resp.Result.(map[string]any)
	assert.Equal(t, "healthy", result["status"])
}

func TestSocketSequentialRequests(t *testing.T) {
	cfg := testConfig(t)
	startServer(t, cfg, &stubDispatcher{})

	c := dial(t, cfg.Socket)
	for i := 0; i < 5; i++ {
		resp, err := c.Call("echo", nil)
		require.NoError(t, err)
		assert.True(t, resp.OK)
	}
}

func TestStaleSocketReplaced(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Socket, nil, 0o600))

	startServer(t, cfg, &stubDispatcher{})

	c := dial(t, cfg.Socket)
	resp, err := c.Call("echo", nil)
	require.NoError(t, err)
	assert.True(t, resp.OK)
}

func TestRequestTooLong(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxLineBytes = 2048
	startServer(t, cfg, &stubDispatcher{})

	conn, err := net.Dial("unix", cfg.Socket)
	require.NoError(t, err)
	defer conn.Close()

	big := `{"id":"r1","method":"echo","params":{"pad":"` + strings.Repeat("x", 8192) + `"}}` + "\n"
	_, err = conn.Write([]byte(big))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 8192)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "VALIDATION_FAILED")
}

func newHTTPTestServer(t *testing.T, d Dispatcher) *httptest.Server {
	t.Helper()
	cfg := testConfig(t)
	s := New(cfg, d, testLogger())
	s.startedAt = time.Now()
	mux := http.NewServeMux()
	s.registerHTTPRoutes(mux)
	ts := httptest.NewServer(withMiddleware(mux, testLogger(), cfg.AllowedOrigins))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPHealth(t *testing.T) {
	ts := newHTTPTestServer(t, &stubDispatcher{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPHealthUnhealthy(t *testing.T) {
	ts := newHTTPTestServer(t, &stubDispatcher{
		health: func() map[string]service.HealthStatus {
			return map[string]service.HealthStatus{"github_api": {Healthy: false, Error: "down"}}
		},
	})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHTTPRPC(t *testing.T) {
	ts := newHTTPTestServer(t, &stubDispatcher{})

	resp, err := http.Post(ts.URL+"/rpc", "application/json",
		strings.NewReader(`{"id":"r1","method":"echo"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := make([]byte, 4096)
	n, _ := resp.Body.Read(buf)
	body := string(buf[:n])
	assert.Contains(t, body, `"id":"r1"`)
	assert.Contains(t, body, `"ok":true`)
}

func TestHTTPRPCBodyTooLarge(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxLineBytes = 2048
	s := New(cfg, &stubDispatcher{}, testLogger())
	s.startedAt = time.Now()
	mux := http.NewServeMux()
	s.registerHTTPRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	big := `{"id":"r1","method":"echo","params":{"pad":"` + strings.Repeat("x", 4096) + `"}}`
	resp, err := http.Post(ts.URL+"/rpc", "application/json", strings.NewReader(big))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHTTPRPCBodyReadError(t *testing.T) {
	s := New(testConfig(t), &stubDispatcher{}, testLogger())
	s.startedAt = time.Now()

	req := httptest.NewRequest(http.MethodPost, "/rpc", failingReader{})
	rec := httptest.NewRecorder()
	s.handleHTTPRPC(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestHTTPNotFound(t *testing.T) {
	ts := newHTTPTestServer(t, &stubDispatcher{})

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketRPC(t *testing.T) {
	ts := newHTTPTestServer(t, &stubDispatcher{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"w1","method":"echo"}`))
	require.NoError(t, err)

	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "w1", resp.ID)
	assert.True(t, resp.OK)
}
