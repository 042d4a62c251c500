package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitdocai/gitdocai/internal/config"
	"github.com/gitdocai/gitdocai/internal/engine"
	"github.com/gitdocai/gitdocai/internal/export"
	"github.com/gitdocai/gitdocai/internal/generate"
	"github.com/gitdocai/gitdocai/internal/store"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

func init() {
	// Initialize logger for tests
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})
}

func setupTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	testStore, cleanup := store.SetupTestDB(t)
	t.Cleanup(cleanup)

	client := generate.NewClient(generate.ClientConfig{})
	testEngine := engine.NewEngine(cfg, testStore, client)
	testEngine.Start()
	t.Cleanup(testEngine.Stop)

	return New(cfg, testEngine, testStore, client, export.NewEmptyManager())
}

func testServerConfig(port int) *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "localhost"
	cfg.Server.Port = port
	return cfg
}

// TestServer_New tests creating a new server instance
func TestServer_New(t *testing.T) {
	cfg := testServerConfig(8080)
	srv := setupTestServer(t, cfg)

	require.NotNil(t, srv)
	assert.Equal(t, cfg, srv.cfg)
	assert.NotNil(t, srv.engine)
	assert.NotNil(t, srv.store)
	assert.NotNil(t, srv.router)
}

// TestServer_SetupRoutes tests setting up routes
func TestServer_SetupRoutes(t *testing.T) {
	srv := setupTestServer(t, testServerConfig(8080))
	srv.SetupRoutes()

	req := httptest.NewRequest("GET", "/api/v1/queue/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

// TestServer_Start tests starting the server
func TestServer_Start(t *testing.T) {
	// Port 0 for automatic port assignment in tests
	srv := setupTestServer(t, testServerConfig(0))
	srv.SetupRoutes()

	err := srv.Start()
	require.NoError(t, err)
	assert.NotNil(t, srv.httpServer)

	err = srv.Stop()
	require.NoError(t, err)
}

// TestServer_Stop tests stopping the server
func TestServer_Stop(t *testing.T) {
	srv := setupTestServer(t, testServerConfig(0))
	srv.SetupRoutes()

	// Stop without starting should not error
	err := srv.Stop()
	require.NoError(t, err)

	// Start and then stop
	err = srv.Start()
	require.NoError(t, err)

	// Give server a moment to start
	time.Sleep(100 * time.Millisecond)

	err = srv.Stop()
	require.NoError(t, err)
}

// TestServer_Stop_WithTimeout tests stopping server with timeout
func TestServer_Stop_WithTimeout(t *testing.T) {
	srv := setupTestServer(t, testServerConfig(0))
	srv.SetupRoutes()

	err := srv.Start()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error)
	go func() {
		done <- srv.Stop()
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("Stop() timed out")
	}
}

// TestServer_Router tests getting the router
func TestServer_Router(t *testing.T) {
	srv := setupTestServer(t, testServerConfig(8080))
	router := srv.Router()

	assert.NotNil(t, router)
	assert.Equal(t, srv.router, router)
}

// TestServer_Address tests server address configuration
func TestServer_Address(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.ServerConfig
		expected string
	}{
		{
			name: "default port",
			cfg: config.ServerConfig{
				Host: "localhost",
				Port: 8080,
			},
			expected: "localhost:8080",
		},
		{
			name: "custom host and port",
			cfg: config.ServerConfig{
				Host: "0.0.0.0",
				Port: 3000,
			},
			expected: "0.0.0.0:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address := tt.cfg.Address()
			assert.Equal(t, tt.expected, address)
		})
	}
}

// TestServer_DebugMode tests debug mode configuration
func TestServer_DebugMode(t *testing.T) {
	tests := []struct {
		name     string
		debug    bool
		expected string
	}{
		{
			name:     "debug mode enabled",
			debug:    true,
			expected: gin.DebugMode,
		},
		{
			name:     "debug mode disabled",
			debug:    false,
			expected: gin.ReleaseMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testServerConfig(8080)
			cfg.Server.Debug = tt.debug

			_ = setupTestServer(t, cfg)
			assert.Equal(t, tt.expected, gin.Mode())
		})
	}
}

// TestServer_HTTPTimeouts tests HTTP server timeout configuration
func TestServer_HTTPTimeouts(t *testing.T) {
	srv := setupTestServer(t, testServerConfig(0))
	srv.SetupRoutes()

	err := srv.Start()
	require.NoError(t, err)
	defer srv.Stop()

	assert.Equal(t, defaultReadTimeout, srv.httpServer.ReadTimeout)
	assert.Equal(t, defaultWriteTimeout, srv.httpServer.WriteTimeout)
	assert.Equal(t, defaultIdleTimeout, srv.httpServer.IdleTimeout)
}

// TestServer_RouterConfiguration tests router configuration
func TestServer_RouterConfiguration(t *testing.T) {
	srv := setupTestServer(t, testServerConfig(8080))

	assert.False(t, srv.router.RedirectTrailingSlash)
	assert.False(t, srv.router.RedirectFixedPath)
}
