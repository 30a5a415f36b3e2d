package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticCheck(name string, critical bool, status HealthStatus) HealthChecker {
	return NewHealthCheckFunc(name, critical, func(ctx context.Context) HealthCheck {
		return HealthCheck{Status: status, Message: string(status)}
	})
}

func TestHealthCheckFunc(t *testing.T) {
	t.Run("create health check function", func(t *testing.T) {
		checkFn := NewHealthCheckFunc("test_check", true, func(ctx context.Context) HealthCheck {
			return HealthCheck{
				Status:  HealthStatusHealthy,
				Message: "All good",
			}
		})

		assert.Equal(t, "test_check", checkFn.Name())
		assert.True(t, checkFn.IsCritical())

		result := checkFn.Check(context.Background())
		assert.Equal(t, HealthStatusHealthy, result.Status)
		assert.Equal(t, "All good", result.Message)
	})

	t.Run("health check with context timeout", func(t *testing.T) {
		checkFn := NewHealthCheckFunc("slow_check", false, func(ctx context.Context) HealthCheck {
			select {
			case <-time.After(time.Second):
				return HealthCheck{Status: HealthStatusHealthy}
			case <-ctx.Done():
				return HealthCheck{Status: HealthStatusUnhealthy, Message: "Timeout"}
			}
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		result := checkFn.Check(ctx)
		assert.Equal(t, HealthStatusUnhealthy, result.Status)
		assert.Equal(t, "Timeout", result.Message)
	})
}

func TestHealthMonitorRegistration(t *testing.T) {
	hm := NewHealthMonitor("v1.0.0", nil)

	hm.RegisterCheck(staticCheck("b", false, HealthStatusHealthy))
	hm.RegisterCheck(staticCheck("a", false, HealthStatusHealthy))
	hm.RegisterCheck(staticCheck("a", true, HealthStatusHealthy))
	assert.Equal(t, []string{"a", "b"}, hm.Checks())

	hm.UnregisterCheck("b")
	assert.Equal(t, []string{"a"}, hm.Checks())
}

func TestHealthMonitorCheck(t *testing.T) {
	tests := []struct {
		name     string
		checks   []HealthChecker
		expected HealthStatus
		summary  HealthSummary
	}{
		{
			name:     "no checks",
			expected: HealthStatusHealthy,
		},
		{
			name: "all healthy",
			checks: []HealthChecker{
				staticCheck("one", true, HealthStatusHealthy),
				staticCheck("two", false, HealthStatusHealthy),
			},
			expected: HealthStatusHealthy,
			summary:  HealthSummary{Total: 2, Healthy: 2, Critical: 1},
		},
		{
			name: "non-critical failure degrades",
			checks: []HealthChecker{
				staticCheck("one", true, HealthStatusHealthy),
				staticCheck("two", false, HealthStatusUnhealthy),
			},
			expected: HealthStatusDegraded,
			summary:  HealthSummary{Total: 2, Healthy: 1, Unhealthy: 1, Critical: 1},
		},
		{
			name: "critical degradation degrades",
			checks: []HealthChecker{
				staticCheck("one", true, HealthStatusDegraded),
			},
			expected: HealthStatusDegraded,
			summary:  HealthSummary{Total: 1, Degraded: 1, Critical: 1},
		},
		{
			name: "critical failure is unhealthy",
			checks: []HealthChecker{
				staticCheck("one", true, HealthStatusUnhealthy),
				staticCheck("two", false, HealthStatusDegraded),
			},
			expected: HealthStatusUnhealthy,
			summary:  HealthSummary{Total: 2, Unhealthy: 1, Degraded: 1, Critical: 1},
		},
		{
			name: "empty status is unknown",
			checks: []HealthChecker{
				staticCheck("one", false, ""),
			},
			expected: HealthStatusDegraded,
			summary:  HealthSummary{Total: 1, Unknown: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hm := NewHealthMonitor("v1.0.0", nil)
			for _, check := range tt.checks {
				hm.RegisterCheck(check)
			}

			health := hm.Check(context.Background())
			assert.Equal(t, tt.expected, health.Status)
			assert.Equal(t, tt.summary, health.Summary)
			assert.Equal(t, "v1.0.0", health.Version)
			assert.Len(t, health.Checks, len(tt.checks))
			assert.NotEmpty(t, health.SystemInfo.GoVersion)
		})
	}
}

func TestHealthMonitorFillsNames(t *testing.T) {
	hm := NewHealthMonitor("", nil)
	hm.RegisterCheck(staticCheck("registry", true, HealthStatusHealthy))

	health := hm.Check(context.Background())
	check := health.Checks["registry"]
	assert.Equal(t, "registry", check.Name)
	assert.True(t, check.Critical)
}

func TestHealthMonitorTimeout(t *testing.T) {
	hm := NewHealthMonitor("", nil)
	hm.timeout = 20 * time.Millisecond
	hm.RegisterCheck(NewHealthCheckFunc("slow", true, func(ctx context.Context) HealthCheck {
		<-ctx.Done()
		return HealthCheck{Status: HealthStatusUnhealthy, Message: ctx.Err().Error()}
	}))

	start := time.Now()
	health := hm.Check(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, HealthStatusUnhealthy, health.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), health.Checks["slow"].Message)
}

func TestHTTPHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		hm := NewHealthMonitor("v1.0.0", nil)
		hm.RegisterCheck(staticCheck("one", true, HealthStatusHealthy))

		rec := httptest.NewRecorder()
		hm.HTTPHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var health HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		assert.Equal(t, HealthStatusHealthy, health.Status)
		assert.Equal(t, "v1.0.0", health.Version)
	})

	t.Run("degraded still serves 200", func(t *testing.T) {
		hm := NewHealthMonitor("", nil)
		hm.RegisterCheck(staticCheck("one", false, HealthStatusUnhealthy))

		rec := httptest.NewRecorder()
		hm.HTTPHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unhealthy serves 503", func(t *testing.T) {
		hm := NewHealthMonitor("", nil)
		hm.RegisterCheck(staticCheck("one", true, HealthStatusUnhealthy))

		rec := httptest.NewRecorder()
		hm.HTTPHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestDirectoryHealthChecker(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name     string
		path     string
		expected HealthStatus
	}{
		{"readable directory", dir, HealthStatusHealthy},
		{"missing directory", filepath.Join(dir, "missing"), HealthStatusUnhealthy},
		{"regular file", file, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := DirectoryHealthChecker("root", tt.path, true)
			assert.Equal(t, "root", checker.Name())
			assert.True(t, checker.IsCritical())

			result := checker.Check(context.Background())
			assert.Equal(t, tt.expected, result.Status)
			assert.NotEmpty(t, result.Message)
		})
	}
}

func TestGoroutineHealthChecker(t *testing.T) {
	checker := GoroutineHealthChecker()
	assert.Equal(t, "goroutines", checker.Name())
	assert.False(t, checker.IsCritical())

	result := checker.Check(context.Background())
	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Greater(t, result.Metadata["count"], 0)
}
