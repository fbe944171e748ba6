package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("proforma-reconciler", "1.0.0", nil, nil)
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	db := new(MockDatabaseChecker)
	db.On("Stats").Return(persistence.ConnectionStats{MaxOpenConnections: 25, OpenConnections: 2}, nil)
	sched := fakeSchedulerReporter{status: scheduler.Status{Enabled: true, Interval: "1h0m0s", Runs: 4}}
	h := NewSystemHandler("proforma-reconciler", "1.0.0", db, sched)

	w := serve(http.MethodGet, "/system/info", "/system/info", "", h.GetSystemInfo)

	assert.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	resp := decode(t, w, &info)
	assert.True(t, resp.Success)
	assert.Equal(t, "proforma-reconciler", info.Name)
	assert.Equal(t, "1.0.0", info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Uptime)
	require.NotNil(t, info.Database)
	assert.Equal(t, 25, info.Database.MaxOpenConnections)
	require.NotNil(t, info.Scheduler)
	assert.Equal(t, int64(4), info.Scheduler.Runs)
}

func TestSystemHandler_GetSystemInfoWithoutStats(t *testing.T) {
	db := new(MockDatabaseChecker)
	db.On("Stats").Return(persistence.ConnectionStats{}, errors.New("closed"))
	h := NewSystemHandler("proforma-reconciler", "1.0.0", db, nil)

	w := serve(http.MethodGet, "/system/info", "/system/info", "", h.GetSystemInfo)

	assert.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	decode(t, w, &info)
	assert.Nil(t, info.Database)
	assert.Nil(t, info.Scheduler)
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		db := new(MockDatabaseChecker)
		db.On("Ping", mock.Anything).Return(nil)
		h := NewSystemHandler("proforma-reconciler", "1.0.0", db, nil)

		w := serve(http.MethodGet, "/health", "/health", "", h.Health)

		assert.Equal(t, http.StatusOK, w.Code)
		var health HealthResponse
		decode(t, w, &health)
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, "ok", health.Database)
	})

	t.Run("database down", func(t *testing.T) {
		db := new(MockDatabaseChecker)
		db.On("Ping", mock.Anything).Return(errors.New("connection refused"))
		h := NewSystemHandler("proforma-reconciler", "1.0.0", db, nil)

		w := serve(http.MethodGet, "/health", "/health", "", h.Health)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var health HealthResponse
		resp := decode(t, w, &health)
		assert.False(t, resp.Success)
		assert.Equal(t, "unhealthy", health.Status)
		assert.Equal(t, "error", health.Database)
	})
}
