package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/lastmile/config"
	"github.com/kilianp07/lastmile/core/dispatch"
	"github.com/kilianp07/lastmile/core/model"
)

func defaultConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SetDefaults()
	return cfg
}

func TestNewWiresService(t *testing.T) {
	svc, err := New(defaultConfig(), nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	assert.NotNil(t, svc.Scheduler)
	assert.Equal(t, 3, svc.Pool.Size())
}

func TestServiceRunsTicksWithInjectedSource(t *testing.T) {
	cfg := defaultConfig()
	src := dispatch.NewSliceSource(
		dispatch.IncomingOrder{Location: model.LatLng{Lat: 12.98, Lon: 77.60}, Volume: 12, Weight: 8, Priority: model.PriorityStandard},
	)
	svc, err := New(cfg, src)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	snap := svc.Scheduler.Tick(context.Background())
	assert.Equal(t, 1, snap.Tick)
	assert.Empty(t, snap.Pending, "a single small order should dispatch on the first tick")
}

func TestNewRejectsInvalidFleet(t *testing.T) {
	cfg := defaultConfig()
	cfg.Fleet.NumVehicles = -1
	_, err := New(cfg, nil)
	assert.Error(t, err)
}
