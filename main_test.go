package main

import (
	"context"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stuartleeks/home-dash/weather-api/config"
)

func TestPruneEveryRunsOnTickAndStops(t *testing.T) {
	clk := fakeclock.NewFakeClock(time.Date(2024, 8, 7, 12, 0, 0, 0, time.UTC))
	core, logs := observer.New(zap.DebugLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pruned := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		pruneEvery(ctx, clk, time.Minute, zap.New(core), func() int {
			pruned <- struct{}{}
			return 3
		})
	}()

	clk.WaitForWatcherAndIncrement(time.Minute)
	select {
	case <-pruned:
	case <-time.After(time.Second):
		t.Fatal("prune was not called on tick")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruning loop did not stop after cancel")
	}
	require.Equal(t, 1, logs.FilterMessage("pruned expired entries").Len())
	assert.Equal(t, int64(3), logs.FilterMessage("pruned expired entries").All()[0].ContextMap()["count"])
}

func TestStartupFieldsRedactAPIKey(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := config.Default()
	c.Backend.APIKey = "secret-key"

	zap.New(core).Info("server starting", startupFields(c)...)

	entries := logs.FilterMessage("server starting").All()
	require.Len(t, entries, 1)
	logged, ok := entries[0].ContextMap()["config"].(config.Config)
	require.True(t, ok)
	assert.Equal(t, "********", logged.Backend.APIKey)
	assert.Equal(t, c.Server.Address, logged.Server.Address)
	assert.Equal(t, "secret-key", c.Backend.APIKey)
}
