package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/outpost/internal/core/game"
	"github.com/zeusync/outpost/internal/core/services"
)

func TestInitializeSession(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.AssetRoot = t.TempDir()

	s, err := InitializeSession(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.True(t, s.Locator().Has(services.RoleResource))
	assert.Equal(t, cfg.TickInterval, s.Config().TickInterval)
}

func TestInitializeSessionRejectsBadConfig(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.LoadParallelism = 0

	_, err := InitializeSession(cfg)
	require.Error(t, err)
}
