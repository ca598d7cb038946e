package game

import (
	"fmt"
	"time"

	"github.com/zeusync/outpost/internal/core/observability/log"
)

// Config holds session settings.
type Config struct {
	TickInterval    time.Duration
	LogLevel        log.Level
	TelemetryAddr   string
	MapPath         string
	ToolsPath       string
	AssetRoot       string
	Planets         []string
	LoadParallelism int
	InboxSize       int
}

// DefaultConfig returns a 60 Hz session without a telemetry server.
func DefaultConfig() Config {
	return Config{
		TickInterval:    time.Second / 60,
		LogLevel:        log.LevelInfo,
		AssetRoot:       ".",
		Planets:         []string{"Earth", "Verdant", "Lava", "Frozen"},
		LoadParallelism: 4,
		InboxSize:       64,
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.TickInterval <= 0:
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	case len(c.Planets) == 0:
		return fmt.Errorf("planet route is empty")
	case c.LoadParallelism < 1:
		return fmt.Errorf("load parallelism must be at least 1, got %d", c.LoadParallelism)
	}
	return nil
}
