package injector

import (
	"os"

	"github.com/google/wire"

	"github.com/zeusync/outpost/internal/core/game"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/resource"
	"github.com/zeusync/outpost/internal/core/timer"
)

// SessionSet provides a game session from a game.Config.
var SessionSet = wire.NewSet(
	ProvideLogger,
	ProvideClock,
	ProvideLoader,
	game.NewSession,
)

// ProvideLogger builds the process logger at the configured level.
func ProvideLogger(cfg game.Config) log.Log {
	return log.New(cfg.LogLevel)
}

func ProvideClock() timer.Clock {
	return timer.SystemClock{}
}

// ProvideLoader reads assets from the configured root directory.
func ProvideLoader(cfg game.Config) resource.Loader {
	return resource.FSLoader(os.DirFS(cfg.AssetRoot))
}
