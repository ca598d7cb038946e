//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/outpost/internal/core/game"
)

func InitializeSession(cfg game.Config) (*game.Session, error) {
	wire.Build(SessionSet)
	return nil, nil
}
