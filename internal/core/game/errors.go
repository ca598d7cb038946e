package game

import "errors"

var (
	ErrSessionClosed  = errors.New("session is closed")
	ErrSessionRunning = errors.New("session is already running")
	ErrNoArea         = errors.New("no area loaded")
	ErrUnknownPlanet  = errors.New("unknown planet")
	ErrNoPlanet       = errors.New("no current planet")
	ErrFinalPlanet    = errors.New("no planet after the current one")
)
