package game

import (
	"sync"

	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/observability/log"
	"github.com/zeusync/outpost/internal/core/services"
)

const (
	EventUpdateScreen = "updateScreen"
	KeyCurrentScreen  = "currentScreen"
)

var _ services.Screens = (*Screens)(nil)

// Screens tracks the visible screen of a headless session and mirrors every
// switch into the game state under KeyCurrentScreen.
type Screens struct {
	mu      sync.RWMutex
	current services.ScreenType
	planet  string
	history []services.ScreenType

	store  *gamestate.Store
	logger log.Log
}

func NewScreens(store *gamestate.Store, logger log.Log) *Screens {
	return &Screens{
		current: services.ScreenMainMenu,
		store:   store,
		logger:  log.OrNop(logger).With(log.Component("screens")),
	}
}

func (s *Screens) SetScreen(t services.ScreenType) {
	s.set(t, "")
}

// SetPlanet shows the planet screen for name.
func (s *Screens) SetPlanet(name string) {
	s.set(services.ScreenPlanet, name)
}

func (s *Screens) set(t services.ScreenType, planet string) {
	s.mu.Lock()
	s.history = append(s.history, s.current)
	s.current = t
	if t == services.ScreenPlanet {
		s.planet = planet
	}
	s.mu.Unlock()

	s.logger.Debug("screen changed", log.String("screen", t.String()), log.String("planet", planet))
	if s.store != nil {
		s.store.Trigger(EventUpdateScreen, KeyCurrentScreen, t.String())
	}
}

// Current returns the visible screen and, for planet screens, the planet.
func (s *Screens) Current() (services.ScreenType, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current != services.ScreenPlanet {
		return s.current, ""
	}
	return s.current, s.planet
}

// History returns the screens shown before the current one, oldest first.
func (s *Screens) History() []services.ScreenType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]services.ScreenType(nil), s.history...)
}
