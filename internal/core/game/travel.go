package game

import (
	"fmt"
	"slices"

	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/services"
)

const (
	EventUpdatePlanet = "updatePlanet"
	KeyCurrentPlanet  = "currentPlanet"
)

// PlanetScreens is the screen surface travel needs.
type PlanetScreens interface {
	services.Screens
	SetPlanet(name string)
}

// PlanetTravel moves the session along a fixed route of planets. The
// current planet lives in the game state under KeyCurrentPlanet.
type PlanetTravel struct {
	screens PlanetScreens
	store   *gamestate.Store
	route   []string
}

func NewPlanetTravel(screens PlanetScreens, store *gamestate.Store, route ...string) *PlanetTravel {
	return &PlanetTravel{screens: screens, store: store, route: slices.Clone(route)}
}

// Route returns the planets in travel order.
func (p *PlanetTravel) Route() []string { return slices.Clone(p.route) }

// BeginFullTravel starts the in-between minigame.
func (p *PlanetTravel) BeginFullTravel() {
	p.screens.SetScreen(services.ScreenSpaceMini)
}

// BeginInstantTravel skips straight to the planet after the current one.
func (p *PlanetTravel) BeginInstantTravel() error {
	cur, err := p.Current()
	if err != nil {
		return err
	}
	next, err := p.Next(cur)
	if err != nil {
		return err
	}
	p.store.Trigger(EventUpdatePlanet, KeyCurrentPlanet, next)
	p.screens.SetPlanet(next)
	return nil
}

// ReturnToCurrent shows the current planet again.
func (p *PlanetTravel) ReturnToCurrent() error {
	cur, err := p.Current()
	if err != nil {
		return err
	}
	p.screens.SetPlanet(cur)
	return nil
}

// MoveToNextPlanet records planet as current and opens the space map.
func (p *PlanetTravel) MoveToNextPlanet(planet string) error {
	if !slices.Contains(p.route, planet) {
		return fmt.Errorf("%w: %q", ErrUnknownPlanet, planet)
	}
	p.screens.SetScreen(services.ScreenSpaceMap)
	p.store.Trigger(EventUpdatePlanet, KeyCurrentPlanet, planet)
	return nil
}

// Current returns the planet stored in the game state.
func (p *PlanetTravel) Current() (string, error) {
	cur, ok := p.store.GetString(KeyCurrentPlanet)
	if !ok {
		return "", ErrNoPlanet
	}
	return cur, nil
}

// Next returns the planet after planet on the route.
func (p *PlanetTravel) Next(planet string) (string, error) {
	i := slices.Index(p.route, planet)
	switch {
	case i < 0:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlanet, planet)
	case i == len(p.route)-1:
		return "", ErrFinalPlanet
	}
	return p.route[i+1], nil
}
