package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/services"
)

func newTravel(t *testing.T) (*PlanetTravel, *Screens, *gamestate.Store) {
	t.Helper()
	store := gamestate.New()
	screens := NewScreens(store, nil)
	return NewPlanetTravel(screens, store, "Earth", "Verdant", "Lava"), screens, store
}

func TestScreensRecordHistory(t *testing.T) {
	store := gamestate.New()
	s := NewScreens(store, nil)

	screen, planet := s.Current()
	assert.Equal(t, services.ScreenMainMenu, screen)
	assert.Empty(t, planet)

	s.SetPlanet("Earth")
	s.SetScreen(services.ScreenNavigation)

	screen, planet = s.Current()
	assert.Equal(t, services.ScreenNavigation, screen)
	assert.Empty(t, planet)
	assert.Equal(t, []services.ScreenType{services.ScreenMainMenu, services.ScreenPlanet}, s.History())

	v, ok := store.GetString(KeyCurrentScreen)
	require.True(t, ok)
	assert.Equal(t, "NAVIGATION_SCREEN", v)
}

func TestBeginFullTravel(t *testing.T) {
	travel, screens, _ := newTravel(t)

	travel.BeginFullTravel()
	screen, _ := screens.Current()
	assert.Equal(t, services.ScreenSpaceMini, screen)
}

func TestBeginInstantTravel(t *testing.T) {
	travel, screens, store := newTravel(t)

	assert.ErrorIs(t, travel.BeginInstantTravel(), ErrNoPlanet)

	var got []any
	store.AddListener(EventUpdatePlanet, func(args ...any) { got = append(got, args...) })
	store.Put(KeyCurrentPlanet, "Earth")

	require.NoError(t, travel.BeginInstantTravel())
	screen, planet := screens.Current()
	assert.Equal(t, services.ScreenPlanet, screen)
	assert.Equal(t, "Verdant", planet)
	assert.Equal(t, []any{KeyCurrentPlanet, "Verdant"}, got)

	require.NoError(t, travel.BeginInstantTravel())
	assert.ErrorIs(t, travel.BeginInstantTravel(), ErrFinalPlanet)

	cur, err := travel.Current()
	require.NoError(t, err)
	assert.Equal(t, "Lava", cur)
}

func TestReturnToCurrent(t *testing.T) {
	travel, screens, store := newTravel(t)

	assert.ErrorIs(t, travel.ReturnToCurrent(), ErrNoPlanet)

	store.Put(KeyCurrentPlanet, "Lava")
	screens.SetScreen(services.ScreenSpaceMap)
	require.NoError(t, travel.ReturnToCurrent())

	screen, planet := screens.Current()
	assert.Equal(t, services.ScreenPlanet, screen)
	assert.Equal(t, "Lava", planet)
}

func TestMoveToNextPlanet(t *testing.T) {
	travel, screens, _ := newTravel(t)

	require.NoError(t, travel.MoveToNextPlanet("Verdant"))
	screen, _ := screens.Current()
	assert.Equal(t, services.ScreenSpaceMap, screen)

	cur, err := travel.Current()
	require.NoError(t, err)
	assert.Equal(t, "Verdant", cur)

	assert.ErrorIs(t, travel.MoveToNextPlanet("Pluto"), ErrUnknownPlanet)
	_, err = travel.Next("Pluto")
	assert.ErrorIs(t, err, ErrUnknownPlanet)
}
