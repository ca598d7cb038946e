package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/gamestate"
	"github.com/zeusync/outpost/internal/core/timer"
)

type screens struct{ last ScreenType }

func (s *screens) SetScreen(t ScreenType) { s.last = t }

func TestGetUnregisteredFails(t *testing.T) {
	l := NewLocator(nil)

	_, err := l.Entities()
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Contains(t, err.Error(), "EntityService")

	assert.Panics(t, func() { Must[*gamestate.Store](l, RoleGameState) })
	assert.Nil(t, l.Render())
}

func TestLastRegistrationWins(t *testing.T) {
	l := NewLocator(nil)
	first, second := gamestate.New(), gamestate.New()

	l.Register(RoleGameState, first)
	l.Register(RoleGameState, second)

	got, err := l.GameState()
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.NotSame(t, first, got)
}

func TestWrongType(t *testing.T) {
	l := NewLocator(nil)
	l.Register(RoleScheduler, gamestate.New())

	_, err := l.Scheduler()
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestInterfaceRoles(t *testing.T) {
	l := NewLocator(nil)
	s := &screens{}
	l.Register(RoleScreens, s)

	got, err := l.Screens()
	require.NoError(t, err)
	got.SetScreen(ScreenNavigation)
	assert.Equal(t, ScreenNavigation, s.last)
	assert.Equal(t, "NAVIGATION_SCREEN", s.last.String())

	_, err = l.Terrain()
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestClearResetsEverything(t *testing.T) {
	l := NewLocator(nil)
	l.Register(RoleEntity, entity.NewRegistry())
	l.Register(RoleScheduler, timer.NewScheduler(nil))
	require.True(t, l.Has(RoleEntity))

	l.Clear()

	assert.False(t, l.Has(RoleEntity))
	_, err := l.Scheduler()
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestRoleNames(t *testing.T) {
	assert.Equal(t, "GameStateObserver", RoleGameState.String())
	assert.Equal(t, "UnknownService", Role(99).String())
	assert.Panics(t, func() { NewLocator(nil).Register(Role(99), 1) })
}
