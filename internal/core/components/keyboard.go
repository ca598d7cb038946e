package components

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/input"
)

// KeyMap maps movement keys to unit directions.
type KeyMap map[input.Key]mgl64.Vec2

// WASD is the player's default movement layout.
var WASD = KeyMap{
	input.KeyW: {0, 1},
	input.KeyA: {-1, 0},
	input.KeyS: {0, -1},
	input.KeyD: {1, 0},
}

// KeyboardInput turns key events into "walk", "walkStop" and "interact"
// events on its entity. It registers itself with the input service for the
// entity's lifetime.
type KeyboardInput struct {
	entity.Base

	service   *input.Service
	keys      KeyMap
	interact  input.Key
	priority  int
	direction mgl64.Vec2
	silent    bool
}

func NewKeyboardInput(service *input.Service, keys KeyMap) *KeyboardInput {
	if keys == nil {
		keys = WASD
	}
	return &KeyboardInput{
		service:  service,
		keys:     keys,
		interact: input.KeyE,
		priority: input.PriorityDefault,
	}
}

func (k *KeyboardInput) Kind() entity.Kind { return entity.KindInput }

func (k *KeyboardInput) Create() error {
	if k.service != nil {
		k.service.Register(k)
	}
	return nil
}

func (k *KeyboardInput) Dispose() {
	if k.service != nil {
		k.service.Unregister(k)
	}
}

func (k *KeyboardInput) Priority() int { return k.priority }

// SetSilent ignores input while true.
func (k *KeyboardInput) SetSilent(v bool) { k.silent = v }

func (k *KeyboardInput) KeyDown(key input.Key) bool {
	if k.silent || !k.Entity().IsActive() {
		return false
	}
	if key == k.interact {
		k.Entity().Events().Trigger(EventInteract)
		return true
	}
	dir, ok := k.keys[key]
	if !ok {
		return false
	}
	k.direction = k.direction.Add(dir)
	k.triggerWalk()
	return true
}

func (k *KeyboardInput) KeyUp(key input.Key) bool {
	if k.silent || !k.Entity().IsActive() {
		return false
	}
	dir, ok := k.keys[key]
	if !ok {
		return false
	}
	k.direction = k.direction.Sub(dir)
	k.triggerWalk()
	return true
}

func (k *KeyboardInput) triggerWalk() {
	if k.direction.Len() == 0 {
		k.Entity().Events().Trigger(EventWalkStop)
		return
	}
	k.Entity().Events().Trigger(EventWalk, k.direction)
}
