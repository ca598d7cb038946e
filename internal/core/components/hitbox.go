package components

import (
	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/events/bus"
	"github.com/zeusync/outpost/internal/core/physics"
)

// Hitbox owns the entity's contact fixture and keeps it registered with the
// physics world for the entity's lifetime.
type Hitbox struct {
	entity.Base

	world   *physics.World
	layer   physics.Layer
	mask    physics.Layer
	fixture *physics.Fixture
}

// NewHitbox creates a hitbox on layer colliding with mask. world may be nil
// when contacts are dispatched by hand.
func NewHitbox(world *physics.World, layer, mask physics.Layer) *Hitbox {
	return &Hitbox{world: world, layer: layer, mask: mask}
}

func (h *Hitbox) Kind() entity.Kind { return entity.KindHitbox }

// Attach creates the fixture so that siblings can compare against it during
// their own Create.
func (h *Hitbox) Attach(e *entity.Entity) {
	h.Base.Attach(e)
	h.fixture = physics.NewFixture(e, h.layer, h.mask)
}

func (h *Hitbox) Create() error {
	if h.world != nil {
		h.world.Add(h.fixture)
	}
	return nil
}

func (h *Hitbox) Dispose() {
	if h.world != nil {
		h.world.Remove(h.fixture)
	}
}

// Fixture is the contact handle; nil before Attach.
func (h *Hitbox) Fixture() *physics.Fixture { return h.fixture }

// Owns reports whether f is this hitbox's fixture.
func (h *Hitbox) Owns(f *physics.Fixture) bool {
	return h.fixture != nil && h.fixture == f
}

// SetEnabled toggles collisions.
func (h *Hitbox) SetEnabled(v bool) {
	if h.fixture != nil {
		h.fixture.SetEnabled(v)
	}
}

// Death disposes a dead entity when a contact on its own hitbox ends.
type Death struct {
	entity.Base

	combat *CombatStats
	hitbox *Hitbox
	sub    bus.Subscription
}

func NewDeath() *Death { return &Death{} }

func (d *Death) Kind() entity.Kind { return entity.KindDeath }

func (d *Death) Create() error {
	e := d.Entity()
	var err error
	if d.combat, err = entity.Require[*CombatStats](e, entity.KindCombatStats); err != nil {
		return err
	}
	if d.hitbox, err = entity.Require[*Hitbox](e, entity.KindHitbox); err != nil {
		return err
	}
	d.sub = bus.Listen2(e.Events(), physics.EventCollisionEnd, d.kill)
	return nil
}

func (d *Death) Dispose() {
	if d.sub != nil {
		d.sub.Cancel()
	}
}

func (d *Death) kill(me, _ *physics.Fixture) {
	if !d.hitbox.Owns(me) {
		return
	}
	if d.combat.IsDead() {
		d.Entity().DisposeLater()
	}
}
