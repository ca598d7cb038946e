package area

import (
	"github.com/zeusync/outpost/internal/core/components"
	"github.com/zeusync/outpost/internal/core/entity"
	"github.com/zeusync/outpost/internal/core/input"
	"github.com/zeusync/outpost/internal/core/observability/log"
)

// Laboratory events fired on the laboratory entity.
const (
	EventLabOpened = "labOpened"
	EventLabClosed = "labClosed"
)

// Laboratory is the brewing window. While open it captures all keyboard
// input; brewing asks the companion to spawn the potion.
type Laboratory struct {
	area     *GameArea
	entity   *entity.Entity
	override *input.Override
	open     bool
}

func newLaboratory(a *GameArea) *Laboratory {
	return &Laboratory{area: a, override: input.NewOverride()}
}

func (l *Laboratory) Entity() *entity.Entity { return l.entity }
func (l *Laboratory) IsOpen() bool           { return l.open }

// Open shows the window to player.
func (l *Laboratory) Open(player *entity.Entity) {
	if l.open {
		return
	}
	in := l.area.factory.Input()
	in.Register(l.override)
	l.open = true
	if l.entity != nil {
		l.entity.Events().Trigger(EventLabOpened, player)
	}
}

// Brew spawns a potion of type t through the companion. The window closes
// afterwards.
func (l *Laboratory) Brew(t components.PotionType) {
	companion := l.area.companion
	if companion == nil {
		l.area.logger.Warn("no companion to brew for", log.String("potion", t.String()))
		return
	}
	companion.Events().Trigger(components.EventSpawnPotion, t)
	l.Close()
}

// Close hides the window and releases input.
func (l *Laboratory) Close() {
	if !l.open {
		return
	}
	l.area.factory.Input().Unregister(l.override)
	l.open = false
	if l.entity != nil && !l.entity.IsDisposed() {
		l.entity.Events().Trigger(EventLabClosed)
	}
}
