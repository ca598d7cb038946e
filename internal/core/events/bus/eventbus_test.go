package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *countingObserver) OnTrigger(event string, _ int, _ []any) {
	o.mu.Lock()
	o.events = append(o.events, event)
	o.mu.Unlock()
}

func TestTriggerDeliversInRegistrationOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		b.AddListener("updateHealth", func(args ...any) { order = append(order, i) })
	}

	b.Trigger("updateHealth", 10)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestTriggerWithoutListenersIsNoop(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.Trigger("nobody", 1, "two") })
	assert.EqualValues(t, 1, b.Triggered())
}

func TestVariadicPayload(t *testing.T) {
	b := New()
	var got []any
	b.AddListener("displayWarningAtPosition", func(args ...any) { got = args })

	b.Trigger("displayWarningAtPosition", "not enough resources", 3.5, 2)

	assert.Equal(t, []any{"not enough resources", 3.5, 2}, got)
}

func TestCancelStopsDeliveryImmediately(t *testing.T) {
	b := New()
	var second int
	var sub Subscription
	b.AddListener("death", func(...any) { sub.Cancel() })
	sub = b.AddListener("death", func(...any) { second++ })

	b.Trigger("death")
	b.Trigger("death")

	assert.Equal(t, 0, second, "listener cancelled mid-dispatch must not run")
	assert.False(t, sub.IsActive())
	assert.Equal(t, 1, b.Count("death"))
}

func TestRemoveListenerNilSafe(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.RemoveListener(nil) })

	calls := 0
	sub := b.AddListener("walk", func(...any) { calls++ })
	b.RemoveListener(sub)
	b.RemoveListener(sub)
	b.Trigger("walk")
	assert.Equal(t, 0, calls)
}

func TestRecursiveTriggerDoesNotDeadlock(t *testing.T) {
	b := New()
	depth := 0
	b.AddListener("echo", func(args ...any) {
		n := args[0].(int)
		depth++
		if n > 0 {
			b.Trigger("echo", n-1)
		}
	})

	b.Trigger("echo", 3)

	assert.Equal(t, 4, depth)
}

func TestListenerAddedDuringDispatchWaitsForNextTrigger(t *testing.T) {
	b := New()
	late := 0
	b.AddListener("spawn", func(...any) {
		b.AddListener("spawn", func(...any) { late++ })
	})

	b.Trigger("spawn")
	assert.Equal(t, 0, late)

	b.Trigger("spawn")
	assert.Equal(t, 1, late)
}

func TestClearDeactivatesEverything(t *testing.T) {
	b := New()
	obs := &countingObserver{}
	b.AddObserver(obs)
	sub := b.AddListener("a", func(...any) {})

	b.Clear()
	b.Trigger("a")

	assert.False(t, sub.IsActive())
	assert.Equal(t, 0, b.Count("a"))
	assert.Empty(t, obs.events)
}

func TestTypedListeners(t *testing.T) {
	t.Run("Listen1", func(t *testing.T) {
		b := New()
		var health int
		Listen1(b, "updateHealth", func(h int) { health = h })

		b.Trigger("updateHealth", 42)
		b.Trigger("updateHealth", "wrong")
		b.Trigger("updateHealth")

		assert.Equal(t, 42, health)
	})

	t.Run("Listen2", func(t *testing.T) {
		b := New()
		var key string
		var value any
		Listen2(b, "updatePlanet", func(k string, v any) { key, value = k, v })

		b.Trigger("updatePlanet", "currentPlanet", nil)
		assert.Equal(t, "currentPlanet", key)
		assert.Nil(t, value)

		b.Trigger("updatePlanet", "currentPlanet", "Earth")
		assert.Equal(t, "Earth", value)
	})

	t.Run("Listen0", func(t *testing.T) {
		b := New()
		n := 0
		Listen0(b, "walkStop", func() { n++ })
		b.Trigger("walkStop", 1, 2, 3)
		assert.Equal(t, 1, n)
	})
}

func TestConcurrentTrigger(t *testing.T) {
	b := New()
	obs := &countingObserver{}
	b.AddObserver(obs)

	var mu sync.Mutex
	total := 0
	b.AddListener("resource", func(args ...any) {
		mu.Lock()
		total += args[0].(int)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Trigger("resource", 2)
		}()
	}
	wg.Wait()

	require.Equal(t, 100, total)
	assert.Len(t, obs.events, 50)
}
