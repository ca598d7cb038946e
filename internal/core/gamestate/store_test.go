package gamestate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	s := New()

	_, ok := s.Get("missing")
	assert.False(t, ok, "absent keys are reported")

	s.Put("currentPlanet", "earth")
	s.Put("currentPlanet", "mars")
	v, ok := s.Get("currentPlanet")
	require.True(t, ok)
	assert.Equal(t, "mars", v)

	str, ok := s.GetString("currentPlanet")
	assert.True(t, ok)
	assert.Equal(t, "mars", str)

	_, ok = s.GetInt("currentPlanet")
	assert.False(t, ok)

	s.Delete("currentPlanet")
	assert.False(t, s.Has("currentPlanet"))
}

func TestUpdateResourceAccumulates(t *testing.T) {
	s := New()

	n, err := s.UpdateResource("Solstite", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = s.UpdateResource("Solstite", 3)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	v, ok := s.Get("resource/Solstite")
	require.True(t, ok)
	assert.Equal(t, 8, v)
	assert.Equal(t, 8, s.Resource("Solstite"))
	assert.Equal(t, 0, s.Resource("Nebulite"))
}

func TestUpdateResourceRejectsNonInt(t *testing.T) {
	s := New()
	s.Put("resource/Durasteel", "lots")

	_, err := s.UpdateResource("Durasteel", 1)
	assert.ErrorIs(t, err, ErrResourceType)

	v, _ := s.Get("resource/Durasteel")
	assert.Equal(t, "lots", v, "failed update leaves the value untouched")
}

func TestUpdateResourceNoLostUpdates(t *testing.T) {
	s := New(WithShards(4))
	const workers, perWorker = 16, 250

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := s.UpdateResource("Solstite", 1)
				assert.NoError(t, err)
				_, err = s.UpdateResource("Nebulite", -1)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, s.Resource("Solstite"))
	assert.Equal(t, -workers*perWorker, s.Resource("Nebulite"))
}

func TestUpdateResourceFiresEvent(t *testing.T) {
	s := New()
	var names []string
	var amounts []int
	s.AddListener(EventUpdateResource, func(args ...any) {
		names = append(names, args[0].(string))
		amounts = append(amounts, args[1].(int))
	})

	_, _ = s.UpdateResource("Solstite", 5)
	_, _ = s.UpdateResource("Solstite", -2)

	assert.Equal(t, []string{"Solstite", "Solstite"}, names)
	assert.Equal(t, []int{5, 3}, amounts)
}

func TestTriggerStoresAndNotifies(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return at }))

	var got []any
	sub := s.AddListener("updatePlanet", func(args ...any) { got = args })
	var changes []Change
	s.Observe(func(c Change) { changes = append(changes, c) })

	s.Trigger("updatePlanet", "currentPlanet", "mars")

	assert.Equal(t, []any{"currentPlanet", "mars"}, got)
	v, _ := s.Get("currentPlanet")
	assert.Equal(t, "mars", v)
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Event: "updatePlanet", Key: "currentPlanet", Value: "mars", At: at}, changes[0])

	s.RemoveListener(sub)
	got = nil
	s.Trigger("updatePlanet", "currentPlanet", "earth")
	assert.Nil(t, got)
}

func TestStateDataIsACopy(t *testing.T) {
	s := New()
	s.Put("a", 1)
	_, _ = s.UpdateResource("Solstite", 2)

	data := s.StateData()
	data["a"] = 99

	v, _ := s.Get("a")
	assert.Equal(t, 1, v)
	assert.Equal(t, map[string]int{"Solstite": 2}, s.Resources())
	assert.EqualValues(t, 2, s.Version())

	s.Clear()
	assert.Empty(t, s.StateData())
}
