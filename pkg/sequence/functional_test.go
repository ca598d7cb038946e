package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIteratorChain(t *testing.T) {
	it := From([]int{1, 2, 3, 4, 5, 6}).Filter(func(v int) bool { return v%2 == 0 })

	assert.Equal(t, []int{2, 4, 6}, it.Collect())
	assert.Equal(t, 3, it.Count(), "iterators are re-runnable")

	first, ok := it.First()
	assert.True(t, ok)
	assert.Equal(t, 2, first)

	_, ok = it.Find(func(v int) bool { return v > 10 })
	assert.False(t, ok)
}

func TestForEachStopsEarly(t *testing.T) {
	seen := 0
	From([]string{"a", "b", "c"}).ForEach(func(string) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)
}

func TestMapAndPull(t *testing.T) {
	doubled := Map(From([]int{1, 2}), func(v int) int { return v * 2 })
	next, stop := doubled.Pull()
	defer stop()

	v, ok := next()
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	v, ok = next()
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	_, ok = next()
	assert.False(t, ok)
}
