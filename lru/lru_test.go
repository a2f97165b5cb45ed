package lru_test

import (
	"testing"

	"go.viam.com/test"

	"github.com/gladys-robotics/navcore/lru"
)

func TestGetMemoizesAndCounts(t *testing.T) {
	t.Parallel()
	calls := 0
	c, err := lru.New(2, func(k int) int {
		calls++
		return k * k
	})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, c.Get(3), test.ShouldEqual, 9)
	test.That(t, c.Get(3), test.ShouldEqual, 9)
	test.That(t, calls, test.ShouldEqual, 1)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()
	order := []int{}
	c, err := lru.New(2, func(k int) int {
		order = append(order, k)
		return k
	})
	test.That(t, err, test.ShouldBeNil)

	c.Get(1)
	c.Get(2)
	c.Get(1) // refresh 1, making 2 the LRU entry
	c.Get(3) // evicts 2

	order = nil
	c.Get(2) // miss: was evicted; re-adding it evicts 1, now the LRU entry
	test.That(t, order, test.ShouldResemble, []int{2})

	order = nil
	c.Get(3) // still cached
	test.That(t, order, test.ShouldBeEmpty)
}

func TestInvalidateClearsCache(t *testing.T) {
	t.Parallel()
	calls := 0
	c, err := lru.New(4, func(k int) int {
		calls++
		return k
	})
	test.That(t, err, test.ShouldBeNil)

	c.Get(1)
	c.Invalidate()
	c.Get(1)
	test.That(t, calls, test.ShouldEqual, 2)
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()
	_, err := lru.New(0, func(k int) int { return k })
	test.That(t, err, test.ShouldNotBeNil)
}
