package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type selection struct {
	IDs []string
}

func TestPublishReachesSubscribersInOrder(t *testing.T) {
	bus := NewBus[selection]()
	var calls []string

	bus.Subscribe("catalog", func(s selection) { calls = append(calls, "catalog:"+s.IDs[0]) })
	bus.Subscribe("seller", func(s selection) { calls = append(calls, "seller:"+s.IDs[0]) })

	bus.Publish(selection{IDs: []string{"rpg"}})

	assert.Equal(t, []string{"catalog:rpg", "seller:rpg"}, calls)
	assert.Equal(t, []string{"catalog", "seller"}, bus.Subscribers())
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus[int]()
	count := 0

	unsubscribe := bus.Subscribe("counter", func(n int) { count += n })
	bus.Publish(2)
	unsubscribe()
	unsubscribe()
	bus.Publish(5)

	assert.Equal(t, 2, count)
	assert.Empty(t, bus.Subscribers())
}

func TestHandlerMaySubscribeDuringPublish(t *testing.T) {
	bus := NewBus[int]()
	bus.Subscribe("outer", func(int) {
		bus.Subscribe("inner", func(int) {})
	})

	assert.NotPanics(t, func() { bus.Publish(1) })
	assert.Len(t, bus.Subscribers(), 2)
}
