package events

import (
	"sync/atomic"

	"github.com/kelindar/event"
)

var dropped atomic.Uint64

// SubscribeToChannel forwards events of type T into ch for consumers that
// select over a channel, such as SSE handlers. Delivery never blocks the
// publisher: when ch is full the event is dropped and counted.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
			dropped.Add(1)
		}
	})
}

// Dropped returns how many events channel subscribers have dropped since
// start.
func Dropped() uint64 {
	return dropped.Load()
}
