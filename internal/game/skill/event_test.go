package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventQueue_DrainOrder(t *testing.T) {
	q := NewEventQueue()
	var got []string
	q.Subscribe(EventSlotted, func(e Event) { got = append(got, "slotted:"+e.SkillID) })
	q.Subscribe(EventUnslotted, func(e Event) { got = append(got, "unslotted:"+e.SkillID) })

	q.Emit(Event{Kind: EventSlotted, SkillID: "a"})
	q.Emit(Event{Kind: EventUnslotted, SkillID: "a"})
	q.Emit(Event{Kind: EventSlotted, SkillID: "b"})
	q.Emit(Event{Kind: EventExpired, SkillID: "nobody listens"})

	assert.Equal(t, 4, q.Pending())
	assert.Empty(t, got, "nothing delivered before Drain")

	assert.Equal(t, 4, q.Drain())
	assert.Equal(t, []string{"slotted:a", "unslotted:a", "slotted:b"}, got)
	assert.Zero(t, q.Pending())
	assert.Zero(t, q.Drain())
}

func TestEventQueue_EmitDuringDrainDeferred(t *testing.T) {
	q := NewEventQueue()
	var removed int
	q.Subscribe(EventSlotted, func(e Event) {
		q.Emit(Event{Kind: EventUnslotted, SkillID: e.SkillID})
	})
	q.Subscribe(EventUnslotted, func(Event) { removed++ })

	q.Emit(Event{Kind: EventSlotted, SkillID: "a"})
	assert.Equal(t, 1, q.Drain())
	assert.Zero(t, removed, "re-entrant emit waits for the next boundary")
	assert.Equal(t, 1, q.Pending())

	q.Drain()
	assert.Equal(t, 1, removed)
}

func TestEventQueue_Unsubscribe(t *testing.T) {
	q := NewEventQueue()
	var calls int
	var id int
	id = q.Subscribe(EventFired, func(Event) {
		calls++
		q.Unsubscribe(id)
	})

	q.Emit(Event{Kind: EventFired})
	q.Emit(Event{Kind: EventFired})
	q.Drain()
	assert.Equal(t, 1, calls)

	q.Unsubscribe(12345)
}

func TestEventQueue_NilEmit(t *testing.T) {
	var q *EventQueue
	assert.NotPanics(t, func() { q.Emit(Event{Kind: EventFired}) })
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "all_slots_filled", EventAllSlotsFilled.String())
	assert.Equal(t, "unknown", EventKind(200).String())
}
