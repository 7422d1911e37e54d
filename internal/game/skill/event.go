package skill

import "slices"

// EventKind tags an Event.
type EventKind uint8

const (
	EventActivated          EventKind = iota + 1 // instance activated (or primed)
	EventFired                                   // primed instance started firing
	EventRearmed                                 // primed instance re-armed after cooldown
	EventDeactivated                             // instance switched off
	EventExpired                                 // duration ran out
	EventMaxCooldownReached                      // cooldown multiplier hit its floor
	EventMaxPassiveReached                       // size upgrades announced as maxed
	EventSlotted                                 // instance took a slot
	EventUnslotted                               // instance left its slot
	EventAllSlotsFilled                          // registry became full
	EventStackAdded                              // stack created or grown, Count = new count
	EventStackRemoved                            // stack shrunk, Count = new count
	EventTypeRemoved                             // stack reached zero and is gone
	EventStat                                    // stats report, Context names it
)

var eventKindNames = map[EventKind]string{
	EventActivated:          "activated",
	EventFired:              "fired",
	EventRearmed:            "rearmed",
	EventDeactivated:        "deactivated",
	EventExpired:            "expired",
	EventMaxCooldownReached: "max_cooldown_reached",
	EventMaxPassiveReached:  "max_passive_reached",
	EventSlotted:            "slotted",
	EventUnslotted:          "unslotted",
	EventAllSlotsFilled:     "all_slots_filled",
	EventStackAdded:         "stack_added",
	EventStackRemoved:       "stack_removed",
	EventTypeRemoved:        "type_removed",
	EventStat:               "stat",
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is one signal raised by the activation core.
// Instance may be nil for registry-level events such as EventAllSlotsFilled.
type Event struct {
	Kind     EventKind
	Instance *Instance
	SkillID  string
	Count    int
	Context  string
}

// Handler receives drained events.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// EventQueue buffers signals and delivers them at tick boundaries.
//
// Drain delivers only what was pending when it started. Anything emitted by
// a handler during delivery waits for the next Drain, so handlers never run
// while an emitter is still walking one of its own collections.
//
// Not safe for concurrent use; it belongs to the simulation goroutine.
type EventQueue struct {
	pending  []Event
	handlers map[EventKind][]subscription
	nextID   int
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{
		pending:  make([]Event, 0, 32),
		handlers: make(map[EventKind][]subscription),
	}
}

// Emit queues an event. Emitting on a nil queue is a no-op.
func (q *EventQueue) Emit(e Event) {
	if q == nil {
		return
	}
	q.pending = append(q.pending, e)
}

// Subscribe registers h for events of kind and returns a subscription id.
func (q *EventQueue) Subscribe(kind EventKind, h Handler) int {
	q.nextID++
	q.handlers[kind] = append(q.handlers[kind], subscription{id: q.nextID, handler: h})
	return q.nextID
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (q *EventQueue) Unsubscribe(id int) {
	for kind, subs := range q.handlers {
		q.handlers[kind] = slices.DeleteFunc(subs, func(s subscription) bool { return s.id == id })
	}
}

// Pending returns the number of undelivered events.
func (q *EventQueue) Pending() int {
	return len(q.pending)
}

// Drain delivers pending events in emission order and returns how many were delivered.
func (q *EventQueue) Drain() int {
	if len(q.pending) == 0 {
		return 0
	}
	batch := q.pending
	q.pending = make([]Event, 0, cap(batch))

	for _, e := range batch {
		// snapshot: handlers may (un)subscribe while being called
		subs := slices.Clone(q.handlers[e.Kind])
		for _, s := range subs {
			s.handler(e)
		}
	}
	return len(batch)
}
