package emu

import "sync"

// RegisterKind names a register file in a RegisterChanged event.
type RegisterKind uint8

// Register files.
const (
	KindGPR RegisterKind = iota
	KindIXR
	KindFR
)

func (k RegisterKind) String() string {
	switch k {
	case KindGPR:
		return "GPR"
	case KindIXR:
		return "IXR"
	case KindFR:
		return "FR"
	}
	return "?"
}

// Event is a state-change notification published by the machine.
type Event interface {
	isEvent()
}

// RegisterChanged reports a new value in GPR, IXR or FR.
type RegisterChanged struct {
	Kind  RegisterKind
	Index uint8
	Value uint16
}

// PCChanged reports a new program counter.
type PCChanged struct{ Value uint16 }

// IRChanged reports a newly fetched instruction word.
type IRChanged struct{ Value uint16 }

// MARChanged reports the memory address register. Set is false after reset.
type MARChanged struct {
	Value uint16
	Set   bool
}

// MBRChanged reports the memory buffer register. Set is false after reset.
type MBRChanged struct {
	Value uint16
	Set   bool
}

// ConditionCodesChanged reports the condition codes and the carry bit.
type ConditionCodesChanged struct {
	CC    [4]bool
	Carry bool
}

// CacheChanged carries a fresh textual cache summary.
type CacheChanged struct{ Summary string }

// PredictorStatsChanged reports cumulative branch prediction accuracy.
type PredictorStatsChanged struct {
	Branches uint64
	Correct  uint64
	Accuracy float64
}

// StateChanged reports a transition of the run state.
type StateChanged struct{ State State }

// Message is a human-readable status line.
type Message struct{ Text string }

func (RegisterChanged) isEvent()       {}
func (PCChanged) isEvent()             {}
func (IRChanged) isEvent()             {}
func (MARChanged) isEvent()            {}
func (MBRChanged) isEvent()            {}
func (ConditionCodesChanged) isEvent() {}
func (CacheChanged) isEvent()          {}
func (PredictorStatsChanged) isEvent() {}
func (StateChanged) isEvent()          {}
func (Message) isEvent()               {}

// Observer receives events.
type Observer interface {
	Notify(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// Notify calls f(ev).
func (f ObserverFunc) Notify(ev Event) {
	f(ev)
}

// Bus delivers events synchronously, in publication order, to every
// subscribed observer.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	observers []subscription
}

type subscription struct {
	id int
	o  Observer
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers o and returns a function that removes it.
func (b *Bus) Subscribe(o Observer) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.observers = append(b.observers, subscription{id: id, o: o})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.observers {
			if s.id == id {
				b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every observer.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	observers := make([]subscription, len(b.observers))
	copy(observers, b.observers)
	b.mu.Unlock()

	for _, s := range observers {
		s.o.Notify(ev)
	}
}
