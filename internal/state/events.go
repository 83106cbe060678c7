// Package state holds the in-memory state containers the presentation layer
// renders from: Auth, Contacts and UI.
//
// OPERATIONS AND PHASES:
// Every operation that touches the persisted store runs through three phases:
//
//	pending   → Loading=true, Error=""
//	fulfilled → Loading=false, payload applied
//	rejected  → Loading=false, Error=<one human-readable message>
//
// The same operation also returns its result as (T, error), and each phase
// is published as an Event to anyone who subscribed. Synchronous setters
// (modal flags, current contact, form errors) have no phases.
//
// Containers are safe for concurrent use. State() returns a deep copy, so a
// caller can hold on to it while operations keep running.
package state

import (
	"sync"
)

// Op names an operation, "<container>/<operation>".
type Op string

const (
	OpRegister        Op = "auth/register"
	OpLogin           Op = "auth/login"
	OpLogout          Op = "auth/logout"
	OpCheckAuthStatus Op = "auth/checkAuthStatus"

	OpFetchContacts Op = "contacts/fetchContacts"
	OpAddContact    Op = "contacts/addContact"
	OpUpdateContact Op = "contacts/updateContact"
	OpDeleteContact Op = "contacts/deleteContact"
)

type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
)

// Event reports one phase of one operation. Err is set only when
// Phase is PhaseRejected.
type Event struct {
	Op    Op     `json:"op"`
	Phase Phase  `json:"phase"`
	Err   string `json:"error,omitempty"`
}

// subscriberBuffer is how many events a slow subscriber may fall behind
// before further events are dropped for it.
const subscriberBuffer = 32

// Events fans operation phases out to subscribers. The zero value is not
// usable; call NewEvents. A nil *Events discards everything.
type Events struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewEvents() *Events {
	return &Events{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel receiving every future event and a function
// that unsubscribes and closes the channel. Publishing never blocks: a
// subscriber whose buffer is full misses events.
func (e *Events) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	ch := make(chan Event, subscriberBuffer)
	e.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (e *Events) publish(ev Event) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
