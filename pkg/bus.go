package chain

/*
The message subsystem exists to allow event-based access to the block
tree and the transaction pool, for integration purposes.

A simple internal 'message bus' is passed around internally as a
singleton, with an internal goroutine and a 'send' method for sending
'messages'.

outbound destinations are created in config, which result in these
messages being routed to various external services, ie: HTTP callbacks,
log-files, the miner etc. These are managed by MessageSubscribers:

MessageSubscribers are registered with the bus and are subscribed via
their own channels along with a list of EventTypes they want to subscribe
to.
*/

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

const busInboundSize = 1000

// MessageSubscribers are things that subscribe to the bus and handle
// messages, ie: http callbacks, loggers, the miner.
type MessageSubscriber interface {
	GetChan() chan Message
}

// Created by the bus, wraps message sent with Send
type Message struct {
	EventType EventType
	Message   []byte
	ID        string // optional
}

// MarshalJSON renders the message for external receivers, keeping the
// payload as embedded JSON.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string          `json:"type"`
		Event   string          `json:"event"`
		ID      string          `json:"id"`
		Payload json.RawMessage `json:"payload"`
	}{m.EventType.Type(), fmt.Sprint(m.EventType), m.ID, m.Message})
}

type Subscription struct {
	dest  MessageSubscriber
	types []EventType
}

func NewMessageBus() MessageBus {
	return MessageBus{
		lock:      &sync.Mutex{},
		receivers: make(map[*Subscription]bool),
		inbound:   make(chan Message, busInboundSize),
	}
}

type MessageBus struct {
	lock *sync.Mutex

	// Registered MessageSubscribers.
	receivers map[*Subscription]bool

	// Messages from Send(), destinated for MessageSubscribers
	inbound chan Message
}

// Send a message to the bus with a specific EventType
// msg can be anything JSON serialisable, this will be
// turned into a Message and delivered to any interested MessageSubscribers.
// Send never blocks: when the bus is backed up the message is dropped
// and an error returned.
func (b MessageBus) Send(t EventType, msg interface{}, msgID ...string) error {
	j, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	id := generateID()
	if len(msgID) > 0 {
		id = msgID[0]
	}
	select {
	case b.inbound <- Message{t, j, id}:
		return nil
	default:
		return NewErr(UnknownError, "message bus full, dropped %s:%s", t.Type(), t)
	}
}

func (b MessageBus) Register(m MessageSubscriber, types ...EventType) *Subscription {
	sub := &Subscription{m, types}
	b.lock.Lock()
	b.receivers[sub] = true
	b.lock.Unlock()
	return sub
}

func (b MessageBus) Unregister(sub *Subscription) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.receivers[sub] {
		delete(b.receivers, sub)
		close(sub.dest.GetChan())
	}
}

func (s *Subscription) wants(t EventType) bool {
	for _, want := range s.types {
		if want.Type() == "ALL" || want.Type() == t.Type() {
			return true
		}
	}
	return false
}

func (b MessageBus) deliver(message Message) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for sub := range b.receivers {
		if !sub.wants(message.EventType) {
			continue
		}
		// send the message to the receiver
		select {
		case sub.dest.GetChan() <- message:
		default:
			// if we are unable to send, cancel the sub
			delete(b.receivers, sub)
			close(sub.dest.GetChan())
			b.Send(SYS_ERR, map[string]string{"msg": "receiver failed to handle msg, closing"})
		}
	}
}

// Implements conductor Service
func (b MessageBus) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		stopBus := make(chan bool)
		go func() {
			for {
				select {
				case <-stopBus:
					return
				case message := <-b.inbound:
					b.deliver(message)
				}
			}
		}()

		started <- true
		// wait for shutdown.
		<-stop
		// do some shutdown stuff then signal we're done
		close(stopBus)
		stopped <- true
	}()
	return nil
}

func generateID() string {
	return uuid.NewString()
}
