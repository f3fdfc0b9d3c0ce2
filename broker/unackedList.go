package broker

import (
	"fmt"
	"strings"
	"sync"
)

// UnackedList tracks persistent publications that have not yet been confirmed by
// the broker, so they can be republished after a replication failover. Messages
// are keyed by correlation ID and removed as confirmations arrive. Safe for use
// from a publish loop and a confirm callback concurrently.
type UnackedList struct {
	mu   sync.Mutex
	list []*Message
}

// NewUnackedList returns an empty list.
func NewUnackedList() *UnackedList {
	return new(UnackedList)
}

// Add appends a message awaiting confirmation.
func (unacked *UnackedList) Add(msg *Message) {
	unacked.mu.Lock()
	defer unacked.mu.Unlock()
	unacked.list = append(unacked.list, msg)
}

// Remove drops the message with the given correlation ID. Removing an unknown key
// is an error: it means a confirmation arrived for a message the publisher never
// tracked.
func (unacked *UnackedList) Remove(key string) error {
	unacked.mu.Lock()
	defer unacked.mu.Unlock()
	for i, msg := range unacked.list {
		if msg.CorrelationID == key {
			unacked.list = append(unacked.list[:i], unacked.list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("message for key %q not found", key)
}

// Get snapshots the messages still awaiting confirmation, oldest first.
func (unacked *UnackedList) Get() []*Message {
	unacked.mu.Lock()
	defer unacked.mu.Unlock()
	snapshot := make([]*Message, len(unacked.list))
	copy(snapshot, unacked.list)
	return snapshot
}

// Len reports how many messages are awaiting confirmation.
func (unacked *UnackedList) Len() int {
	unacked.mu.Lock()
	defer unacked.mu.Unlock()
	return len(unacked.list)
}

func (unacked *UnackedList) String() string {
	unacked.mu.Lock()
	defer unacked.mu.Unlock()
	keys := make([]string, len(unacked.list))
	for i, msg := range unacked.list {
		keys[i] = msg.CorrelationID
	}
	return "[" + strings.Join(keys, ", ") + "]"
}
