package broker

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Browser walks a queue's current contents without consuming them. Messages are
// fetched unacknowledged and every fetched message is requeued when the browser is
// closed, so browsing leaves the queue as it found it.
type Browser struct {
	session *Session
	queue   string

	// Tag of the last fetched message, for the terminal multi-requeue.
	lastTag uint64
	fetched bool
	closed  bool
}

// Next fetches the next message from the queue. ok is false once the queue's
// current contents are exhausted.
func (browser *Browser) Next() (msg *Message, ok bool, err error) {
	if browser.closed {
		return nil, false, fmt.Errorf("browser is closed")
	}

	delivery, ok, err := browser.session.channel.Get(browser.queue, false)
	if err != nil {
		return nil, false, fmt.Errorf("error browsing queue %v: %w", browser.queue, err)
	}
	if !ok {
		return nil, false, nil
	}

	browser.lastTag = delivery.DeliveryTag
	browser.fetched = true
	return messageFromDelivery(delivery), true, nil
}

// Close requeues everything the browser fetched.
func (browser *Browser) Close() error {
	if browser.closed {
		return nil
	}
	browser.closed = true

	if !browser.fetched {
		return nil
	}
	err := browser.session.channel.Nack(browser.lastTag, true, true)
	if err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("error requeueing browsed messages: %w", err)
	}
	return nil
}
