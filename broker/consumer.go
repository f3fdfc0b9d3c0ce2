package broker

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// FlowEvent reports a change in a consumer's active state on a
// single-active-consumer queue.
type FlowEvent int

const (
	// FlowActive fires when the consumer starts receiving, meaning the broker has
	// selected it as the queue's active consumer.
	FlowActive FlowEvent = iota
	// FlowInactive fires when the broker cancels the consumer.
	FlowInactive
)

func (event FlowEvent) String() string {
	if event == FlowActive {
		return "FLOW_ACTIVE"
	}
	return "FLOW_INACTIVE"
}

// MessageListener is the callback form of consumption. ack reports receipt on
// client-acknowledge sessions; on auto-acknowledge sessions calling it is a no-op.
type MessageListener func(msg *Message, ack func() error)

// Consumer receives messages from a destination.
type Consumer struct {
	session *Session
	dest    *Destination
	tag     string
	autoAck bool

	deliveries <-chan amqp.Delivery
	cancels    <-chan string

	// Flow-event reporting for single-active-consumer queues.
	flowListener func(event FlowEvent)
	sawDelivery  bool
}

// SetFlowListener registers a callback for active/inactive transitions. The
// active signal is inferred from the first delivery: a standby consumer on a
// single-active-consumer queue receives nothing until the broker promotes it.
func (consumer *Consumer) SetFlowListener(listener func(event FlowEvent)) {
	consumer.flowListener = listener
	go func() {
		for range consumer.cancels {
			listener(FlowInactive)
		}
	}()
}

// Receive blocks until a message arrives or timeout passes. A zero timeout blocks
// forever. Returns ErrReceiveTimeout on timeout and ErrConnectionClosed once the
// consumer's channel is gone.
func (consumer *Consumer) Receive(timeout time.Duration) (*Message, error) {
	var timer <-chan time.Time
	if timeout > 0 {
		timer = time.After(timeout)
	}

	select {
	case delivery, ok := <-consumer.deliveries:
		if !ok {
			return nil, ErrConnectionClosed
		}
		return consumer.take(delivery), nil
	case <-timer:
		return nil, ErrReceiveTimeout
	}
}

// ReceiveNoWait returns the next already-buffered message, or nil when none is
// waiting.
func (consumer *Consumer) ReceiveNoWait() (*Message, error) {
	select {
	case delivery, ok := <-consumer.deliveries:
		if !ok {
			return nil, ErrConnectionClosed
		}
		return consumer.take(delivery), nil
	default:
		return nil, nil
	}
}

// SetMessageListener relays deliveries to listener on a dedicated goroutine. The
// relay stops when the consumer or its session is closed.
func (consumer *Consumer) SetMessageListener(listener MessageListener) {
	go func() {
		for delivery := range consumer.deliveries {
			delivery := delivery
			ack := func() error { return nil }
			if !consumer.autoAck {
				ack = func() error { return delivery.Ack(false) }
			}
			listener(consumer.take(delivery), ack)
		}
	}()
}

// take converts a delivery, firing the one-shot active-flow signal on the first.
func (consumer *Consumer) take(delivery amqp.Delivery) *Message {
	if !consumer.sawDelivery {
		consumer.sawDelivery = true
		if consumer.flowListener != nil {
			consumer.flowListener(FlowActive)
		}
	}
	msg := messageFromDelivery(delivery)
	if !consumer.autoAck {
		msg.ackTag = delivery.DeliveryTag
		msg.ackChannel = consumer.session.channel
	}
	return msg
}

// Close cancels the consumer with the broker. Messages already relayed but not
// acknowledged are requeued on non-auto-acknowledge sessions.
func (consumer *Consumer) Close() error {
	err := consumer.session.channel.Cancel(consumer.tag, false)
	if err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("error cancelling consumer: %w", err)
	}
	return nil
}
