package broker

import (
	"fmt"

	"github.com/streadway/amqp"
)

// ConfirmHandler receives the broker's acknowledgement verdict for a confirmed
// publication, keyed by the message's correlation ID.
type ConfirmHandler func(correlationID string, acked bool)

// Producer sends messages to a destination. Producers are created from a session
// and write on its channel; a producer created with a nil destination sends
// per-message destinations through SendTo.
type Producer struct {
	session *Session
	dest    *Destination

	// The delivery mode applied to messages that do not set their own.
	defaultMode DeliveryMode

	// Confirm-mode bookkeeping. confirmations is non-nil once EnableConfirms has
	// been called.
	confirmations chan amqp.Confirmation
	// correlation IDs of in-flight publications, indexed by delivery tag order.
	// The broker confirms tags in publish order on a single channel.
	inFlight chan string
}

// SetDeliveryMode overrides the producer's default delivery mode, as a connection
// factory's direct-transport setting would otherwise decide it.
func (producer *Producer) SetDeliveryMode(mode DeliveryMode) {
	producer.defaultMode = mode
}

// EnableConfirms puts the producer's channel into confirm mode and starts relaying
// the broker's verdicts to handler. Must be called before the first Send. The
// session's channel must be dedicated to this producer once confirms are on.
func (producer *Producer) EnableConfirms(handler ConfirmHandler) error {
	err := producer.session.channel.Confirm(false)
	if err != nil {
		return fmt.Errorf("error placing channel into confirm mode: %w", err)
	}

	producer.confirmations = producer.session.channel.NotifyPublish(
		make(chan amqp.Confirmation, 128),
	)
	producer.inFlight = make(chan string, 128)

	// Confirmations arrive in publish order, so pairing them with the in-flight
	// queue lines tags up with correlation IDs.
	go func() {
		for confirmation := range producer.confirmations {
			correlationID, ok := <-producer.inFlight
			if !ok {
				return
			}
			handler(correlationID, confirmation.Ack)
		}
	}()

	return nil
}

// Send publishes msg to the producer's destination.
func (producer *Producer) Send(msg *Message) error {
	if producer.dest == nil {
		return fmt.Errorf("producer has no destination; use SendTo")
	}
	return producer.SendTo(producer.dest, msg)
}

// SendTo publishes msg to an explicit destination, as request/reply producers do.
func (producer *Producer) SendTo(dest *Destination, msg *Message) error {
	exchange, key := dest.routing()
	err := producer.session.channel.Publish(
		exchange, key, false, false, msg.publishing(producer.defaultMode),
	)
	if err != nil {
		return fmt.Errorf("error publishing to %v: %w", dest, err)
	}

	if producer.inFlight != nil {
		producer.inFlight <- msg.CorrelationID
	}
	return nil
}

// Close releases the producer. The session channel stays open for other users
// unless confirms were enabled, in which case the confirm relay is shut down.
func (producer *Producer) Close() {
	if producer.inFlight != nil {
		close(producer.inFlight)
		producer.inFlight = nil
	}
}
