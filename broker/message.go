package broker

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/streadway/amqp"
)

// DeliveryMode controls whether the broker persists a message before
// acknowledging it.
type DeliveryMode uint8

const (
	// NonPersistent messages are not written to disk and may be lost on broker
	// restart. Sent as transient deliveries.
	NonPersistent DeliveryMode = DeliveryMode(amqp.Transient)
	// Persistent messages survive broker restarts on durable queues.
	Persistent DeliveryMode = DeliveryMode(amqp.Persistent)
)

// Application property keys used by the samples.
const (
	// PropIsReply marks a message as the reply half of a request/reply exchange.
	PropIsReply = "isReplyMessage"
	// PropIsXML marks a text payload as XML for content routing.
	PropIsXML = "isXML"
)

// Message is the unit the samples send and receive: a body plus the header fields
// and application properties the underlying client exposes.
type Message struct {
	// Body is the raw payload.
	Body []byte

	// ContentType of the body, text/plain for text messages.
	ContentType string

	// Properties holds application-defined headers.
	Properties amqp.Table

	// CorrelationID links replies to requests.
	CorrelationID string

	// ReplyTo names the queue a reply should be sent to, when set.
	ReplyTo string

	// Mode is the requested delivery mode. The zero value defers to the producer's
	// default.
	Mode DeliveryMode

	// Redelivered is set on received messages the broker has delivered before.
	Redelivered bool

	// Timestamp is the send time stamped on received messages.
	Timestamp time.Time

	// Client-acknowledge bookkeeping, set on messages received through a
	// non-auto-acknowledge session.
	ackTag     uint64
	ackChannel *amqp.Channel
}

// Acknowledge confirms receipt of this message to the broker. Only meaningful for
// messages received on a client-acknowledge session; elsewhere it is a no-op.
func (msg *Message) Acknowledge() error {
	if msg.ackChannel == nil {
		return nil
	}
	err := msg.ackChannel.Ack(msg.ackTag, false)
	if err != nil {
		return fmt.Errorf("error acknowledging message: %w", err)
	}
	return nil
}

// NewTextMessage returns a text message with the given body.
func NewTextMessage(text string) *Message {
	return &Message{
		Body:        []byte(text),
		ContentType: "text/plain",
	}
}

// NewBytesMessage returns a message carrying an opaque payload.
func NewBytesMessage(body []byte) *Message {
	return &Message{Body: body}
}

// Text returns the body as a string and whether the message was sent as text.
func (msg *Message) Text() (string, bool) {
	return string(msg.Body), msg.ContentType == "text/plain"
}

// SetBoolProperty sets an application property on the message.
func (msg *Message) SetBoolProperty(key string, value bool) {
	if msg.Properties == nil {
		msg.Properties = amqp.Table{}
	}
	msg.Properties[key] = value
}

// BoolProperty fetches an application property, returning false when it is absent
// or not a bool.
func (msg *Message) BoolProperty(key string) bool {
	value, ok := msg.Properties[key].(bool)
	return ok && value
}

// Dump renders the message headers and body for printing, used when a received
// message is not a text message.
func (msg *Message) Dump() string {
	builder := new(strings.Builder)
	fmt.Fprintf(builder, "content-type: %v\n", msg.ContentType)
	fmt.Fprintf(builder, "correlation-id: %v\n", msg.CorrelationID)
	fmt.Fprintf(builder, "reply-to: %v\n", msg.ReplyTo)
	fmt.Fprintf(builder, "redelivered: %v\n", msg.Redelivered)

	// Sort property keys so dumps are stable.
	keys := make([]string, 0, len(msg.Properties))
	for key := range msg.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(builder, "property %v: %v\n", key, msg.Properties[key])
	}

	fmt.Fprintf(builder, "body (%v bytes): %X", len(msg.Body), msg.Body)
	return builder.String()
}

// publishing converts the message for the wire, applying defaultMode when the
// message does not set its own.
func (msg *Message) publishing(defaultMode DeliveryMode) amqp.Publishing {
	mode := msg.Mode
	if mode == 0 {
		mode = defaultMode
	}
	return amqp.Publishing{
		ContentType:   msg.ContentType,
		Headers:       msg.Properties,
		CorrelationId: msg.CorrelationID,
		ReplyTo:       msg.ReplyTo,
		DeliveryMode:  uint8(mode),
		Timestamp:     time.Now(),
		Body:          msg.Body,
	}
}

// messageFromDelivery converts an inbound delivery to a Message.
func messageFromDelivery(delivery amqp.Delivery) *Message {
	mode := DeliveryMode(delivery.DeliveryMode)
	if mode != Persistent {
		mode = NonPersistent
	}
	return &Message{
		Body:          delivery.Body,
		ContentType:   delivery.ContentType,
		Properties:    delivery.Headers,
		CorrelationID: delivery.CorrelationId,
		ReplyTo:       delivery.ReplyTo,
		Mode:          mode,
		Redelivered:   delivery.Redelivered,
		Timestamp:     delivery.Timestamp,
	}
}
