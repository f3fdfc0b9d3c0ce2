package broker

import (
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextMessageRoundTrip(t *testing.T) {
	msg := NewTextMessage("Hello from producer")

	text, isText := msg.Text()
	assert.True(t, isText, "message should report as text")
	assert.Equal(t, "Hello from producer", text)

	_, isText = NewBytesMessage([]byte{0x01}).Text()
	assert.False(t, isText, "bytes message should not report as text")
}

func TestBoolProperties(t *testing.T) {
	msg := NewTextMessage("payload")
	assert.False(t, msg.BoolProperty(PropIsReply), "unset property reads false")

	msg.SetBoolProperty(PropIsReply, true)
	assert.True(t, msg.BoolProperty(PropIsReply))

	// A property of the wrong type reads false rather than panicking.
	msg.Properties[PropIsXML] = "yes"
	assert.False(t, msg.BoolProperty(PropIsXML))
}

func TestPublishingAppliesDefaultMode(t *testing.T) {
	msg := NewTextMessage("payload")

	publishing := msg.publishing(Persistent)
	assert.Equal(t, uint8(amqp.Persistent), publishing.DeliveryMode)

	// A message-level mode overrides the producer default.
	msg.Mode = NonPersistent
	publishing = msg.publishing(Persistent)
	assert.Equal(t, uint8(amqp.Transient), publishing.DeliveryMode)
}

func TestPublishingCarriesReplyFields(t *testing.T) {
	msg := NewBytesMessage([]byte{0x05})
	msg.CorrelationID = "request-1"
	msg.ReplyTo = "amq.gen-reply"
	msg.SetBoolProperty(PropIsReply, true)

	publishing := msg.publishing(NonPersistent)
	assert.Equal(t, "request-1", publishing.CorrelationId)
	assert.Equal(t, "amq.gen-reply", publishing.ReplyTo)
	assert.Equal(t, true, publishing.Headers[PropIsReply])
	assert.Equal(t, []byte{0x05}, publishing.Body)
}

func TestMessageFromDelivery(t *testing.T) {
	sent := time.Now()
	delivery := amqp.Delivery{
		ContentType:   "text/plain",
		Headers:       amqp.Table{PropIsXML: false},
		CorrelationId: "request-2",
		ReplyTo:       "amq.gen-reply",
		DeliveryMode:  uint8(amqp.Persistent),
		Redelivered:   true,
		Timestamp:     sent,
		Body:          []byte("pong"),
	}

	msg := messageFromDelivery(delivery)
	require.NotNil(t, msg)

	text, isText := msg.Text()
	assert.True(t, isText)
	assert.Equal(t, "pong", text)
	assert.Equal(t, "request-2", msg.CorrelationID)
	assert.Equal(t, "amq.gen-reply", msg.ReplyTo)
	assert.Equal(t, Persistent, msg.Mode)
	assert.True(t, msg.Redelivered)
	assert.Equal(t, sent, msg.Timestamp)
}

func TestDumpIsStable(t *testing.T) {
	msg := NewBytesMessage([]byte{0xDE, 0xAD})
	msg.SetBoolProperty("b", true)
	msg.SetBoolProperty("a", false)
	msg.CorrelationID = "dump-test"

	first := msg.Dump()
	assert.Equal(t, first, msg.Dump(), "dumps of the same message should match")
	assert.Contains(t, first, "correlation-id: dump-test")
	assert.Contains(t, first, "property a: false")
	assert.Contains(t, first, "body (2 bytes): DEAD")
}

func TestAcknowledgeWithoutChannelIsNoOp(t *testing.T) {
	msg := NewTextMessage("auto-acked")
	assert.NoError(t, msg.Acknowledge())
}
