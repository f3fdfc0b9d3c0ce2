package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicRouting(t *testing.T) {
	topic := NewTopic("animals.rabbits")

	exchange, key := topic.routing()
	assert.Equal(t, TopicExchange, exchange, "topics route through the topic exchange")
	assert.Equal(t, "animals.rabbits", key)
	assert.Equal(t, "topic animals.rabbits", topic.String())
}

func TestQueueRouting(t *testing.T) {
	queue := NewQueue("orders")

	exchange, key := queue.routing()
	assert.Equal(t, "", exchange, "queues route through the default exchange")
	assert.Equal(t, "orders", key)
	assert.Equal(t, "queue orders", queue.String())
}

func TestTemporaryDestinationString(t *testing.T) {
	queue := NewQueue("amq.gen-abc123")
	queue.Temporary = true

	assert.Equal(t, "temporary queue amq.gen-abc123", queue.String())
}
