package broker

import "fmt"

// TopicExchange is the broker exchange all topic destinations publish through and
// subscribe on.
const TopicExchange = "amq.topic"

// DestinationKind discriminates topics from queues.
type DestinationKind int

const (
	// KindTopic routes through the topic exchange by subject.
	KindTopic DestinationKind = iota
	// KindQueue addresses a named queue through the default exchange.
	KindQueue
)

func (kind DestinationKind) String() string {
	if kind == KindTopic {
		return "topic"
	}
	return "queue"
}

// Destination addresses messages. A topic destination publishes to the topic
// exchange with its name as the routing subject; a queue destination publishes
// straight to the named queue. Temporary destinations are created through a
// session, live on server-named exclusive queues, and are deleted with it.
type Destination struct {
	// Kind of destination.
	Kind DestinationKind

	// The physical topic subject or queue name.
	Name string

	// Whether this destination is session-scoped.
	Temporary bool
}

// NewTopic returns a topic destination for the given subject.
func NewTopic(name string) *Destination {
	return &Destination{Kind: KindTopic, Name: name}
}

// NewQueue returns a queue destination for the given queue name.
func NewQueue(name string) *Destination {
	return &Destination{Kind: KindQueue, Name: name}
}

// routing returns the exchange and routing key a publish to this destination uses.
func (dest *Destination) routing() (exchange string, key string) {
	if dest.Kind == KindTopic {
		return TopicExchange, dest.Name
	}
	return "", dest.Name
}

func (dest *Destination) String() string {
	label := dest.Kind.String()
	if dest.Temporary {
		label = "temporary " + label
	}
	return fmt.Sprintf("%v %v", label, dest.Name)
}
