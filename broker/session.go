package broker

import (
	"fmt"

	"github.com/streadway/amqp"
)

// AcknowledgeMode controls how receipt of messages on a session is confirmed to
// the broker.
type AcknowledgeMode int

const (
	// AutoAcknowledge confirms each delivery as the client hands it out.
	AutoAcknowledge AcknowledgeMode = iota
	// ClientAcknowledge leaves confirmation to the application via Message
	// acknowledgement on the consumer.
	ClientAcknowledge
	// Transacted batches sends and receipts into broker transactions terminated by
	// Commit or Rollback.
	Transacted
)

// Session is a single-threaded operating context on a connection, wrapping one
// channel. Producers, consumers, browsers and temporary destinations are created
// from it and die with it.
type Session struct {
	conn    *Connection
	channel *amqp.Channel
	mode    AcknowledgeMode

	// Sequence for generating unique consumer tags on this session.
	consumerSeq int
}

func newSession(conn *Connection, channel *amqp.Channel, mode AcknowledgeMode) *Session {
	return &Session{conn: conn, channel: channel, mode: mode}
}

// CreateTopic returns a topic destination for a physical subject. No broker
// resource is created; topic endpoints materialize when subscribed.
func (session *Session) CreateTopic(name string) *Destination {
	return NewTopic(name)
}

// CreateQueue declares a durable queue with the given physical name and returns
// its destination.
func (session *Session) CreateQueue(name string) (*Destination, error) {
	_, err := session.channel.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("error declaring queue %v: %w", name, err)
	}
	return NewQueue(name), nil
}

// CreateTemporaryQueue declares a server-named, exclusive, auto-delete queue that
// is removed when the session's connection goes away.
func (session *Session) CreateTemporaryQueue() (*Destination, error) {
	declared, err := session.channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, fmt.Errorf("error declaring temporary queue: %w", err)
	}
	dest := NewQueue(declared.Name)
	dest.Temporary = true
	return dest, nil
}

// CreateTemporaryTopic builds a session-scoped topic subject that no other session
// can guess, mirroring a temporary topic endpoint.
func (session *Session) CreateTemporaryTopic() (*Destination, error) {
	// A temporary queue's server-assigned name doubles as a unique subject.
	backing, err := session.CreateTemporaryQueue()
	if err != nil {
		return nil, err
	}
	dest := NewTopic("tmp." + backing.Name)
	dest.Temporary = true
	return dest, nil
}

// CreateProducer returns a producer bound to dest. A nil dest returns an unbound
// producer whose SendTo must name a destination per message, as the request/reply
// samples do.
func (session *Session) CreateProducer(dest *Destination) (*Producer, error) {
	defaultMode := Persistent
	if session.conn.factory.DirectTransport {
		defaultMode = NonPersistent
	}
	return &Producer{
		session:     session,
		dest:        dest,
		defaultMode: defaultMode,
	}, nil
}

// CreateConsumer starts receiving from dest. Topic destinations get a
// server-named exclusive queue bound to the topic exchange for the life of the
// session.
func (session *Session) CreateConsumer(dest *Destination) (*Consumer, error) {
	return session.createConsumer(dest, "", false)
}

// CreateDurableSubscriber starts receiving from a topic through a durable
// subscription. The subscription's backing queue is named after subscriptionName
// and survives the session; it accumulates messages while no subscriber is
// attached.
func (session *Session) CreateDurableSubscriber(
	dest *Destination, subscriptionName string,
) (*Consumer, error) {
	if dest.Kind != KindTopic {
		return nil, fmt.Errorf("durable subscriptions require a topic destination")
	}
	return session.createConsumer(dest, subscriptionName, false)
}

// CreateExclusiveConsumer starts receiving from a queue declared for
// single-active-consumer access: many sessions may attach, one receives at a time.
func (session *Session) CreateExclusiveConsumer(dest *Destination) (*Consumer, error) {
	if dest.Kind != KindQueue {
		return nil, fmt.Errorf("exclusive consumption requires a queue destination")
	}
	return session.createConsumer(dest, "", true)
}

// CreateBrowser returns a browser over the queue's current contents.
func (session *Session) CreateBrowser(dest *Destination) (*Browser, error) {
	if dest.Kind != KindQueue {
		return nil, fmt.Errorf("only queues can be browsed")
	}
	return &Browser{session: session, queue: dest.Name}, nil
}

// Commit commits the current transaction on a transacted session and starts the
// next one.
func (session *Session) Commit() error {
	if session.mode != Transacted {
		return ErrNotTransacted
	}
	err := session.channel.TxCommit()
	if err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// Rollback abandons the current transaction on a transacted session.
func (session *Session) Rollback() error {
	if session.mode != Transacted {
		return ErrNotTransacted
	}
	err := session.channel.TxRollback()
	if err != nil {
		return fmt.Errorf("error rolling back transaction: %w", err)
	}
	return nil
}

// Close releases the session's channel. Consumers and temporary destinations
// created from it are torn down by the broker.
func (session *Session) Close() error {
	err := session.channel.Close()
	if err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("error closing session: %w", err)
	}
	return nil
}

// consumeQueue resolves the queue a consumer for dest reads from, declaring and
// binding it when the destination is a topic.
func (session *Session) consumeQueue(
	dest *Destination, subscriptionName string, singleActive bool,
) (string, error) {
	if dest.Kind == KindQueue {
		if !singleActive {
			return dest.Name, nil
		}
		args := amqp.Table{"x-single-active-consumer": true}
		_, err := session.channel.QueueDeclare(dest.Name, true, false, false, false, args)
		if err != nil {
			return "", fmt.Errorf(
				"error declaring single-active queue %v: %w", dest.Name, err,
			)
		}
		return dest.Name, nil
	}

	// Topic destination: durable subscriptions get a named, durable backing
	// queue, plain subscribers a server-named exclusive one.
	var queueName string
	var err error
	if subscriptionName != "" {
		declared, declareErr := session.channel.QueueDeclare(
			subscriptionName, true, false, false, false, nil,
		)
		queueName, err = declared.Name, declareErr
	} else {
		declared, declareErr := session.channel.QueueDeclare(
			"", false, true, true, false, nil,
		)
		queueName, err = declared.Name, declareErr
	}
	if err != nil {
		return "", fmt.Errorf("error declaring subscription queue: %w", err)
	}

	err = session.channel.QueueBind(queueName, dest.Name, TopicExchange, false, nil)
	if err != nil {
		return "", fmt.Errorf(
			"error binding subscription queue to %v: %w", dest.Name, err,
		)
	}
	return queueName, nil
}

func (session *Session) createConsumer(
	dest *Destination, subscriptionName string, singleActive bool,
) (*Consumer, error) {
	queueName, err := session.consumeQueue(dest, subscriptionName, singleActive)
	if err != nil {
		return nil, err
	}

	session.consumerSeq++
	tag := fmt.Sprintf("consumer-%v-%v", queueName, session.consumerSeq)

	autoAck := session.mode == AutoAcknowledge
	deliveries, err := session.channel.Consume(
		queueName, tag, autoAck, false, false, false, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("error starting consumer on %v: %w", queueName, err)
	}

	consumer := &Consumer{
		session:    session,
		dest:       dest,
		tag:        tag,
		autoAck:    autoAck,
		deliveries: deliveries,
		cancels:    session.channel.NotifyCancel(make(chan string, 1)),
	}
	return consumer, nil
}
