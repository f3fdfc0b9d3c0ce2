package broker

import (
	"fmt"

	"github.com/streadway/amqp"
)

// ConnectionMetadata describes the broker a connection landed on, taken from the
// server properties exchanged at handshake.
type ConnectionMetadata struct {
	// Provider is the broker product name.
	Provider string
	// Version is the broker product version.
	Version string
	// ProtocolMajor and ProtocolMinor are the negotiated protocol revision.
	ProtocolMajor int
	ProtocolMinor int
}

func (meta ConnectionMetadata) String() string {
	return fmt.Sprintf(
		"%v %v (AMQP %v.%v)",
		meta.Provider, meta.Version, meta.ProtocolMajor, meta.ProtocolMinor,
	)
}

// Connection wraps a single client connection to the broker.
type Connection struct {
	factory    *ConnectionFactory
	underlying *amqp.Connection
}

// newConnection wraps a freshly-dialed client connection.
func newConnection(factory *ConnectionFactory, underlying *amqp.Connection) *Connection {
	return &Connection{factory: factory, underlying: underlying}
}

// Metadata reports the broker product and protocol version.
func (conn *Connection) Metadata() ConnectionMetadata {
	meta := ConnectionMetadata{
		Provider:      "unknown",
		Version:       "unknown",
		ProtocolMajor: conn.underlying.Major,
		ProtocolMinor: conn.underlying.Minor,
	}
	if product, ok := conn.underlying.Properties["product"].(string); ok {
		meta.Provider = product
	}
	if version, ok := conn.underlying.Properties["version"].(string); ok {
		meta.Version = version
	}
	return meta
}

// SetExceptionListener registers a callback invoked once if the broker closes the
// connection with an error. A graceful local Close does not fire it.
func (conn *Connection) SetExceptionListener(listener func(err error)) {
	notify := conn.underlying.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		closeErr, ok := <-notify
		if ok && closeErr != nil {
			listener(closeErr)
		}
	}()
}

// CreateSession opens a session (channel) on the connection. For Transacted
// sessions the channel is placed in transaction mode before it is returned.
func (conn *Connection) CreateSession(mode AcknowledgeMode) (*Session, error) {
	channel, err := conn.underlying.Channel()
	if err != nil {
		return nil, fmt.Errorf("error opening channel: %w", err)
	}

	if conn.factory.ReceiveADWindowSize > 0 {
		err = channel.Qos(conn.factory.ReceiveADWindowSize, 0, false)
		if err != nil {
			return nil, fmt.Errorf("error applying receive window: %w", err)
		}
	}

	if mode == Transacted {
		err = channel.Tx()
		if err != nil {
			return nil, fmt.Errorf("error starting channel transactions: %w", err)
		}
	}

	return newSession(conn, channel, mode), nil
}

// Close shuts the connection and every session opened on it.
func (conn *Connection) Close() error {
	err := conn.underlying.Close()
	if err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("error closing connection: %w", err)
	}
	return nil
}
