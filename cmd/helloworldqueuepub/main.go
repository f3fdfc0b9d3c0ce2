// Command helloworldqueuepub shows the basics of sending one persistent message to
// a durable queue. This is meant to be a very basic example for demonstration
// purposes.
package main

import (
	"fmt"
	"os"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
	"github.com/peake100/amqpSamples-go/jndi"
)

func main() {
	logger := internal.CreateSampleLogger("helloworldqueuepub")

	if len(os.Args) < 5 {
		fmt.Println(
			"Usage: helloworldqueuepub <provider-url> <vpn> <client-username>" +
				" <queue-name>",
		)
		os.Exit(1)
	}

	logger.Info().Msg("helloworldqueuepub initializing...")

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, os.Args[1]).
		Set(jndi.PropertyVPN, os.Args[2]).
		Set(jndi.PropertySecurityPrincipal, os.Args[3])

	cf := jndi.ConnectionFactoryFromEnvironment(env)

	connection, err := cf.CreateConnection()
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting to broker")
	}
	defer connection.Close()

	session, err := connection.CreateSession(broker.AutoAcknowledge)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating session")
	}

	// Queue messages must survive a broker restart, so the queue is declared
	// durable and the message sent persistent.
	queue, err := session.CreateQueue(os.Args[4])
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating queue")
	}

	producer, err := session.CreateProducer(queue)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating producer")
	}
	producer.SetDeliveryMode(broker.Persistent)

	testMessage := broker.NewTextMessage("Hello world Queues!")
	text, _ := testMessage.Text()
	logger.Info().
		Str("BODY", text).
		Stringer("DESTINATION", queue).
		Msg("connected, about to send")

	err = producer.Send(testMessage)
	if err != nil {
		logger.Fatal().Err(err).Msg("error sending message")
	}

	logger.Info().Msg("message sent, exiting")
}
