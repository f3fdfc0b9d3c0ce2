// Command helloworldqueuesub shows the basics of receiving one message from a
// durable queue with client acknowledgement. This is meant to be a very basic
// example for demonstration purposes.
package main

import (
	"fmt"
	"os"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
	"github.com/peake100/amqpSamples-go/jndi"
)

func main() {
	logger := internal.CreateSampleLogger("helloworldqueuesub")

	if len(os.Args) < 5 {
		fmt.Println(
			"Usage: helloworldqueuesub <provider-url> <vpn> <client-username>" +
				" <queue-name>",
		)
		os.Exit(1)
	}

	logger.Info().Msg("helloworldqueuesub initializing...")

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

	session, err := connection.CreateSession(broker.ClientAcknowledge)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating session")
	}

	queue, err := session.CreateQueue(os.Args[4])
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating queue")
	}

	consumer, err := session.CreateConsumer(queue)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating consumer")
	}

	logger.Info().Stringer("DESTINATION", queue).Msg("awaiting message...")

	msg, err := consumer.Receive(0)
	if err != nil {
		logger.Fatal().Err(err).Msg("error receiving message")
	}

	if text, isText := msg.Text(); isText {
		logger.Info().Str("BODY", text).Msg("text message received")
	} else {
		logger.Info().Str("DUMP", msg.Dump()).Msg("message received")
	}

	// The session is in client-acknowledge mode; receipt must be confirmed
	// explicitly or the broker will redeliver.
	err = msg.Acknowledge()
	if err != nil {
		logger.Fatal().Err(err).Msg("error acknowledging message")
	}

	logger.Info().Msg("message acknowledged, exiting")
}
