// Command helloworldsub shows the basics of creating a connection, subscribing to
// a topic, and receiving one message. This is meant to be a very basic example for
// demonstration purposes.
package main

import (
	"fmt"
	"os"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
	"github.com/peake100/amqpSamples-go/jndi"
)

func main() {
	logger := internal.CreateSampleLogger("helloworldsub")

	if len(os.Args) < 6 {
		fmt.Println(
			"Usage: helloworldsub <provider-url> <vpn> <client-username>" +
				" <connection-factory> <topic-name>",
		)
		os.Exit(1)
	}

	logger.Info().Msg("helloworldsub initializing...")

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, os.Args[1]).
		Set(jndi.PropertyVPN, os.Args[2]).
		Set(jndi.PropertySecurityPrincipal, os.Args[3])

	initialContext, err := jndi.NewInitialContext(env)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating initial context")
	}
	defer initialContext.Close()

	cf, err := initialContext.LookupConnectionFactory(os.Args[4])
	if err != nil {
		logger.Fatal().Err(err).Msg("error looking up connection factory")
	}

	connection, err := cf.CreateConnection()
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting to broker")
	}
	defer connection.Close()

	session, err := connection.CreateSession(broker.AutoAcknowledge)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating session")
	}

	destination, err := initialContext.LookupDestination(os.Args[5])
	if err != nil {
		logger.Fatal().Err(err).Msg("error looking up topic")
	}

	consumer, err := session.CreateConsumer(destination)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating consumer")
	}

	logger.Info().Stringer("DESTINATION", destination).Msg("awaiting message...")

	// Block here until one message is received.
	msg, err := consumer.Receive(0)
	if err != nil {
		logger.Fatal().Err(err).Msg("error receiving message")
	}

	if text, isText := msg.Text(); isText {
		logger.Info().Str("BODY", text).Msg("text message received, exiting")
	} else {
		logger.Info().Str("DUMP", msg.Dump()).Msg("message received, exiting")
	}
}
