// Command helloworldpub shows the basics of creating a connection, opening a
// session, and publishing a direct message to a topic. This is meant to be a very
// basic example for demonstration purposes.
package main

import (
	"fmt"
	"os"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
	"github.com/peake100/amqpSamples-go/jndi"
)

func main() {
	logger := internal.CreateSampleLogger("helloworldpub")

	if len(os.Args) < 6 {
		fmt.Println(
			"Usage: helloworldpub <provider-url> <vpn> <client-username>" +
				" <connection-factory> <topic-name>",
		)
		os.Exit(1)
	}

	logger.Info().Msg("helloworldpub initializing...")

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

	producer, err := session.CreateProducer(destination)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating producer")
	}

	testMessage := broker.NewTextMessage("Hello world!")
	text, _ := testMessage.Text()
	logger.Info().
		Str("BODY", text).
		Stringer("DESTINATION", destination).
		Msg("connected, about to send")

	err = producer.Send(testMessage)
	if err != nil {
		logger.Fatal().Err(err).Msg("error sending message")
	}

	logger.Info().Msg("message sent, exiting")
}
