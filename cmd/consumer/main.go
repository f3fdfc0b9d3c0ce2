// Command consumer is a simple sample of a basic consumer. It subscribes to a
// specified topic, durable topic subscription, or queue (including temporary
// variants) and prints every received message until interrupted.
//
// The specified username, connection factory, topic, queue, and durable
// subscription name should exist in your broker configuration.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
	"github.com/peake100/amqpSamples-go/jndi"
)

var (
	username = flag.String("username", "", "username configured on the broker")
	password = flag.String("password", "", "password, defaults to empty string")
	vpn      = flag.String("vpn", "", "message VPN, defaults to the default vpn")
	url      = flag.String("url", "", "URL to access the naming store (e.g. amqp://10.10.10.10:5672)")
	cfName   = flag.String("cf", "cf/default", "connection factory name")

	topicName         = flag.String("topic", "", "topic name in the naming store (topic/...)")
	physicalTopicName = flag.String("physicalTopic", "", "physical topic name")
	durableSN         = flag.String("durableSN", "", "durable subscription name")
	queueName         = flag.String("queue", "", "queue name in the naming store (queue/...)")
	physicalQueueName = flag.String("physicalQueue", "", "physical queue name")
	tempTopic         = flag.Bool("tempTopic", false, "consume from a temporary topic")
	tempQueue         = flag.Bool("tempQueue", false, "consume from a temporary queue")
)

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

// countSelected tallies how many destination selectors were given; exactly one
// must be.
func countSelected(selected ...bool) int {
	count := 0
	for _, isSet := range selected {
		if isSet {
			count++
		}
	}
	return count
}

func main() {
	logger := internal.CreateSampleLogger("consumer")
	flag.Parse()

	if *url == "" {
		missingFlag(`Please specify "-url" parameter`)
	}
	if *username == "" {
		missingFlag(`Please specify "-username" parameter`)
	}
	selectors := countSelected(
		*topicName != "", *physicalTopicName != "",
		*queueName != "", *physicalQueueName != "",
		*tempTopic, *tempQueue,
	)
	if selectors != 1 {
		missingFlag(
			"Please specify one of " +
				"[-topic, -physicalTopic, -queue, -physicalQueue, -tempTopic, -tempQueue]",
		)
	}

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, *url).
		Set(jndi.PropertySecurityPrincipal, *username).
		Set(jndi.PropertySecurityCredentials, *password).
		Set(jndi.PropertySSLValidateCertificate, false)
	if *vpn != "" {
		env.Set(jndi.PropertyVPN, *vpn)
	}

	initialContext, err := jndi.NewInitialContext(env)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating initial context")
	}
	defer initialContext.Close()

	cf, err := initialContext.LookupConnectionFactory(*cfName)
	if err != nil {
		logger.Fatal().Err(err).Msg("error looking up connection factory")
	}

	connection, err := cf.CreateConnection()
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting to broker")
	}
	defer connection.Close()

	logger.Info().Stringer("METADATA", connection.Metadata()).Msg("connected")

	session, err := connection.CreateSession(broker.AutoAcknowledge)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating session")
	}

	var destination *broker.Destination
	switch {
	case *topicName != "":
		destination, err = initialContext.LookupDestination(*topicName)
	case *physicalTopicName != "":
		destination = session.CreateTopic(*physicalTopicName)
	case *queueName != "":
		destination, err = initialContext.LookupDestination(*queueName)
	case *physicalQueueName != "":
		destination, err = session.CreateQueue(*physicalQueueName)
	case *tempTopic:
		destination, err = session.CreateTemporaryTopic()
	case *tempQueue:
		destination, err = session.CreateTemporaryQueue()
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("error resolving destination")
	}

	var consumer *broker.Consumer
	if *durableSN != "" {
		consumer, err = session.CreateDurableSubscriber(destination, *durableSN)
	} else {
		consumer, err = session.CreateConsumer(destination)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating consumer")
	}

	logger.Info().Msg("waiting for messages... (press Ctrl+C to terminate)")

	for {
		msg, err := consumer.Receive(0)
		if err != nil {
			logger.Error().Err(err).Msg("Exiting.....")
			os.Exit(1)
		}
		if text, isText := msg.Text(); isText {
			logger.Info().Str("BODY", text).Msg("RCVD text message")
		} else {
			logger.Info().Str("DUMP", msg.Dump()).Msg("RCVD")
		}
	}
}
