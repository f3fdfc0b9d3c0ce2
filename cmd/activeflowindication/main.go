// Command activeflowindication demonstrates flow-state events on an exclusive
// queue. Two connections attach consumers to a single-active-consumer queue: the
// first becomes active, the second sits in standby. When the first connection is
// closed the broker promotes the standby and the sample logs the transition.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
	"github.com/peake100/amqpSamples-go/jndi"
	"github.com/rs/zerolog"
)

var (
	username = flag.String("username", "", "username configured on the broker")
	password = flag.String("password", "", "password, defaults to empty string")
	vpn      = flag.String("vpn", "", "message VPN, defaults to the default vpn")
	url      = flag.String("url", "", "URL to access the naming store (e.g. amqp://10.10.10.10:5672)")

	physicalQueueName = flag.String("physicalQueue", "active_flow_queue", "physical queue name")
)

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

// attach opens a connection and an exclusive consumer on the shared queue,
// reporting flow transitions under the given label.
func attach(
	logger zerolog.Logger, cf *broker.ConnectionFactory, queue string, label string,
) (*broker.Connection, *broker.Consumer, error) {
	connection, err := cf.CreateConnection()
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting %v: %w", label, err)
	}

	session, err := connection.CreateSession(broker.AutoAcknowledge)
	if err != nil {
		_ = connection.Close()
		return nil, nil, fmt.Errorf("error creating session for %v: %w", label, err)
	}

	consumer, err := session.CreateExclusiveConsumer(broker.NewQueue(queue))
	if err != nil {
		_ = connection.Close()
		return nil, nil, fmt.Errorf("error creating consumer for %v: %w", label, err)
	}

	consumer.SetFlowListener(func(event broker.FlowEvent) {
		logger.Info().Str("CONSUMER", label).Stringer("EVENT", event).Msg("flow event")
	})
	consumer.SetMessageListener(func(msg *broker.Message, _ func() error) {
		text, _ := msg.Text()
		logger.Info().Str("CONSUMER", label).Str("BODY", text).Msg("RCVD")
	})

	return connection, consumer, nil
}

func main() {
	logger := internal.CreateSampleLogger("activeflowindication")
	flag.Parse()

	if *url == "" {
		missingFlag(`Please specify "-url" parameter`)
	}
	if *username == "" {
		missingFlag(`Please specify "-username" parameter`)
	}

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, *url).
		Set(jndi.PropertySecurityPrincipal, *username).
		Set(jndi.PropertySecurityCredentials, *password).
		Set(jndi.PropertySSLValidateCertificate, false)
	if *vpn != "" {
		env.Set(jndi.PropertyVPN, *vpn)
	}

	cf := jndi.ConnectionFactoryFromEnvironment(env)

	// First consumer attaches and becomes the queue's active consumer.
	connection1, _, err := attach(logger, cf, *physicalQueueName, "consumer-1")
	if err != nil {
		logger.Fatal().Err(err).Msg("error attaching first consumer")
	}

	logger.Info().Stringer("METADATA", connection1.Metadata()).Msg("connected")

	// Second consumer attaches in standby: the broker holds its deliveries until
	// the active consumer goes away.
	connection2, _, err := attach(logger, cf, *physicalQueueName, "consumer-2")
	if err != nil {
		logger.Fatal().Err(err).Msg("error attaching second consumer")
	}
	defer connection2.Close()

	// Seed the queue so the active consumer demonstrably receives.
	feedSession, err := connection2.CreateSession(broker.AutoAcknowledge)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating feed session")
	}
	feeder, err := feedSession.CreateProducer(broker.NewQueue(*physicalQueueName))
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating feed producer")
	}
	feeder.SetDeliveryMode(broker.Persistent)
	for i := 0; i < 10; i++ {
		err = feeder.Send(broker.NewTextMessage(fmt.Sprintf("Message %v", i)))
		if err != nil {
			logger.Fatal().Err(err).Msg("error seeding queue")
		}
	}

	// Let consumer-1 drain a few deliveries as the active consumer.
	time.Sleep(2 * time.Second)

	// Dropping the first connection forces the broker to promote consumer-2; its
	// first delivery logs FLOW_ACTIVE.
	logger.Info().Msg("closing first connection, standby should take over")
	err = connection1.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("error closing first connection")
	}

	time.Sleep(2 * time.Second)
	logger.Info().Msg("DONE")
}
