// Command progconsumer is a simple sample of a basic consumer created from a
// programmatically built connection factory: no naming store is consulted, the
// broker host and credentials come straight from the command line.
//
// It subscribes to a specified topic or queue (including temporary variants) and
// prints every received message through a listener callback until interrupted.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
)

var (
	username = flag.String("username", "", "username configured on the broker")
	password = flag.String("password", "", "password, defaults to empty string")
	host     = flag.String("host", "", "broker host (e.g. amqp://10.10.10.10:5672)")
	vpn      = flag.String("vpn", "", "message VPN, defaults to the default vpn")

	physicalTopicName = flag.String("physicalTopic", "", "physical topic name")
	durableSN         = flag.String("durableSN", "", "durable subscription name")
	tempTopic         = flag.Bool("tempTopic", false, "consume from a temporary topic")
	physicalQueueName = flag.String("physicalQueue", "", "physical queue name")
	tempQueue         = flag.Bool("tempQueue", false, "consume from a temporary queue")
)

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

func main() {
	logger := internal.CreateSampleLogger("progconsumer")
	flag.Parse()

	if *host == "" {
		missingFlag(`Please specify "-host" parameter`)
	}
	if *username == "" {
		missingFlag(`Please specify "-username" parameter`)
	}
	selectors := 0
	if *physicalTopicName != "" {
		selectors++
	}
	if *physicalQueueName != "" {
		selectors++
	}
	if *tempTopic {
		selectors++
	}
	if *tempQueue {
		selectors++
	}
	if selectors != 1 {
		missingFlag("Please specify one of [-physicalTopic, -tempTopic, -physicalQueue, -tempQueue]")
	}

	// Build the connection factory programmatically instead of looking it up.
	cf := broker.NewConnectionFactory(*host)
	cf.Username = *username
	cf.Password = *password
	cf.VPN = *vpn
	cf.Logger = logger

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
	case *physicalTopicName != "":
		destination = session.CreateTopic(*physicalTopicName)
	case *tempTopic:
		destination, err = session.CreateTemporaryTopic()
	case *physicalQueueName != "":
		destination, err = session.CreateQueue(*physicalQueueName)
	case *tempQueue:
		destination, err = session.CreateTemporaryQueue()
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("error resolving destination")
	}

	var consumer *broker.Consumer
	if *durableSN != "" && destination.Kind == broker.KindTopic {
		consumer, err = session.CreateDurableSubscriber(destination, *durableSN)
	} else {
		consumer, err = session.CreateConsumer(destination)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating consumer")
	}

	logger.Info().
		Stringer("DESTINATION", destination).
		Msg("listening for messages... (press Ctrl+C to terminate)")

	// Receive through a listener callback instead of a synchronous loop.
	consumer.SetMessageListener(func(msg *broker.Message, ack func() error) {
		if text, isText := msg.Text(); isText {
			logger.Info().Str("BODY", text).Msg("RCVD text message")
		} else {
			logger.Info().Str("DUMP", msg.Dump()).Msg("RCVD")
		}
	})

	// Block forever; the listener does the work.
	select {}
}
