// Command ldaplookup looks up a connection factory and a destination in an LDAP
// directory, connects to the broker they describe, and then sends one message to
// and receives one message from that destination.
//
// The records must already be present in the directory; ldapbind puts them there.
// For topic destinations the message is received through a durable subscription
// when -durableSN is given.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
	"github.com/peake100/amqpSamples-go/jndi"
)

var (
	username  = flag.String("username", "", "username configured on the broker")
	password  = flag.String("password", "", "password, defaults to empty string")
	vpn       = flag.String("vpn", "", "message VPN, defaults to the default vpn")
	durableSN = flag.String("durableSN", "", "durable subscription name for topic destinations")

	ldapURL      = flag.String("ldapURL", "", "directory server URL (e.g. ldap://localhost:389)")
	ldapUsername = flag.String("ldapUsername", "", "directory bind DN")
	ldapPassword = flag.String("ldapPassword", "", "directory bind password")
	ldapCFDN     = flag.String("ldapCFDN", "", "DN of the connection factory record")
	ldapDestDN   = flag.String("ldapDestDN", "", "DN of the destination record")
)

// receiveTimeout bounds the demonstration receive.
const receiveTimeout = 10 * time.Second

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

func main() {
	logger := internal.CreateSampleLogger("ldaplookup")
	flag.Parse()

	if *ldapURL == "" {
		missingFlag(`Please specify "-ldapURL" parameter`)
	}
	if *ldapCFDN == "" {
		missingFlag(`Please specify "-ldapCFDN" parameter`)
	}
	if *ldapDestDN == "" {
		missingFlag(`Please specify "-ldapDestDN" parameter`)
	}
	if *username == "" {
		missingFlag(`Please specify "-username" parameter`)
	}

	// The directory gets its own environment and credentials, separate from the
	// broker's.
	directoryEnv := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, *ldapURL).
		Set(jndi.PropertySecurityPrincipal, *ldapUsername).
		Set(jndi.PropertySecurityCredentials, *ldapPassword)

	directory, err := jndi.NewLDAPContext(directoryEnv)
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting to directory")
	}
	defer directory.Close()

	cf, err := directory.LookupConnectionFactory(*ldapCFDN)
	if err != nil {
		logger.Fatal().Err(err).Str("DN", *ldapCFDN).Msg("error looking up connection factory")
	}

	destination, err := directory.LookupDestination(*ldapDestDN)
	if err != nil {
		logger.Fatal().Err(err).Str("DN", *ldapDestDN).Msg("error looking up destination")
	}

	// Broker credentials come from the command line, not the record.
	cf.Username = *username
	cf.Password = *password
	if *vpn != "" {
		cf.VPN = *vpn
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

	if destination.Kind == broker.KindQueue {
		_, err = session.CreateQueue(destination.Name)
		if err != nil {
			logger.Fatal().Err(err).Msg("error declaring looked-up queue")
		}
	}

	// Subscribe before sending so the demonstration message is not missed.
	var consumer *broker.Consumer
	if destination.Kind == broker.KindTopic && *durableSN != "" {
		consumer, err = session.CreateDurableSubscriber(destination, *durableSN)
	} else {
		consumer, err = session.CreateConsumer(destination)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating consumer")
	}

	producer, err := session.CreateProducer(destination)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating producer")
	}

	testMessage := broker.NewTextMessage("Hello from ldaplookup")
	err = producer.Send(testMessage)
	if err != nil {
		logger.Fatal().Err(err).Msg("error sending message")
	}
	text, _ := testMessage.Text()
	logger.Info().Str("BODY", text).Stringer("DESTINATION", destination).Msg("SENT")

	received, err := consumer.Receive(receiveTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("error receiving message")
	}
	if text, isText := received.Text(); isText {
		logger.Info().Str("BODY", text).Msg("RCVD")
	} else {
		logger.Info().Str("DUMP", received.Dump()).Msg("RCVD")
	}

	logger.Info().Msg("DONE")
}
