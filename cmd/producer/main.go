// Command producer is a simple sample of a basic producer. It publishes a number
// of text messages to a specified topic or queue, looked up through the naming
// store or created from a physical name.
//
// The specified username, connection factory, topic and queue should exist in your
// broker configuration.
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
	username = flag.String("username", "", "username configured on the broker")
	password = flag.String("password", "", "password, defaults to empty string")
	vpn      = flag.String("vpn", "", "message VPN, defaults to the default vpn")
	url      = flag.String("url", "", "URL to access the naming store (e.g. amqp://10.10.10.10:5672)")
	cfName   = flag.String("cf", "cf/default", "connection factory name")

	topicName         = flag.String("topic", "", "topic name in the naming store (topic/...)")
	physicalTopicName = flag.String("physicalTopic", "", "physical topic name")
	queueName         = flag.String("queue", "", "queue name in the naming store (queue/...)")
	physicalQueueName = flag.String("physicalQueue", "", "physical queue name")

	xml       = flag.Bool("xml", false, "send an XML payload used with content routing")
	optDirect = flag.Bool("optDirect", false, "optimize for a single producer of direct messages")
	numMsgs   = flag.Int("n", 10, "number of messages to send")
)

// missingFlag prints usage plus the original samples' please-specify line and
// exits without connecting.
func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

func main() {
	logger := internal.CreateSampleLogger("producer")
	flag.Parse()

	if *url == "" {
		missingFlag(`Please specify "-url" parameter`)
	}
	if *username == "" {
		missingFlag(`Please specify "-username" parameter`)
	}
	selectors := 0
	for _, selector := range []string{
		*topicName, *physicalTopicName, *queueName, *physicalQueueName,
	} {
		if selector != "" {
			selectors++
		}
	}
	if selectors != 1 {
		missingFlag("Please specify one of [-topic, -physicalTopic, -queue, -physicalQueue]")
	}

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, *url).
		Set(jndi.PropertySecurityPrincipal, *username).
		Set(jndi.PropertySecurityCredentials, *password).
		Set(jndi.PropertySSLValidateCertificate, false)
	if *vpn != "" {
		env.Set(jndi.PropertyVPN, *vpn)
	}
	if *optDirect {
		env.Set(jndi.PropertyOptimizeDirect, true)
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
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("error resolving destination")
	}

	producer, err := session.CreateProducer(destination)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating producer")
	}

	body := "Hello from producer"
	if *xml {
		body = "<title>Hello from producer</title>"
	}
	testMessage := broker.NewTextMessage(body)
	// Message properties override the setting in the connection factory.
	testMessage.SetBoolProperty(broker.PropIsXML, *xml)

	logger.Info().Int("COUNT", *numMsgs).Msg("about to send text messages")
	for i := 0; i < *numMsgs; i++ {
		err = producer.Send(testMessage)
		if err != nil {
			logger.Fatal().Err(err).Msg("error sending message")
		}
		text, _ := testMessage.Text()
		logger.Info().Str("BODY", text).Msg("SENT")
		time.Sleep(1 * time.Second)
	}
	logger.Info().Msg("DONE")
}
