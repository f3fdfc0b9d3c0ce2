// Command queuebrowser walks the current contents of a queue and prints each
// message without consuming any of them: everything fetched is requeued when the
// browse finishes.
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

	queueName         = flag.String("queue", "", "queue name in the naming store (queue/...)")
	physicalQueueName = flag.String("physicalQueue", "", "physical queue name")
)

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

func main() {
	logger := internal.CreateSampleLogger("queuebrowser")
	flag.Parse()

	if *url == "" {
		missingFlag(`Please specify "-url" parameter`)
	}
	if *username == "" {
		missingFlag(`Please specify "-username" parameter`)
	}
	if (*queueName == "") == (*physicalQueueName == "") {
		missingFlag("Please specify one of [-queue, -physicalQueue]")
	}

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, *url).
		Set(jndi.PropertySecurityPrincipal, *username).
		Set(jndi.PropertySecurityCredentials, *password).
		Set(jndi.PropertySSLValidateCertificate, false).
		// Browse with a wide assured-delivery window so the walk is not
		// throttled.
		Set(jndi.PropertyReceiveADWindowSize, 255)
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

	var queue *broker.Destination
	if *queueName != "" {
		queue, err = initialContext.LookupDestination(*queueName)
	} else {
		queue, err = session.CreateQueue(*physicalQueueName)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("error resolving queue")
	}

	browser, err := session.CreateBrowser(queue)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating browser")
	}

	browsed := 0
	for {
		msg, ok, err := browser.Next()
		if err != nil {
			logger.Fatal().Err(err).Msg("error browsing queue")
		}
		if !ok {
			break
		}
		browsed++
		if text, isText := msg.Text(); isText {
			logger.Info().Str("BODY", text).Msg("RCVD")
		} else {
			logger.Info().Str("DUMP", msg.Dump()).Msg("RCVD")
		}
	}

	// Closing the browser performs the requeue, so it has to happen before the
	// summary line is true.
	err = browser.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("error requeueing browsed messages")
	}

	logger.Info().Int("BROWSED", browsed).Msg("browse complete, messages left on queue")
}
