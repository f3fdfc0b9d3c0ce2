// Command rrguaranteedrequester implements the requester half of guaranteed
// request/reply messaging:
//
//	|-----------------------|  -- request queue/topic --> |----------------------|
//	| rrguaranteedrequester |                              | rrguaranteedreplier  |
//	|-----------------------|  <----- reply queue -------  |----------------------|
//
// The request travels persistent to a durable request queue or topic; the reply
// arrives on a temporary reply queue. Either -rt or -rq must be specified, but not
// both.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/peake100/amqpSamples-go/arith"
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

	requestTopic = flag.String("rt", "", "topic name to use for the request (topic/...)")
	requestQueue = flag.String("rq", "", "queue name to use for the request (queue/...)")
)

// replyTimeout is how long the requester waits for a guaranteed reply.
const replyTimeout = 5 * time.Second

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

func main() {
	logger := internal.CreateSampleLogger("rrguaranteedrequester")
	flag.Parse()

	if *url == "" {
		missingFlag(`Please specify "-url" parameter`)
	}
	if *username == "" {
		missingFlag(`Please specify "-username" parameter`)
	}
	if (*requestTopic == "") == (*requestQueue == "") {
		missingFlag("Please specify one of [-rt, -rq], but not both")
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

	requestName := *requestTopic
	if requestName == "" {
		requestName = *requestQueue
	}
	requestDest, err := initialContext.LookupDestination(requestName)
	if err != nil {
		logger.Fatal().Err(err).Msg("error looking up request destination")
	}
	if requestDest.Kind == broker.KindQueue {
		// Make sure the durable request queue exists before publishing to it.
		_, err = session.CreateQueue(requestDest.Name)
		if err != nil {
			logger.Fatal().Err(err).Msg("error declaring request queue")
		}
	}

	replyTo, err := session.CreateTemporaryQueue()
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating reply queue")
	}

	consumer, err := session.CreateConsumer(replyTo)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating reply consumer")
	}

	producer, err := session.CreateProducer(nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating producer")
	}

	request := broker.NewBytesMessage(arith.EncodeRequest(arith.Plus, 8, 9))
	request.ReplyTo = replyTo.Name
	request.CorrelationID = fmt.Sprintf("request-%v", time.Now().UnixNano())
	// The request must survive broker failover on its way to the replier.
	request.Mode = broker.Persistent

	err = producer.SendTo(requestDest, request)
	if err != nil {
		logger.Fatal().Err(err).Msg("error sending request")
	}

	reply, err := consumer.Receive(replyTimeout)
	if err == broker.ErrReceiveTimeout {
		logger.Warn().Dur("TIMEOUT", replyTimeout).Msg("failed to receive a reply in time")
		return
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("error receiving reply")
	}

	if reply.CorrelationID != request.CorrelationID {
		logger.Fatal().Msg("received invalid correlation ID in reply message")
	}

	ok, result, err := arith.DecodeReply(reply.Body)
	if err != nil {
		logger.Fatal().Err(err).Msg("error decoding reply")
	}

	event := logger.Info().
		Int32("LEFT", 8).
		Stringer("OPERATION", arith.Plus).
		Int32("RIGHT", 9)
	if ok {
		event.Float64("RESULT", result).Msg("got reply")
	} else {
		event.Msg("operation failed")
	}
}
