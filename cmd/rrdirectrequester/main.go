// Command rrdirectrequester implements the requester half of direct request/reply
// messaging:
//
//	|-------------------|  --- request topic --> |-----------------|
//	| rrdirectrequester |                         | rrdirectreplier |
//	|-------------------|  <-- reply-to queue --- |-----------------|
//
// For each arithmetic operation it sends a request message carrying a temporary
// reply-to queue and a fresh correlation ID, then waits for the reply and checks
// the correlation ID matches.
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
	"github.com/rs/zerolog"
)

var (
	username = flag.String("username", "", "username configured on the broker")
	password = flag.String("password", "", "password, defaults to empty string")
	vpn      = flag.String("vpn", "", "message VPN, defaults to the default vpn")
	url      = flag.String("url", "", "URL to access the naming store (e.g. amqp://10.10.10.10:5672)")
	cfName   = flag.String("cf", "cf/default", "connection factory name")

	requestTopic = flag.String("rt", "", "topic name to use for the request (topic/...)")
)

// replyTimeout is how long a requester waits for a reply before giving up.
const replyTimeout = 2 * time.Second

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

// requestSeq feeds correlation IDs; combined with the process start time they are
// unique enough for a demonstration requester.
var requestSeq int

func nextCorrelationID() string {
	requestSeq++
	return fmt.Sprintf("request-%v-%v", time.Now().UnixNano(), requestSeq)
}

// doRequest sends one arithmetic request and waits for its reply on a temporary
// queue.
func doRequest(
	logger zerolog.Logger,
	session *broker.Session,
	producer *broker.Producer,
	requestDest *broker.Destination,
	op arith.Operation,
	left int32,
	right int32,
) error {
	// The reply will be received on this temporary queue.
	replyTo, err := session.CreateTemporaryQueue()
	if err != nil {
		return fmt.Errorf("error creating reply queue: %w", err)
	}

	consumer, err := session.CreateConsumer(replyTo)
	if err != nil {
		return fmt.Errorf("error creating reply consumer: %w", err)
	}
	defer consumer.Close()

	request := broker.NewBytesMessage(arith.EncodeRequest(op, left, right))
	// The reply destination and a correlation ID must ride along with the
	// request.
	request.ReplyTo = replyTo.Name
	request.CorrelationID = nextCorrelationID()
	// Only non-persistent messages travel as direct messages.
	request.Mode = broker.NonPersistent

	err = producer.SendTo(requestDest, request)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}

	reply, err := consumer.Receive(replyTimeout)
	if err == broker.ErrReceiveTimeout {
		logger.Warn().
			Dur("TIMEOUT", replyTimeout).
			Msg("failed to receive a reply in time")
		return nil
	}
	if err != nil {
		return fmt.Errorf("error receiving reply: %w", err)
	}

	if reply.CorrelationID == "" {
		return fmt.Errorf("received a reply message with no correlation ID")
	}
	if reply.CorrelationID != request.CorrelationID {
		return fmt.Errorf("received invalid correlation ID in reply message")
	}
	if !reply.BoolProperty(broker.PropIsReply) {
		logger.Warn().Msg("received a reply message without the reply flag set")
	}

	ok, result, err := arith.DecodeReply(reply.Body)
	if err != nil {
		return fmt.Errorf("error decoding reply: %w", err)
	}

	event := logger.Info().
		Int32("LEFT", left).
		Stringer("OPERATION", op).
		Int32("RIGHT", right)
	if ok {
		event.Float64("RESULT", result).Msg("got reply")
	} else {
		event.Msg("operation failed")
	}
	return nil
}

func main() {
	logger := internal.CreateSampleLogger("rrdirectrequester")
	flag.Parse()

	if *url == "" {
		missingFlag(`Please specify "-url" parameter`)
	}
	if *username == "" {
		missingFlag(`Please specify "-username" parameter`)
	}
	if *requestTopic == "" {
		missingFlag(`Please specify "-rt" parameter`)
	}

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, *url).
		Set(jndi.PropertySecurityPrincipal, *username).
		Set(jndi.PropertySecurityCredentials, *password).
		Set(jndi.PropertySSLValidateCertificate, false).
		// Direct request/reply rides on non-persistent delivery.
		Set(jndi.PropertyOptimizeDirect, true)
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

	requestDest, err := initialContext.LookupDestination(*requestTopic)
	if err != nil {
		logger.Fatal().Err(err).Msg("error looking up request topic")
	}

	// The producer used to send all requests; destinations are given per send.
	producer, err := session.CreateProducer(nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating producer")
	}

	operations := []arith.Operation{arith.Plus, arith.Minus, arith.Times, arith.Divide}
	for i, op := range operations {
		err = doRequest(logger, session, producer, requestDest, op, 5, 4)
		if err != nil {
			logger.Fatal().Err(err).Msg("request failed")
		}
		if i < len(operations)-1 {
			time.Sleep(1 * time.Second)
		}
	}
}
