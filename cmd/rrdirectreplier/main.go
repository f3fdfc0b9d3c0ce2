// Command rrdirectreplier implements the replier half of direct request/reply
// messaging: it listens on a request topic, evaluates each arithmetic request,
// and sends the reply to the request's reply-to queue with the request's
// correlation ID echoed back.
package main

import (
	"flag"
	"fmt"
	"os"

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

	requestTopic = flag.String("rt", "", "topic name to listen on for requests (topic/...)")
)

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

func main() {
	logger := internal.CreateSampleLogger("rrdirectreplier")
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

	consumer, err := session.CreateConsumer(requestDest)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating request consumer")
	}

	producer, err := session.CreateProducer(nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating reply producer")
	}

	logger.Info().
		Stringer("DESTINATION", requestDest).
		Msg("listening for requests... (press Ctrl+C to terminate)")

	consumer.SetMessageListener(func(request *broker.Message, _ func() error) {
		if request.ReplyTo == "" {
			logger.Warn().Msg("received a request with no reply-to destination, ignoring")
			return
		}

		// A malformed request still gets a reply, with the success flag cleared,
		// so the requester does not wait out its timeout.
		var body []byte
		op, left, right, err := arith.DecodeRequest(request.Body)
		if err != nil {
			logger.Warn().Err(err).Msg("received an undecodable request")
			body = arith.EncodeReply(false, 0)
		} else {
			result, ok := op.Apply(left, right)
			body = arith.EncodeReply(ok, result)
			logger.Info().
				Int32("LEFT", left).
				Stringer("OPERATION", op).
				Int32("RIGHT", right).
				Bool("OK", ok).
				Float64("RESULT", result).
				Msg("answering request")
		}

		reply := broker.NewBytesMessage(body)
		reply.CorrelationID = request.CorrelationID
		reply.Mode = broker.NonPersistent
		reply.SetBoolProperty(broker.PropIsReply, true)

		err = producer.SendTo(broker.NewQueue(request.ReplyTo), reply)
		if err != nil {
			logger.Error().Err(err).Msg("error sending reply")
		}
	})

	select {}
}
