// Command rrguaranteedreplier implements the replier half of guaranteed
// request/reply messaging. It services requests from either a durable request
// queue or a durable topic subscription, and sends every reply persistent. Either
// -rt (with -rs) or -rq must be specified, but not both.
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
	durableSN    = flag.String("rs", "", "durable subscription name (required with -rt)")
	requestQueue = flag.String("rq", "", "queue name receiving requests (queue/...)")
)

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

func main() {
	logger := internal.CreateSampleLogger("rrguaranteedreplier")
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
	if *requestTopic != "" && *durableSN == "" {
		missingFlag(`Please specify "-rs" parameter when "-rt" is used`)
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

	// Requests arrive through a durable endpoint so none are lost while the
	// replier is down: a durable queue, or a durable subscription on the topic.
	var consumer *broker.Consumer
	if *requestQueue != "" {
		requestDest, lookupErr := initialContext.LookupDestination(*requestQueue)
		if lookupErr != nil {
			logger.Fatal().Err(lookupErr).Msg("error looking up request queue")
		}
		_, err = session.CreateQueue(requestDest.Name)
		if err != nil {
			logger.Fatal().Err(err).Msg("error declaring request queue")
		}
		consumer, err = session.CreateConsumer(requestDest)
	} else {
		requestDest, lookupErr := initialContext.LookupDestination(*requestTopic)
		if lookupErr != nil {
			logger.Fatal().Err(lookupErr).Msg("error looking up request topic")
		}
		consumer, err = session.CreateDurableSubscriber(requestDest, *durableSN)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating request consumer")
	}

	producer, err := session.CreateProducer(nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating reply producer")
	}

	logger.Info().Msg("listening for requests... (press Ctrl+C to terminate)")

	consumer.SetMessageListener(func(request *broker.Message, _ func() error) {
		if request.ReplyTo == "" {
			logger.Warn().Msg("received a request with no reply-to destination, ignoring")
			return
		}

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
		// Replies are guaranteed too.
		reply.Mode = broker.Persistent
		reply.SetBoolProperty(broker.PropIsReply, true)

		err = producer.SendTo(broker.NewQueue(request.ReplyTo), reply)
		if err != nil {
			logger.Error().Err(err).Msg("error sending reply")
		}
	})

	select {}
}
