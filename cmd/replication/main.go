// Command replication illustrates the use of an unacked list when publishing
// persistent messages against a replicated broker pair. Every message is added to
// the list before it is sent and removed when the broker confirms it; if the
// connection is lost mid-stream the sample redials forever and republishes
// whatever was still unconfirmed before carrying on.
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
	cfName   = flag.String("cf", "cf/default", "connection factory name")
	numMsgs  = flag.Int("n", 100, "number of messages to send")
)

// replicationTopic is the fixed subject this sample publishes on.
const replicationTopic = "replication_topic"

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

// publisher holds one connection's worth of publishing state and rebuilds itself
// after a failover.
type publisher struct {
	logger     zerolog.Logger
	cf         *broker.ConnectionFactory
	unacked    *broker.UnackedList
	connection *broker.Connection
	producer   *broker.Producer

	// closed is signalled by the exception listener when the broker drops us.
	closed chan error

	// Number of messages republished after failovers.
	numResent int
}

// connect dials (or redials) the broker and rebuilds the confirmed producer.
func (pub *publisher) connect() error {
	connection, err := pub.cf.CreateConnection()
	if err != nil {
		return fmt.Errorf("error connecting to broker: %w", err)
	}

	pub.closed = make(chan error, 1)
	connection.SetExceptionListener(func(err error) {
		pub.logger.Warn().Err(err).Msg("connection lost")
		pub.closed <- err
	})

	session, err := connection.CreateSession(broker.AutoAcknowledge)
	if err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}

	producer, err := session.CreateProducer(broker.NewTopic(replicationTopic))
	if err != nil {
		return fmt.Errorf("error creating producer: %w", err)
	}
	producer.SetDeliveryMode(broker.Persistent)

	// Confirms drive the unacked list: acked messages leave it, nacked ones stay
	// for the next republish pass.
	err = producer.EnableConfirms(func(correlationID string, acked bool) {
		if !acked {
			pub.logger.Warn().Str("KEY", correlationID).Msg("message nacked by broker")
			return
		}
		removeErr := pub.unacked.Remove(correlationID)
		if removeErr != nil {
			pub.logger.Error().Err(removeErr).Msg("confirm for untracked message")
		}
	})
	if err != nil {
		return fmt.Errorf("error enabling confirms: %w", err)
	}

	pub.connection = connection
	pub.producer = producer

	// Anything still unconfirmed from before the failover goes out again first.
	for _, msg := range pub.unacked.Get() {
		err = pub.producer.Send(msg)
		if err != nil {
			return fmt.Errorf("error republishing unacked message: %w", err)
		}
		pub.numResent++
		pub.logger.Info().Str("KEY", msg.CorrelationID).Msg("republished unacked message")
	}
	return nil
}

// dropped reports whether the connection died since the last check.
func (pub *publisher) dropped() bool {
	select {
	case <-pub.closed:
		return true
	default:
		return false
	}
}

func main() {
	logger := internal.CreateSampleLogger("replication")
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
		Set(jndi.PropertySSLValidateCertificate, false).
		// Redial forever; a replicated pair may take a while to fail over.
		Set(jndi.PropertyReconnectRetries, -1)
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
	cf.Logger = logger

	pub := &publisher{
		logger:  logger,
		cf:      cf,
		unacked: broker.NewUnackedList(),
	}
	err = pub.connect()
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting")
	}
	defer func() {
		if pub.connection != nil {
			_ = pub.connection.Close()
		}
	}()

	logger.Info().Stringer("METADATA", pub.connection.Metadata()).Msg("connected")

	for i := 0; i < *numMsgs; i++ {
		if pub.dropped() {
			err = pub.connect()
			if err != nil {
				logger.Fatal().Err(err).Msg("error reconnecting")
			}
		}

		msg := broker.NewTextMessage(fmt.Sprintf("Message %v", i))
		msg.CorrelationID = fmt.Sprintf("Message %v", i)

		// Track before sending so a crash between send and confirm still leaves
		// the message on the list.
		pub.unacked.Add(msg)
		err = pub.producer.Send(msg)
		if err != nil {
			// The message is already on the unacked list; the republish pass
			// after reconnecting will resend it.
			logger.Warn().Err(err).Int("SEQ", i).Msg("send failed, will resend after reconnect")
			continue
		}

		logger.Info().Str("KEY", msg.CorrelationID).Msg("SENT")
		time.Sleep(100 * time.Millisecond)
	}

	// Give in-flight confirms a moment to drain before reporting.
	time.Sleep(1 * time.Second)
	logger.Info().
		Int("RESENT", pub.numResent).
		Int("UNACKED", pub.unacked.Len()).
		Str("UNACKED_LIST", pub.unacked.String()).
		Msg("DONE")
}
