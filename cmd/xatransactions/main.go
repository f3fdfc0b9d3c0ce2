// Command xatransactions demonstrates transacted sessions: a batch of persistent
// messages is published inside a transaction and only becomes visible on commit;
// one message is then received, acknowledged into a second transaction, and
// settled by its commit. Each transaction carries an xid-style branch label for
// the log.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
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
)

// Batch shape mirrored from the original transaction demo: twenty copies of a
// large padded payload.
const (
	batchSize   = 20
	payloadSize = 32000
)

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

// newXid builds a branch label for logging: a fixed global ID plus a random
// branch ID, the way the original sample labeled its transaction branches.
func newXid(gid int, bid int) string {
	return fmt.Sprintf("xid(%v:%v)", gid, bid)
}

func main() {
	logger := internal.CreateSampleLogger("xatransactions")
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

	connection, err := cf.CreateConnection()
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting to broker")
	}
	defer connection.Close()

	logger.Info().Stringer("METADATA", connection.Metadata()).Msg("connected")

	session, err := connection.CreateSession(broker.Transacted)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating transacted session")
	}

	queue, err := session.CreateQueue("q")
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating queue")
	}

	producer, err := session.CreateProducer(queue)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating producer")
	}
	producer.SetDeliveryMode(broker.Persistent)

	consumer, err := session.CreateConsumer(queue)
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating consumer")
	}

	rand.Seed(time.Now().UnixNano())

	// First branch: publish the batch and commit it.
	xid := newXid(1, rand.Intn(1000))
	logger.Info().Str("XID", xid).Int("COUNT", batchSize).Msg("publishing batch")

	payload := fmt.Sprintf("%-*v", payloadSize, "Charles")
	msg := broker.NewTextMessage(payload)
	for count := 0; count < batchSize; count++ {
		err = producer.Send(msg)
		if err != nil {
			logger.Fatal().Err(err).Msg("error sending message")
		}
	}

	err = session.Commit()
	if err != nil {
		logger.Fatal().Err(err).Msg("error committing publish transaction")
	}
	logger.Info().Str("XID", xid).Msg("publish transaction committed")

	// The batch is visible now that it is committed.
	received, err := consumer.Receive(10 * time.Second)
	if err != nil {
		logger.Fatal().Err(err).Msg("error receiving committed message")
	}
	text, _ := received.Text()
	logger.Info().
		Str("BODY", strings.TrimSpace(text)).
		Int("SIZE", len(received.Body)).
		Msg("RCVD")

	// Second branch: the receipt joins this transaction through its
	// acknowledgement and is settled by the commit. Without the acknowledgement
	// the commit would settle nothing and the broker would redeliver.
	xid = newXid(1, rand.Intn(1000))
	err = received.Acknowledge()
	if err != nil {
		logger.Fatal().Err(err).Msg("error acknowledging received message")
	}
	err = session.Commit()
	if err != nil {
		logger.Fatal().Err(err).Msg("error committing receive transaction")
	}
	logger.Info().Str("XID", xid).Msg("receive transaction committed")

	logger.Info().Msg("DONE")
}
