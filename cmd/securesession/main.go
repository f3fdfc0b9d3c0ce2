// Command securesession is a simple sample of a secure producer. It connects over
// TLS with configurable protocol floor, cipher suites, trust material, and
// optional client-certificate authentication, then publishes ten text messages to
// a topic or queue.
//
// The broker must have TLS enabled and, for certificate validation, present a
// chain signed by a root in the trust store given with -ts. For CLIENT_CERTIFICATE
// authentication the broker must trust the root that signed the certificate in
// -ks.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
	"github.com/peake100/amqpSamples-go/jndi"
)

var (
	username = flag.String("username", "", "username, mandatory with BASIC authentication")
	password = flag.String("password", "", "password, defaults to empty string")
	vpn      = flag.String("vpn", "", "message VPN, defaults to the default vpn")
	url      = flag.String("url", "", "URL to access the naming store (e.g. amqps://10.10.10.10:5671)")
	cfName   = flag.String("cf", "cf/default", "connection factory name")

	authScheme = flag.String("x", broker.AuthBasic, "authentication scheme, one of BASIC, CLIENT_CERTIFICATE")

	protocol = flag.String("prot", "", "minimum TLS protocol, one of tlsv1, tlsv1.1, tlsv1.2, tlsv1.3")
	ciphers  = flag.String("ciphers", "", "comma-separated cipher suite names")
	ts       = flag.String("ts", "", "trust store: PEM bundle of trusted roots")
	ks       = flag.String("ks", "", "key store: PEM file with client certificate and key")
	kspwd    = flag.String("kspwd", "", "key store private key password")

	noValidateCertificates = flag.Bool("no_validate_certificates", false, "disable server certificate validation")
	noValidateDates        = flag.Bool("no_validate_dates", false, "disable certificate date validation")
	cn                     = flag.String("cn", "", "comma-separated trusted common names")

	topicName         = flag.String("topic", "", "topic name in the naming store (topic/...)")
	physicalTopicName = flag.String("physicalTopic", "", "physical topic name")
	queueName         = flag.String("queue", "", "queue name in the naming store (queue/...)")
	physicalQueueName = flag.String("physicalQueue", "", "physical queue name")

	numMsgs = flag.Int("n", 10, "number of messages to send")
)

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

// splitList breaks a comma-separated flag into its entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func main() {
	logger := internal.CreateSampleLogger("securesession")
	flag.Parse()

	if *url == "" {
		missingFlag(`Please specify "-url" parameter`)
	}
	scheme := strings.ToUpper(*authScheme)
	if scheme != broker.AuthBasic && scheme != broker.AuthClientCertificate {
		missingFlag(fmt.Sprintf(
			"Illegal authentication type %q, expected one of BASIC, CLIENT_CERTIFICATE",
			*authScheme,
		))
	}
	if scheme == broker.AuthBasic && *username == "" {
		missingFlag(`Please specify "-username" parameter when BASIC authentication is used`)
	}
	if scheme == broker.AuthClientCertificate && *ks == "" {
		missingFlag(`Please specify "-ks" parameter when CLIENT_CERTIFICATE authentication is used`)
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

	tuning := broker.NewSecureTuning()
	tuning.Protocol = *protocol
	tuning.Ciphers = splitList(*ciphers)
	tuning.TrustStore = *ts
	tuning.KeyStore = *ks
	tuning.KeyStorePassword = *kspwd
	tuning.ValidateCertificates = !*noValidateCertificates
	tuning.ValidateDates = !*noValidateDates
	tuning.TrustedCommonNames = splitList(*cn)

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, *url).
		Set(jndi.PropertySecurityPrincipal, *username).
		Set(jndi.PropertySecurityCredentials, *password).
		Set(jndi.PropertyAuthenticationScheme, scheme).
		Set(jndi.PropertySecureTuning, tuning)
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

	logger.Info().Stringer("METADATA", connection.Metadata()).Msg("connected securely")

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

	testMessage := broker.NewTextMessage("Hello from securesession")
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
