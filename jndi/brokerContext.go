package jndi

import (
	"strings"

	"github.com/peake100/amqpSamples-go/broker"
)

// brokerContext is the broker-hosted naming store: connection factory records are
// synthesized from the environment itself, the way the appliance's built-in JNDI
// store hands back factories configured against the connection it was reached
// over. Destination names carry their kind as a topic/ or queue/ prefix.
type brokerContext struct {
	env Environment
}

func newBrokerContext(env Environment) *brokerContext {
	return &brokerContext{env: env}
}

func (ctx *brokerContext) LookupConnectionFactory(
	name string,
) (*broker.ConnectionFactory, error) {
	// Any cf/ name resolves against this store; record-level variants live in the
	// file and LDAP stores.
	if !strings.HasPrefix(name, "cf/") {
		return nil, ErrNameNotFound{Name: name}
	}
	return ConnectionFactoryFromEnvironment(ctx.env), nil
}

func (ctx *brokerContext) LookupDestination(name string) (*broker.Destination, error) {
	switch {
	case strings.HasPrefix(name, TopicNamePrefix):
		return broker.NewTopic(strings.TrimPrefix(name, TopicNamePrefix)), nil
	case strings.HasPrefix(name, QueueNamePrefix):
		return broker.NewQueue(strings.TrimPrefix(name, QueueNamePrefix)), nil
	default:
		return nil, ErrNameNotFound{Name: name}
	}
}

func (ctx *brokerContext) Close() error {
	return nil
}

// ConnectionFactoryFromEnvironment builds a connection factory straight from the
// environment's properties. This is also how programmatic samples skip the naming
// layer entirely.
func ConnectionFactoryFromEnvironment(env Environment) *broker.ConnectionFactory {
	cf := broker.NewConnectionFactory(env.GetString(PropertyProviderURL, ""))
	cf.Username = env.GetString(PropertySecurityPrincipal, "")
	cf.Password = env.GetString(PropertySecurityCredentials, "")
	cf.VPN = env.GetString(PropertyVPN, "")
	cf.DirectTransport = env.GetBool(PropertyOptimizeDirect, false)
	cf.ReconnectRetries = env.GetInt(PropertyReconnectRetries, 0)
	cf.ReceiveADWindowSize = env.GetInt(PropertyReceiveADWindowSize, 0)
	cf.AuthScheme = env.GetString(PropertyAuthenticationScheme, broker.AuthBasic)

	if tuning, ok := env[PropertySecureTuning].(*broker.SecureTuning); ok {
		cf.Tuning = tuning
	} else if !env.GetBool(PropertySSLValidateCertificate, true) {
		// The samples connect to appliances with self-signed certificates unless
		// told otherwise.
		tuning := broker.NewSecureTuning()
		tuning.ValidateCertificates = false
		cf.Tuning = tuning
	}

	return cf
}
