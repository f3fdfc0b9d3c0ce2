package jndi_test

import (
	"testing"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/jndi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialContextRequiresProviderURL(t *testing.T) {
	_, err := jndi.NewInitialContext(jndi.NewEnvironment())
	assert.Error(t, err)
}

func TestInitialContextRejectsUnknownScheme(t *testing.T) {
	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, "corba://localhost:900")

	_, err := jndi.NewInitialContext(env)
	assert.Error(t, err)
}

func TestBrokerContextResolvesDestinations(t *testing.T) {
	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, "amqp://localhost:5672")

	ctx, err := jndi.NewInitialContext(env)
	require.NoError(t, err)
	defer ctx.Close()

	topic, err := ctx.LookupDestination("topic/animals.rabbits")
	require.NoError(t, err)
	assert.Equal(t, broker.KindTopic, topic.Kind)
	assert.Equal(t, "animals.rabbits", topic.Name)

	queue, err := ctx.LookupDestination("queue/orders")
	require.NoError(t, err)
	assert.Equal(t, broker.KindQueue, queue.Kind)
	assert.Equal(t, "orders", queue.Name)

	_, err = ctx.LookupDestination("orders")
	notFound, ok := err.(jndi.ErrNameNotFound)
	require.True(t, ok, "unprefixed names should miss")
	assert.Equal(t, "orders", notFound.Name)
}

func TestBrokerContextResolvesConnectionFactories(t *testing.T) {
	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, "amqps://localhost:5671").
		Set(jndi.PropertySecurityPrincipal, "default").
		Set(jndi.PropertySecurityCredentials, "secret").
		Set(jndi.PropertyVPN, "samples-vpn")

	ctx, err := jndi.NewInitialContext(env)
	require.NoError(t, err)
	defer ctx.Close()

	cf, err := ctx.LookupConnectionFactory("cf/default")
	require.NoError(t, err)
	assert.Equal(t, "amqps://localhost:5671", cf.URL)
	assert.Equal(t, "default", cf.Username)
	assert.Equal(t, "secret", cf.Password)
	assert.Equal(t, "samples-vpn", cf.VPN)

	_, err = ctx.LookupConnectionFactory("default")
	assert.Error(t, err, "factory names need the cf/ prefix")
}

func TestConnectionFactoryFromEnvironment(t *testing.T) {
	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, "amqp://localhost:5672").
		Set(jndi.PropertyOptimizeDirect, true).
		Set(jndi.PropertyReconnectRetries, -1).
		Set(jndi.PropertyReceiveADWindowSize, 255).
		Set(jndi.PropertyAuthenticationScheme, broker.AuthClientCertificate)

	cf := jndi.ConnectionFactoryFromEnvironment(env)
	assert.True(t, cf.DirectTransport)
	assert.Equal(t, -1, cf.ReconnectRetries)
	assert.Equal(t, 255, cf.ReceiveADWindowSize)
	assert.Equal(t, broker.AuthClientCertificate, cf.AuthScheme)
	assert.Nil(t, cf.Tuning)
}

func TestConnectionFactoryTuningFromEnvironment(t *testing.T) {
	tuning := broker.NewSecureTuning()
	tuning.Protocol = "tlsv1.2"

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, "amqps://localhost:5671").
		Set(jndi.PropertySecureTuning, tuning)

	cf := jndi.ConnectionFactoryFromEnvironment(env)
	assert.Same(t, tuning, cf.Tuning, "explicit tuning passes through")

	// Without explicit tuning, turning validation off derives one.
	env = jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, "amqps://localhost:5671").
		Set(jndi.PropertySSLValidateCertificate, false)

	cf = jndi.ConnectionFactoryFromEnvironment(env)
	require.NotNil(t, cf.Tuning)
	assert.False(t, cf.Tuning.ValidateCertificates)
}
