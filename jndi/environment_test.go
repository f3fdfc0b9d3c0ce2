package jndi_test

import (
	"testing"

	"github.com/peake100/amqpSamples-go/jndi"
	"github.com/stretchr/testify/assert"
)

func TestEnvironmentGetters(t *testing.T) {
	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, "amqp://localhost:5672").
		Set(jndi.PropertyOptimizeDirect, true).
		Set(jndi.PropertyReconnectRetries, 5)

	assert.Equal(t, "amqp://localhost:5672", env.GetString(jndi.PropertyProviderURL, ""))
	assert.True(t, env.GetBool(jndi.PropertyOptimizeDirect, false))
	assert.Equal(t, 5, env.GetInt(jndi.PropertyReconnectRetries, 0))
}

func TestEnvironmentFallbacks(t *testing.T) {
	env := jndi.NewEnvironment().
		// A mistyped value falls back the same way an absent one does.
		Set(jndi.PropertyReconnectRetries, "five")

	assert.Equal(t, "default", env.GetString(jndi.PropertyVPN, "default"))
	assert.True(t, env.GetBool(jndi.PropertySSLValidateCertificate, true))
	assert.Equal(t, 3, env.GetInt(jndi.PropertyReconnectRetries, 3))
}
