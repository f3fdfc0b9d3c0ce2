package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigVhostFromURL(t *testing.T) {
	cf := NewConnectionFactory("amqp://localhost:5672/samples-vpn")

	config, err := cf.config()
	require.NoError(t, err)
	assert.Equal(t, "samples-vpn", config.Vhost)
}

func TestConfigVPNOverridesURL(t *testing.T) {
	cf := NewConnectionFactory("amqp://localhost:5672/samples-vpn")
	cf.VPN = "other-vpn"

	config, err := cf.config()
	require.NoError(t, err)
	assert.Equal(t, "other-vpn", config.Vhost)
}

func TestConfigRejectsBadURL(t *testing.T) {
	cf := NewConnectionFactory("not a url")

	_, err := cf.config()
	assert.Error(t, err)
}

func TestConfigSelectsSASL(t *testing.T) {
	cf := NewConnectionFactory("amqp://localhost:5672")
	cf.Username = "default"
	cf.Password = "secret"

	config, err := cf.config()
	require.NoError(t, err)
	require.Len(t, config.SASL, 1)
	plain, ok := config.SASL[0].(*amqp.PlainAuth)
	require.True(t, ok, "basic auth should use PLAIN")
	assert.Equal(t, "default", plain.Username)
	assert.Equal(t, "secret", plain.Password)

	cf.AuthScheme = AuthClientCertificate
	config, err = cf.config()
	require.NoError(t, err)
	require.Len(t, config.SASL, 1)
	assert.Equal(t, "EXTERNAL", config.SASL[0].Mechanism())
}

func TestConfigWithoutCredentialsUsesClientDefault(t *testing.T) {
	cf := NewConnectionFactory("amqp://localhost:5672")

	config, err := cf.config()
	require.NoError(t, err)
	assert.Nil(t, config.SASL, "URL credentials apply when no explicit auth is set")
}

func TestConfigBuildsTLSFromTuning(t *testing.T) {
	cf := NewConnectionFactory("amqps://localhost:5671")
	cf.Tuning = NewSecureTuning()

	config, err := cf.config()
	require.NoError(t, err)
	assert.NotNil(t, config.TLSClientConfig)

	cf.Tuning.Protocol = "sslv3"
	_, err = cf.config()
	assert.Error(t, err, "tuning errors should surface from config")
}

func TestCreateConnectionReportsDialFailure(t *testing.T) {
	// Port 1 refuses connections, so the single attempt fails immediately.
	cf := NewConnectionFactory("amqp://localhost:1")

	_, err := cf.CreateConnection()
	require.Error(t, err)

	dialErr := ErrDial{}
	require.True(t, errors.As(err, &dialErr))
	assert.Equal(t, 1, dialErr.Attempts)
	assert.Equal(t, "amqp://localhost:1", dialErr.URL)
}

func TestCreateConnectionStopsOnCancel(t *testing.T) {
	cf := NewConnectionFactory("amqp://localhost:1")
	cf.ReconnectRetries = -1

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cf.CreateConnectionCtx(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
