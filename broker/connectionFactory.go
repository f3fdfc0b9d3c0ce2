package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// redialWait is how long the factory waits between connection attempts.
const redialWait = 1 * time.Second

// ConnectionFactory holds everything needed to create connections to the broker.
// Factories are normally looked up through a naming context, but may also be built
// programmatically, flag by flag, as the progconsumer sample does.
type ConnectionFactory struct {
	// URL is the broker address in amqp URI form (amqp://host:5672 or
	// amqps://host:5671).
	URL string

	// Username and Password authenticate the client when the BASIC scheme is used.
	Username string
	Password string

	// VPN is the broker-side tenant namespace to connect to (the virtual host).
	// Empty connects to the default.
	VPN string

	// DirectTransport makes NonPersistent the producer default delivery mode.
	// When false producers default to Persistent.
	DirectTransport bool

	// ReconnectRetries is how many extra dial attempts to make after a failure.
	// Negative retries forever.
	ReconnectRetries int

	// ReceiveADWindowSize is the assured-delivery window (consumer prefetch)
	// applied to sessions. Zero leaves the client default.
	ReceiveADWindowSize int

	// AuthScheme is AuthBasic or AuthClientCertificate. Empty means AuthBasic.
	AuthScheme string

	// Tuning configures TLS for amqps URLs. Nil uses a zero tls.Config.
	Tuning *SecureTuning

	// Logger used for dial reporting. The zero value is silent.
	Logger zerolog.Logger
}

// NewConnectionFactory returns a factory for the given broker URL.
func NewConnectionFactory(url string) *ConnectionFactory {
	return &ConnectionFactory{
		URL:    url,
		Logger: zerolog.Nop(),
	}
}

// config builds the client configuration the factory dials with.
func (cf *ConnectionFactory) config() (amqp.Config, error) {
	config := amqp.Config{
		Vhost: cf.VPN,
		Properties: amqp.Table{
			"product": "amqpSamples-go",
		},
	}
	if cf.VPN == "" {
		// Preserve the vhost from the URL when no VPN override is given.
		uri, err := amqp.ParseURI(cf.URL)
		if err != nil {
			return config, fmt.Errorf("error parsing broker URL: %w", err)
		}
		config.Vhost = uri.Vhost
	}

	if cf.AuthScheme == AuthClientCertificate {
		config.SASL = []amqp.Authentication{externalAuth{}}
	} else if cf.Username != "" {
		config.SASL = []amqp.Authentication{
			&amqp.PlainAuth{Username: cf.Username, Password: cf.Password},
		}
	}

	if cf.Tuning != nil {
		tlsConfig, err := cf.Tuning.TLSConfig()
		if err != nil {
			return config, fmt.Errorf("error building TLS configuration: %w", err)
		}
		config.TLSClientConfig = tlsConfig
	}

	return config, nil
}

// CreateConnection dials the broker, retrying per ReconnectRetries.
func (cf *ConnectionFactory) CreateConnection() (*Connection, error) {
	return cf.CreateConnectionCtx(context.Background())
}

// CreateConnectionCtx dials the broker, retrying per ReconnectRetries until ctx is
// cancelled. Once returned, cancelling ctx does not affect the connection.
func (cf *ConnectionFactory) CreateConnectionCtx(
	ctx context.Context,
) (*Connection, error) {
	config, err := cf.config()
	if err != nil {
		return nil, err
	}

	var lastErr error
	attempts := 0
	for {
		attempts++
		underlying, err := amqp.DialConfig(cf.URL, config)
		if err == nil {
			cf.Logger.Debug().
				Str("URL", cf.URL).
				Int("ATTEMPTS", attempts).
				Msg("connected to broker")
			return newConnection(cf, underlying), nil
		}
		lastErr = err

		if cf.ReconnectRetries >= 0 && attempts > cf.ReconnectRetries {
			return nil, ErrDial{URL: cf.URL, Attempts: attempts, LastErr: lastErr}
		}

		cf.Logger.Warn().
			Err(err).
			Str("URL", cf.URL).
			Int("ATTEMPT", attempts).
			Msg("dial failed, retrying")

		select {
		case <-time.After(redialWait):
		case <-ctx.Done():
			return nil, ErrDial{URL: cf.URL, Attempts: attempts, LastErr: ctx.Err()}
		}
	}
}
