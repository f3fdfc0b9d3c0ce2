package jndi

// Environment property keys. These are the Go rendering of the JNDI environment
// table the original samples build before creating an initial context: connection
// addressing and credentials, plus the vendor knobs a connection factory honors.
const (
	// PropertyProviderURL is the address of the naming provider: amqp(s):// for the
	// broker-hosted store, ldap(s):// for a directory server, file:// for a local
	// object store.
	PropertyProviderURL = "provider-url"

	// PropertySecurityPrincipal is the username presented to the provider.
	PropertySecurityPrincipal = "security-principal"

	// PropertySecurityCredentials is the password presented to the provider.
	PropertySecurityCredentials = "security-credentials"

	// PropertyVPN selects the broker-side tenant namespace (virtual host).
	PropertyVPN = "vpn"

	// PropertySSLValidateCertificate toggles server certificate validation for
	// amqps URLs. Defaults to true.
	PropertySSLValidateCertificate = "ssl-validate-certificate"

	// PropertySecureTuning holds a *broker.SecureTuning with the full TLS setup.
	// Overrides PropertySSLValidateCertificate when present.
	PropertySecureTuning = "ssl-tuning"

	// PropertyOptimizeDirect makes looked-up connection factories default to
	// non-persistent (direct) delivery.
	PropertyOptimizeDirect = "optimize-direct"

	// PropertyReconnectRetries sets extra dial attempts on looked-up factories.
	// Negative retries forever.
	PropertyReconnectRetries = "reconnect-retries"

	// PropertyReceiveADWindowSize sets the assured-delivery receive window
	// (prefetch) on looked-up factories.
	PropertyReceiveADWindowSize = "receive-ad-window-size"

	// PropertyAuthenticationScheme selects broker.AuthBasic or
	// broker.AuthClientCertificate.
	PropertyAuthenticationScheme = "authentication-scheme"
)

// Name prefixes distinguishing destination kinds in the broker-hosted and file
// stores.
const (
	TopicNamePrefix = "topic/"
	QueueNamePrefix = "queue/"
)
