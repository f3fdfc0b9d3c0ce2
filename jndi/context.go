package jndi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/peake100/amqpSamples-go/broker"
)

// ErrNameNotFound is returned when a looked-up name has no record in the store.
type ErrNameNotFound struct {
	// The name that missed.
	Name string
}

func (err ErrNameNotFound) Error() string {
	return fmt.Sprintf("name %q not found in the naming store", err.Name)
}

// ErrBadObject is returned when a record exists but cannot be decoded into the
// requested administered object.
type ErrBadObject struct {
	Name    string
	Reason  string
	Wrapped error
}

func (err ErrBadObject) Unwrap() error {
	return err.Wrapped
}

func (err ErrBadObject) Error() string {
	return fmt.Sprintf(
		"record for %q is not a usable administered object: %v", err.Name, err.Reason,
	)
}

// Context looks up administered objects by name: connection factories and
// destinations. Implementations are backed by the broker's own store, a local
// object file, or an LDAP directory.
type Context interface {
	// LookupConnectionFactory resolves a connection factory record.
	LookupConnectionFactory(name string) (*broker.ConnectionFactory, error)

	// LookupDestination resolves a topic or queue record.
	LookupDestination(name string) (*broker.Destination, error)

	// Close releases the context and any directory connection behind it.
	Close() error
}

// NewInitialContext builds a context for the environment's provider URL:
// amqp(s):// yields the broker-hosted store, ldap(s):// a directory-backed one,
// and file:// a local YAML object store.
func NewInitialContext(env Environment) (Context, error) {
	providerURL := env.GetString(PropertyProviderURL, "")
	if providerURL == "" {
		return nil, fmt.Errorf("environment is missing %v", PropertyProviderURL)
	}

	parsed, err := url.Parse(providerURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing provider URL: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "amqp", "amqps":
		return newBrokerContext(env), nil
	case "ldap", "ldaps":
		return NewLDAPContext(env)
	case "file":
		return newFileContext(env, parsed.Path)
	default:
		return nil, fmt.Errorf(
			"no naming provider for scheme %q in %v", parsed.Scheme, providerURL,
		)
	}
}
