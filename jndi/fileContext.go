package jndi

import (
	"fmt"
	"io/ioutil"

	"github.com/peake100/amqpSamples-go/broker"
	"gopkg.in/yaml.v3"
)

// fileStore is the YAML shape of a local object store, the file:// analog of a
// jndi.properties object directory.
type fileStore struct {
	ConnectionFactories map[string]fileConnectionFactory `yaml:"connection-factories"`
	Destinations        map[string]fileDestination       `yaml:"destinations"`
}

type fileConnectionFactory struct {
	URL                 string `yaml:"url"`
	VPN                 string `yaml:"vpn"`
	DirectTransport     bool   `yaml:"direct-transport"`
	ReconnectRetries    int    `yaml:"reconnect-retries"`
	ReceiveADWindowSize int    `yaml:"receive-ad-window-size"`
}

type fileDestination struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// fileContext looks administered objects up in a local YAML file. Credentials
// still come from the environment; the store only carries addressing and tuning.
type fileContext struct {
	env   Environment
	store fileStore
}

func newFileContext(env Environment, path string) (*fileContext, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading object store %v: %w", path, err)
	}

	ctx := &fileContext{env: env}
	err = yaml.Unmarshal(raw, &ctx.store)
	if err != nil {
		return nil, fmt.Errorf("error parsing object store %v: %w", path, err)
	}
	return ctx, nil
}

func (ctx *fileContext) LookupConnectionFactory(
	name string,
) (*broker.ConnectionFactory, error) {
	record, ok := ctx.store.ConnectionFactories[name]
	if !ok {
		return nil, ErrNameNotFound{Name: name}
	}
	if record.URL == "" {
		return nil, ErrBadObject{Name: name, Reason: "connection factory record has no url"}
	}

	cf := broker.NewConnectionFactory(record.URL)
	cf.Username = ctx.env.GetString(PropertySecurityPrincipal, "")
	cf.Password = ctx.env.GetString(PropertySecurityCredentials, "")
	cf.VPN = record.VPN
	cf.DirectTransport = record.DirectTransport
	cf.ReconnectRetries = record.ReconnectRetries
	cf.ReceiveADWindowSize = record.ReceiveADWindowSize
	return cf, nil
}

func (ctx *fileContext) LookupDestination(name string) (*broker.Destination, error) {
	record, ok := ctx.store.Destinations[name]
	if !ok {
		return nil, ErrNameNotFound{Name: name}
	}
	switch record.Kind {
	case "topic":
		return broker.NewTopic(record.Name), nil
	case "queue":
		return broker.NewQueue(record.Name), nil
	default:
		return nil, ErrBadObject{
			Name:   name,
			Reason: fmt.Sprintf("unknown destination kind %q", record.Kind),
		}
	}
}

func (ctx *fileContext) Close() error {
	return nil
}
