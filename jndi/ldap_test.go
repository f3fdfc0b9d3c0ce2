package jndi

import (
	"testing"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attrMap adapts a plain map to the attribute accessor the decoders take, standing
// in for a directory entry.
func attrMap(values map[string]string) func(string) string {
	return func(name string) string {
		return values[name]
	}
}

func TestConnectionFactoryRecordRoundTrip(t *testing.T) {
	cf := broker.NewConnectionFactory("amqp://localhost:5672")
	cf.VPN = "samples-vpn"
	cf.DirectTransport = true
	cf.ReconnectRetries = 3
	cf.ReceiveADWindowSize = 255

	attributes, err := objectAttributes("cn=cf,ou=objects,dc=samples", cf)
	require.NoError(t, err, "encode record")

	values := map[string]string{}
	for _, attr := range attributes {
		values[attr.name] = attr.values[0]
	}
	assert.Equal(t, "cf", values[attrCommonName])
	assert.Equal(t, typeConnectionFactory, values[attrObjectType])

	decoded, err := connectionFactoryFromAttributes("cn=cf", attrMap(values))
	require.NoError(t, err, "decode record")
	assert.Equal(t, cf.URL, decoded.URL)
	assert.Equal(t, cf.VPN, decoded.VPN)
	assert.Equal(t, cf.DirectTransport, decoded.DirectTransport)
	assert.Equal(t, cf.ReconnectRetries, decoded.ReconnectRetries)
	assert.Equal(t, cf.ReceiveADWindowSize, decoded.ReceiveADWindowSize)
}

func TestDestinationRecordRoundTrip(t *testing.T) {
	attributes, err := objectAttributes(
		"cn=rabbits,ou=objects,dc=samples", broker.NewTopic("animals.rabbits"),
	)
	require.NoError(t, err, "encode topic record")

	values := map[string]string{}
	for _, attr := range attributes {
		values[attr.name] = attr.values[0]
	}
	assert.Equal(t, typeTopic, values[attrObjectType])

	decoded, err := destinationFromAttributes("cn=rabbits", attrMap(values))
	require.NoError(t, err, "decode topic record")
	assert.Equal(t, broker.KindTopic, decoded.Kind)
	assert.Equal(t, "animals.rabbits", decoded.Name)
}

func TestQueueRecordType(t *testing.T) {
	attributes, err := objectAttributes("cn=orders", broker.NewQueue("orders"))
	require.NoError(t, err)

	values := map[string]string{}
	for _, attr := range attributes {
		values[attr.name] = attr.values[0]
	}
	assert.Equal(t, typeQueue, values[attrObjectType])
	assert.Equal(t, "orders", values[attrDestinationName])
}

func TestBindRejectsUnknownObjects(t *testing.T) {
	_, err := objectAttributes("cn=what", 42)
	assert.Error(t, err)
}

func TestDecodeRejectsBadRecords(t *testing.T) {
	// Wrong record type.
	_, err := connectionFactoryFromAttributes("cn=x", attrMap(map[string]string{
		attrObjectType: typeTopic,
	}))
	assert.IsType(t, ErrBadObject{}, err)

	// Missing broker URL.
	_, err = connectionFactoryFromAttributes("cn=x", attrMap(map[string]string{
		attrObjectType: typeConnectionFactory,
	}))
	assert.IsType(t, ErrBadObject{}, err)

	// Unparseable numeric attribute.
	_, err = connectionFactoryFromAttributes("cn=x", attrMap(map[string]string{
		attrObjectType: typeConnectionFactory,
		attrURL:        "amqp://localhost:5672",
		attrRetries:    "three",
	}))
	assert.IsType(t, ErrBadObject{}, err)

	// Destination without a physical name.
	_, err = destinationFromAttributes("cn=x", attrMap(map[string]string{
		attrObjectType: typeQueue,
	}))
	assert.IsType(t, ErrBadObject{}, err)

	// Destination of an unknown type.
	_, err = destinationFromAttributes("cn=x", attrMap(map[string]string{
		attrObjectType:      "stream",
		attrDestinationName: "whatever",
	}))
	assert.IsType(t, ErrBadObject{}, err)
}

func TestCommonNameFromDN(t *testing.T) {
	assert.Equal(
		t, "cf", commonNameFromDN("cn=cf,ou=objects,dc=samples,dc=test"),
	)
	// Unparseable DNs fall back to the raw string.
	assert.Equal(t, "not a dn", commonNameFromDN("not a dn"))
}
