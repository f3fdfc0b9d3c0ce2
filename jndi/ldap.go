package jndi

import (
	"fmt"
	"strconv"

	"github.com/go-ldap/ldap/v3"
	"github.com/peake100/amqpSamples-go/broker"
)

// LDAP attribute names the administered-object records are stored under. Records
// use extensibleObject so they load into a directory without a vendor schema.
const (
	attrObjectClass     = "objectClass"
	attrCommonName      = "cn"
	attrObjectType      = "amqsObjectType"
	attrURL             = "amqsURL"
	attrVPN             = "amqsVPN"
	attrDirectTransport = "amqsDirectTransport"
	attrRetries         = "amqsReconnectRetries"
	attrADWindow        = "amqsReceiveADWindowSize"
	attrDestinationName = "amqsDestinationName"
)

// Object type attribute values.
const (
	typeConnectionFactory = "connection-factory"
	typeTopic             = "topic"
	typeQueue             = "queue"
)

// LDAPContext is a naming context over a directory server. Lookups search the DN
// given as the name; Bind/Rebind/Unbind manage the records the lookups read, which
// is how an administrator seeds the directory in the first place.
type LDAPContext struct {
	conn *ldap.Conn
}

// NewLDAPContext dials the environment's provider URL and binds with its
// principal and credentials.
func NewLDAPContext(env Environment) (*LDAPContext, error) {
	providerURL := env.GetString(PropertyProviderURL, "")
	conn, err := ldap.DialURL(providerURL)
	if err != nil {
		return nil, fmt.Errorf("error dialing LDAP server: %w", err)
	}

	principal := env.GetString(PropertySecurityPrincipal, "")
	if principal != "" {
		err = conn.Bind(principal, env.GetString(PropertySecurityCredentials, ""))
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("error binding to LDAP server: %w", err)
		}
	}

	return &LDAPContext{conn: conn}, nil
}

func (ctx *LDAPContext) search(dn string) (*ldap.Entry, error) {
	request := ldap.NewSearchRequest(
		dn,
		ldap.ScopeBaseObject,
		ldap.NeverDerefAliases,
		0, 0, false,
		"(objectClass=*)",
		nil,
		nil,
	)
	result, err := ctx.conn.Search(request)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, ErrNameNotFound{Name: dn}
		}
		return nil, fmt.Errorf("error searching for %v: %w", dn, err)
	}
	if len(result.Entries) == 0 {
		return nil, ErrNameNotFound{Name: dn}
	}
	return result.Entries[0], nil
}

// LookupConnectionFactory reads a connection factory record at the given DN.
func (ctx *LDAPContext) LookupConnectionFactory(
	name string,
) (*broker.ConnectionFactory, error) {
	entry, err := ctx.search(name)
	if err != nil {
		return nil, err
	}
	return connectionFactoryFromAttributes(name, entry.GetAttributeValue)
}

// LookupDestination reads a topic or queue record at the given DN.
func (ctx *LDAPContext) LookupDestination(name string) (*broker.Destination, error) {
	entry, err := ctx.search(name)
	if err != nil {
		return nil, err
	}
	return destinationFromAttributes(name, entry.GetAttributeValue)
}

// Bind writes obj as a new record at dn. obj must be a *broker.ConnectionFactory
// or a *broker.Destination.
func (ctx *LDAPContext) Bind(dn string, obj interface{}) error {
	attributes, err := objectAttributes(dn, obj)
	if err != nil {
		return err
	}

	request := ldap.NewAddRequest(dn, nil)
	for _, attribute := range attributes {
		request.Attribute(attribute.name, attribute.values)
	}

	err = ctx.conn.Add(request)
	if err != nil {
		return fmt.Errorf("error binding %v: %w", dn, err)
	}
	return nil
}

// Rebind replaces any record at dn with obj.
func (ctx *LDAPContext) Rebind(dn string, obj interface{}) error {
	err := ctx.Unbind(dn)
	if err != nil {
		if _, notFound := err.(ErrNameNotFound); !notFound {
			return err
		}
	}
	return ctx.Bind(dn, obj)
}

// Unbind removes the record at dn.
func (ctx *LDAPContext) Unbind(dn string) error {
	err := ctx.conn.Del(ldap.NewDelRequest(dn, nil))
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return ErrNameNotFound{Name: dn}
		}
		return fmt.Errorf("error unbinding %v: %w", dn, err)
	}
	return nil
}

// Close tears down the directory connection.
func (ctx *LDAPContext) Close() error {
	return ctx.conn.Close()
}

// attribute is one name/values pair of an outgoing record.
type attribute struct {
	name   string
	values []string
}

// objectAttributes encodes an administered object for the directory. Split out
// from Bind so the encoding is testable without a live server.
func objectAttributes(dn string, obj interface{}) ([]attribute, error) {
	common := []attribute{
		{name: attrObjectClass, values: []string{"top", "extensibleObject"}},
		{name: attrCommonName, values: []string{commonNameFromDN(dn)}},
	}

	switch typed := obj.(type) {
	case *broker.ConnectionFactory:
		return append(common,
			attribute{name: attrObjectType, values: []string{typeConnectionFactory}},
			attribute{name: attrURL, values: []string{typed.URL}},
			attribute{name: attrVPN, values: []string{typed.VPN}},
			attribute{
				name:   attrDirectTransport,
				values: []string{strconv.FormatBool(typed.DirectTransport)},
			},
			attribute{
				name:   attrRetries,
				values: []string{strconv.Itoa(typed.ReconnectRetries)},
			},
			attribute{
				name:   attrADWindow,
				values: []string{strconv.Itoa(typed.ReceiveADWindowSize)},
			},
		), nil
	case *broker.Destination:
		objectType := typeQueue
		if typed.Kind == broker.KindTopic {
			objectType = typeTopic
		}
		return append(common,
			attribute{name: attrObjectType, values: []string{objectType}},
			attribute{name: attrDestinationName, values: []string{typed.Name}},
		), nil
	default:
		return nil, fmt.Errorf("cannot bind object of type %T", obj)
	}
}

// connectionFactoryFromAttributes decodes a factory record. attr fetches a single
// attribute value, empty when absent.
func connectionFactoryFromAttributes(
	name string, attr func(string) string,
) (*broker.ConnectionFactory, error) {
	if attr(attrObjectType) != typeConnectionFactory {
		return nil, ErrBadObject{
			Name:   name,
			Reason: fmt.Sprintf("record type is %q", attr(attrObjectType)),
		}
	}
	if attr(attrURL) == "" {
		return nil, ErrBadObject{Name: name, Reason: "record has no broker URL"}
	}

	cf := broker.NewConnectionFactory(attr(attrURL))
	cf.VPN = attr(attrVPN)
	cf.DirectTransport = attr(attrDirectTransport) == "true"

	var err error
	if raw := attr(attrRetries); raw != "" {
		cf.ReconnectRetries, err = strconv.Atoi(raw)
		if err != nil {
			return nil, ErrBadObject{
				Name: name, Reason: "bad reconnect retries", Wrapped: err,
			}
		}
	}
	if raw := attr(attrADWindow); raw != "" {
		cf.ReceiveADWindowSize, err = strconv.Atoi(raw)
		if err != nil {
			return nil, ErrBadObject{
				Name: name, Reason: "bad receive window", Wrapped: err,
			}
		}
	}

	return cf, nil
}

// destinationFromAttributes decodes a topic or queue record.
func destinationFromAttributes(
	name string, attr func(string) string,
) (*broker.Destination, error) {
	physical := attr(attrDestinationName)
	if physical == "" {
		return nil, ErrBadObject{Name: name, Reason: "record has no destination name"}
	}

	switch attr(attrObjectType) {
	case typeTopic:
		return broker.NewTopic(physical), nil
	case typeQueue:
		return broker.NewQueue(physical), nil
	default:
		return nil, ErrBadObject{
			Name:   name,
			Reason: fmt.Sprintf("record type is %q", attr(attrObjectType)),
		}
	}
}

// commonNameFromDN extracts the leading RDN value of a DN for the record's cn.
func commonNameFromDN(dn string) string {
	parsed, err := ldap.ParseDN(dn)
	if err != nil || len(parsed.RDNs) == 0 || len(parsed.RDNs[0].Attributes) == 0 {
		return dn
	}
	return parsed.RDNs[0].Attributes[0].Value
}
