// Command ldapbind binds, rebinds, or unbinds an administered object record into
// an LDAP directory: a connection factory, a topic, or a queue. The records it
// writes are the ones ldaplookup reads.
//
// Example (binds a queue):
//
//	ldapbind -ldapURL ldap://localhost:389 \
//	  -ldapUsername cn=Manager,dc=example,dc=com -ldapPassword secret \
//	  -operation BIND -queue queue1 -dn cn=queue1,dc=example,dc=com
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/internal"
	"github.com/peake100/amqpSamples-go/jndi"
)

var (
	ldapURL      = flag.String("ldapURL", "", "directory server URL (e.g. ldap://localhost:389)")
	ldapUsername = flag.String("ldapUsername", "", "directory bind DN")
	ldapPassword = flag.String("ldapPassword", "", "directory bind password")

	operation = flag.String("operation", "", "one of [BIND, REBIND, UNBIND]")
	dn        = flag.String("dn", "", "DN to bind the object at")

	bindCF    = flag.Bool("cf", false, "bind a connection factory record")
	cfURL     = flag.String("cfURL", "", "broker URL stored in the connection factory record")
	topicName = flag.String("topic", "", "physical topic name to bind")
	queueName = flag.String("queue", "", "physical queue name to bind")
)

func missingFlag(message string) {
	flag.Usage()
	fmt.Println(message)
	os.Exit(1)
}

func main() {
	logger := internal.CreateSampleLogger("ldapbind")
	flag.Parse()

	if *ldapURL == "" {
		missingFlag(`Please specify "-ldapURL" parameter`)
	}
	if *dn == "" {
		missingFlag(`Please specify "-dn" parameter`)
	}
	op := strings.ToUpper(*operation)
	if op != "BIND" && op != "REBIND" && op != "UNBIND" {
		missingFlag("Please specify -operation as one of [BIND, REBIND, UNBIND]")
	}

	// Everything except UNBIND needs exactly one object to write.
	var object interface{}
	if op != "UNBIND" {
		selectors := 0
		if *bindCF {
			selectors++
			if *cfURL == "" {
				missingFlag(`Please specify "-cfURL" parameter with "-cf"`)
			}
			object = broker.NewConnectionFactory(*cfURL)
		}
		if *topicName != "" {
			selectors++
			object = broker.NewTopic(*topicName)
		}
		if *queueName != "" {
			selectors++
			object = broker.NewQueue(*queueName)
		}
		if selectors != 1 {
			missingFlag("Please specify one of [-cf, -topic, -queue]")
		}
	}

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, *ldapURL).
		Set(jndi.PropertySecurityPrincipal, *ldapUsername).
		Set(jndi.PropertySecurityCredentials, *ldapPassword)

	directory, err := jndi.NewLDAPContext(env)
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting to directory")
	}
	defer directory.Close()

	switch op {
	case "BIND":
		err = directory.Bind(*dn, object)
	case "REBIND":
		err = directory.Rebind(*dn, object)
	case "UNBIND":
		err = directory.Unbind(*dn)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("DN", *dn).Msg("directory operation failed")
	}

	logger.Info().Str("OPERATION", op).Str("DN", *dn).Msg("DONE")
}
