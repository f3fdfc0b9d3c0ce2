package jndi_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/peake100/amqpSamples-go/broker"
	"github.com/peake100/amqpSamples-go/jndi"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const sampleStore = `
connection-factories:
  cf/default:
    url: amqp://localhost:5672
    vpn: samples-vpn
    direct-transport: true
    reconnect-retries: 3
    receive-ad-window-size: 255
  cf/broken: {}
destinations:
  topic/rabbits:
    kind: topic
    name: animals.rabbits
  queue/orders:
    kind: queue
    name: orders
  bad/record:
    kind: stream
    name: whatever
`

type FileContextSuite struct {
	suite.Suite

	ctx jndi.Context
}

func (s *FileContextSuite) SetupSuite() {
	path := filepath.Join(s.T().TempDir(), "objects.yaml")
	require.NoError(s.T(), ioutil.WriteFile(path, []byte(sampleStore), 0600))

	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, "file://"+path).
		Set(jndi.PropertySecurityPrincipal, "default").
		Set(jndi.PropertySecurityCredentials, "secret")

	ctx, err := jndi.NewInitialContext(env)
	require.NoError(s.T(), err, "open object store")
	s.ctx = ctx
}

func (s *FileContextSuite) TearDownSuite() {
	if s.ctx != nil {
		s.NoError(s.ctx.Close())
	}
}

func (s *FileContextSuite) TestLookupConnectionFactory() {
	cf, err := s.ctx.LookupConnectionFactory("cf/default")
	s.Require().NoError(err)

	s.Equal("amqp://localhost:5672", cf.URL)
	s.Equal("samples-vpn", cf.VPN)
	s.True(cf.DirectTransport)
	s.Equal(3, cf.ReconnectRetries)
	s.Equal(255, cf.ReceiveADWindowSize)

	// Credentials come from the environment, never the store.
	s.Equal("default", cf.Username)
	s.Equal("secret", cf.Password)
}

func (s *FileContextSuite) TestLookupUnknownFactory() {
	_, err := s.ctx.LookupConnectionFactory("cf/missing")
	s.IsType(jndi.ErrNameNotFound{}, err)
}

func (s *FileContextSuite) TestFactoryRecordNeedsURL() {
	_, err := s.ctx.LookupConnectionFactory("cf/broken")
	s.IsType(jndi.ErrBadObject{}, err)
}

func (s *FileContextSuite) TestLookupDestinations() {
	topic, err := s.ctx.LookupDestination("topic/rabbits")
	s.Require().NoError(err)
	s.Equal(broker.KindTopic, topic.Kind)
	s.Equal("animals.rabbits", topic.Name)

	queue, err := s.ctx.LookupDestination("queue/orders")
	s.Require().NoError(err)
	s.Equal(broker.KindQueue, queue.Kind)
	s.Equal("orders", queue.Name)
}

func (s *FileContextSuite) TestUnknownDestinationKind() {
	_, err := s.ctx.LookupDestination("bad/record")
	s.IsType(jndi.ErrBadObject{}, err)
}

func (s *FileContextSuite) TestLookupUnknownDestination() {
	_, err := s.ctx.LookupDestination("topic/missing")
	s.IsType(jndi.ErrNameNotFound{}, err)
}

func TestFileContextSuite(t *testing.T) {
	suite.Run(t, new(FileContextSuite))
}

func TestMissingStoreFileErrors(t *testing.T) {
	env := jndi.NewEnvironment().
		Set(jndi.PropertyProviderURL, "file:///does/not/exist.yaml")

	_, err := jndi.NewInitialContext(env)
	require.Error(t, err)
}
