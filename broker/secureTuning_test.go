package broker

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io/ioutil"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeCertificate issues a self-signed certificate for tests that need PEM stores
// or verification material.
func makeCertificate(
	t *testing.T, commonName string, notBefore time.Time, notAfter time.Time,
) (certPEM []byte, keyPEM []byte, certDER []byte) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "generate key")

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	certDER, err = x509.CreateCertificate(
		rand.Reader, &template, &template, &key.PublicKey, key,
	)
	require.NoError(t, err, "create certificate")

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{
		Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return certPEM, keyPEM, certDER
}

func TestTLSConfigProtocolAndCiphers(t *testing.T) {
	tuning := NewSecureTuning()
	tuning.Protocol = "TLSv1.2"
	tuning.Ciphers = []string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"}

	config, err := tuning.TLSConfig()
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), config.MinVersion)
	require.Len(t, config.CipherSuites, 1)
	assert.False(t, config.InsecureSkipVerify)
	assert.Nil(t, config.VerifyPeerCertificate)
}

func TestTLSConfigRejectsUnknownProtocol(t *testing.T) {
	tuning := NewSecureTuning()
	tuning.Protocol = "sslv3"

	_, err := tuning.TLSConfig()
	assert.Error(t, err)
}

func TestTLSConfigRejectsUnknownCipher(t *testing.T) {
	tuning := NewSecureTuning()
	tuning.Ciphers = []string{"TLS_MADE_UP_SUITE"}

	_, err := tuning.TLSConfig()
	assert.Error(t, err)
}

func TestTLSConfigSkipsVerificationWhenDisabled(t *testing.T) {
	tuning := &SecureTuning{}

	config, err := tuning.TLSConfig()
	require.NoError(t, err)
	assert.True(t, config.InsecureSkipVerify)
	assert.Nil(t, config.VerifyPeerCertificate)
}

func TestTLSConfigLoadsStores(t *testing.T) {
	now := time.Now()
	certPEM, keyPEM, _ := makeCertificate(t, "broker.test", now, now.Add(time.Hour))

	dir := t.TempDir()
	trustStore := filepath.Join(dir, "roots.pem")
	require.NoError(t, ioutil.WriteFile(trustStore, certPEM, 0600))
	keyStore := filepath.Join(dir, "client.pem")
	require.NoError(
		t, ioutil.WriteFile(keyStore, append(certPEM, keyPEM...), 0600),
	)

	tuning := NewSecureTuning()
	tuning.TrustStore = trustStore
	tuning.KeyStore = keyStore

	config, err := tuning.TLSConfig()
	require.NoError(t, err)
	assert.NotNil(t, config.RootCAs)
	require.Len(t, config.Certificates, 1)
}

func TestLoadTrustStoreRejectsNonPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roots.pem")
	require.NoError(t, ioutil.WriteFile(path, []byte("not a certificate"), 0600))

	_, err := loadTrustStore(path)
	assert.Error(t, err)
}

func TestLoadKeyStoreRequiresKey(t *testing.T) {
	now := time.Now()
	certPEM, _, _ := makeCertificate(t, "broker.test", now, now.Add(time.Hour))

	path := filepath.Join(t.TempDir(), "client.pem")
	require.NoError(t, ioutil.WriteFile(path, certPEM, 0600))

	_, err := loadKeyStore(path, "")
	assert.Error(t, err, "a key store without a private key should be rejected")
}

func TestLoadKeyStoreDecryptsKey(t *testing.T) {
	now := time.Now()
	certPEM, keyPEM, _ := makeCertificate(t, "broker.test", now, now.Add(time.Hour))

	// Re-encrypt the private key the way openssl does for PEM key stores.
	keyBlock, _ := pem.Decode(keyPEM)
	require.NotNil(t, keyBlock)
	encrypted, err := x509.EncryptPEMBlock(
		rand.Reader, keyBlock.Type, keyBlock.Bytes, []byte("sample"), x509.PEMCipherAES256,
	)
	require.NoError(t, err, "encrypt key block")

	path := filepath.Join(t.TempDir(), "client.pem")
	contents := append(certPEM, pem.EncodeToMemory(encrypted)...)
	require.NoError(t, ioutil.WriteFile(path, contents, 0600))

	_, err = loadKeyStore(path, "sample")
	assert.NoError(t, err, "correct password should unlock the key")

	_, err = loadKeyStore(path, "wrong")
	assert.Error(t, err, "wrong password should be rejected")
}

func TestVerifyPeerIgnoresDatesWhenDisabled(t *testing.T) {
	// An already-expired self-signed certificate.
	certPEM, _, certDER := makeCertificate(
		t, "broker.test", time.Now().Add(-48*time.Hour), time.Now().Add(-24*time.Hour),
	)

	trustStore := filepath.Join(t.TempDir(), "roots.pem")
	require.NoError(t, ioutil.WriteFile(trustStore, certPEM, 0600))

	tuning := NewSecureTuning()
	tuning.TrustStore = trustStore
	tuning.ValidateDates = false

	config, err := tuning.TLSConfig()
	require.NoError(t, err)
	require.NotNil(t, config.VerifyPeerCertificate, "date-insensitive validation needs the custom pass")

	err = config.VerifyPeerCertificate([][]byte{certDER}, nil)
	assert.NoError(t, err, "expiry should not fail the chain when date checking is off")

	// The chain itself is still enforced.
	tuning.ValidateDates = true
	tuning.TrustedCommonNames = []string{"broker.test"}
	config, err = tuning.TLSConfig()
	require.NoError(t, err)
	err = config.VerifyPeerCertificate([][]byte{certDER}, nil)
	assert.Error(t, err, "expired certificate should fail when dates are checked")
}

func TestVerifyPeerPinsCommonName(t *testing.T) {
	now := time.Now()
	certPEM, _, certDER := makeCertificate(t, "broker.test", now, now.Add(time.Hour))

	trustStore := filepath.Join(t.TempDir(), "roots.pem")
	require.NoError(t, ioutil.WriteFile(trustStore, certPEM, 0600))

	tuning := NewSecureTuning()
	tuning.TrustStore = trustStore
	tuning.TrustedCommonNames = []string{"BROKER.TEST"}

	config, err := tuning.TLSConfig()
	require.NoError(t, err)
	require.NotNil(t, config.VerifyPeerCertificate)

	err = config.VerifyPeerCertificate([][]byte{certDER}, nil)
	assert.NoError(t, err, "common names match case-insensitively")

	tuning.TrustedCommonNames = []string{"other.test"}
	config, err = tuning.TLSConfig()
	require.NoError(t, err)
	err = config.VerifyPeerCertificate([][]byte{certDER}, nil)
	assert.Error(t, err, "unlisted common name should be rejected")
}

func TestExternalAuthMechanism(t *testing.T) {
	auth := externalAuth{}
	assert.Equal(t, "EXTERNAL", auth.Mechanism())
	assert.Equal(t, "", auth.Response())
}
