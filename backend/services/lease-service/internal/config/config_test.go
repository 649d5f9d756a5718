package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePublicKey(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	got, err := decodePublicKey(base64.StdEncoding.EncodeToString(pemBytes))
	require.NoError(t, err)
	assert.Equal(t, priv.PublicKey.N, got.N)

	_, err = decodePublicKey("not base64 at all!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode base64")

	_, err = decodePublicKey(base64.StdEncoding.EncodeToString([]byte("plain text")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PEM block")
}
