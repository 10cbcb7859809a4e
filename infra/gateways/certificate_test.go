package gateways

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadCertificateMissingFile(t *testing.T) {
	_, err := LoadCertificate(filepath.Join(t.TempDir(), "certificado.p12"), "")
	require.ErrorContains(t, err, "reading certificate")
}

func TestLoadCertificateInvalidData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certificado.p12")
	require.NoError(t, os.WriteFile(path, []byte("not a pkcs12 file"), 0o600))

	_, err := LoadCertificate(path, "")
	require.ErrorContains(t, err, "decoding certificate")
}

func TestNewMTLSClient(t *testing.T) {
	client := NewMTLSClient(tls.Certificate{}, 5*time.Second)
	require.Equal(t, 5*time.Second, client.Timeout)
}
