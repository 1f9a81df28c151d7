package httpclient

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/AmmannChristian/go-reqauth/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTLSOptions_Defaults(t *testing.T) {
	cfg, err := (&TLSOptions{}).TLSConfig()
	require.NoError(t, err)

	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.Nil(t, cfg.RootCAs, "system roots apply without a custom CA")
	assert.Empty(t, cfg.Certificates)
	assert.False(t, cfg.InsecureSkipVerify)
}

func TestTLSOptions_CAFile(t *testing.T) {
	caPath := filepath.Join(t.TempDir(), "ca.pem")
	testutil.WriteTestCACert(t, caPath)

	cfg, err := (&TLSOptions{CAFile: caPath}).TLSConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.RootCAs)
}

func TestTLSOptions_InlineCA(t *testing.T) {
	caPath := filepath.Join(t.TempDir(), "ca.pem")
	testutil.WriteTestCACert(t, caPath)
	pemData, err := os.ReadFile(caPath)
	require.NoError(t, err)

	cfg, err := (&TLSOptions{CAPEM: pemData}).TLSConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.RootCAs)

	_, err = (&TLSOptions{CAPEM: []byte("not a certificate")}).TLSConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse inline CA certificate")
}

func TestTLSOptions_CAFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := (&TLSOptions{CAFile: filepath.Join(dir, "missing.pem")}).TLSConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read CA file")

	garbage := filepath.Join(dir, "garbage.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("garbage"), 0o600))
	_, err = (&TLSOptions{CAFile: garbage}).TLSConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse CA certificate")
}

func TestTLSOptions_KeepSystemCAs(t *testing.T) {
	caPath := filepath.Join(t.TempDir(), "ca.pem")
	testutil.WriteTestCACert(t, caPath)

	cfg, err := (&TLSOptions{CAFile: caPath, KeepSystemCAs: true}).TLSConfig()
	if err != nil {
		// Some minimal build environments have no system pool.
		assert.Contains(t, err.Error(), "load system CA pool")
		return
	}
	require.NotNil(t, cfg.RootCAs)
}

func TestTLSOptions_ClientCertificate(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "client.crt")
	keyPath := filepath.Join(dir, "client.key")
	testutil.WriteTestCertAndKey(t, certPath, keyPath)

	cfg, err := (&TLSOptions{CertFile: certPath, KeyFile: keyPath, ServerName: "auth.internal"}).TLSConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, "auth.internal", cfg.ServerName)
}

func TestTLSOptions_ClientCertificateErrors(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "client.crt")
	keyPath := filepath.Join(dir, "client.key")
	testutil.WriteTestCertAndKey(t, certPath, keyPath)

	tests := []struct {
		name    string
		opts    TLSOptions
		wantErr string
	}{
		{name: "cert without key", opts: TLSOptions{CertFile: certPath}, wantErr: "both TLS cert and key files must be provided"},
		{name: "key without cert", opts: TLSOptions{KeyFile: keyPath}, wantErr: "both TLS cert and key files must be provided"},
		{name: "mismatched pair", opts: TLSOptions{CertFile: certPath, KeyFile: certPath}, wantErr: "load client certificate"},
		{name: "missing pfx", opts: TLSOptions{PFXFile: filepath.Join(dir, "missing.pfx")}, wantErr: "read PFX file"},
		{name: "invalid pfx", opts: TLSOptions{PFXFile: certPath, Passphrase: "secret"}, wantErr: "decode PFX file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.TLSConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTLSOptions_InsecureSkipVerify(t *testing.T) {
	cfg, err := (&TLSOptions{InsecureSkipVerify: true}).TLSConfig()
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
}
