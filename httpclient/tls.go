package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/pkcs12"
)

// TLSOptions configures the TLS client used for HTTPS token endpoints.
// The OAuth2 and EdgeGrid code passes it through without looking inside.
type TLSOptions struct {
	// CAFile is a PEM bundle used to verify servers. CAPEM holds inline PEM data.
	CAFile string `json:"caFile,omitempty"`
	CAPEM  []byte `json:"ca,omitempty"`

	// KeepSystemCAs appends the custom CAs to the system pool instead of replacing it.
	KeepSystemCAs bool `json:"keepDefaultCaCertificates,omitempty"`

	// CertFile and KeyFile are a PEM client certificate pair for mTLS.
	CertFile string `json:"certFilePath,omitempty"`
	KeyFile  string `json:"keyFilePath,omitempty"`

	// PFXFile is a PKCS#12 client certificate, decrypted with Passphrase.
	PFXFile    string `json:"pfxFilePath,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`

	// InsecureSkipVerify disables server certificate verification (rejectUnauthorized=false).
	InsecureSkipVerify bool `json:"insecureSkipVerify,omitempty"`

	ServerName string `json:"serverName,omitempty"`
}

// TLSConfig builds the *tls.Config described by the options. TLS 1.2 is the minimum version.
func (o *TLSOptions) TLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: o.InsecureSkipVerify, // #nosec G402
		ServerName:         o.ServerName,
	}

	pool, err := o.rootCAs()
	if err != nil {
		return nil, err
	}
	tlsConfig.RootCAs = pool

	cert, err := o.clientCertificate()
	if err != nil {
		return nil, err
	}
	if cert != nil {
		tlsConfig.Certificates = []tls.Certificate{*cert}
	}

	return tlsConfig, nil
}

// rootCAs returns nil when no custom CA is configured so the system roots apply.
func (o *TLSOptions) rootCAs() (*x509.CertPool, error) {
	if o.CAFile == "" && len(o.CAPEM) == 0 {
		return nil, nil
	}

	var pool *x509.CertPool
	if o.KeepSystemCAs {
		systemPool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("load system CA pool: %w", err)
		}
		pool = systemPool
	} else {
		pool = x509.NewCertPool()
	}

	if o.CAFile != "" {
		caCert, err := os.ReadFile(o.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA certificate")
		}
	}

	if len(o.CAPEM) > 0 && !pool.AppendCertsFromPEM(o.CAPEM) {
		return nil, errors.New("failed to parse inline CA certificate")
	}

	return pool, nil
}

func (o *TLSOptions) clientCertificate() (*tls.Certificate, error) {
	switch {
	case o.PFXFile != "":
		return loadPFX(o.PFXFile, o.Passphrase)
	case o.CertFile != "" && o.KeyFile != "":
		cert, err := tls.LoadX509KeyPair(o.CertFile, o.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		return &cert, nil
	case o.CertFile != "" || o.KeyFile != "":
		return nil, errors.New("both TLS cert and key files must be provided for mTLS")
	default:
		return nil, nil
	}
}

func loadPFX(path, passphrase string) (*tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read PFX file: %w", err)
	}

	blocks, err := pkcs12.ToPEM(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decode PFX file: %w", err)
	}

	var pemData []byte
	for _, block := range blocks {
		pemData = append(pemData, pem.EncodeToMemory(block)...)
	}

	cert, err := tls.X509KeyPair(pemData, pemData)
	if err != nil {
		return nil, fmt.Errorf("load PFX client certificate: %w", err)
	}
	return &cert, nil
}
