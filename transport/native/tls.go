package native

import (
	"crypto/tls"
	"fmt"
)

// defaultCipherSuites is adapted verbatim in intent from
// shockwave/pkg/shockwave/tls/config.go's defaultCipherSuites: strong,
// modern AEAD ciphers only.
var defaultCipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
}

// buildTLSConfig loads certificate material from PEM text or a file path
// (spec.md §4.2: "load TLS material from configured PEM text or file
// path") and advertises ALPN h2 and http/1.1 when opts.HTTP2 is set
// (http/1.1 only otherwise), matching
// shockwave/pkg/shockwave/tls/config.go's NewConfig defaults
// (MinVersion TLS 1.2, PreferServerCiphers-equivalent ordering).
func buildTLSConfig(opts Options) (*tls.Config, error) {
	cert, err := loadCertificate(opts)
	if err != nil {
		return nil, fmt.Errorf("native: load TLS certificate: %w", err)
	}

	next := []string{"http/1.1"}
	if opts.HTTP2 {
		next = []string{"h2", "http/1.1"}
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		MaxVersion:   tls.VersionTLS13,
		CipherSuites: defaultCipherSuites,
		NextProtos:   next,
	}, nil
}

func loadCertificate(opts Options) (tls.Certificate, error) {
	switch {
	case opts.CertPEM != "" && opts.KeyPEM != "":
		return tls.X509KeyPair([]byte(opts.CertPEM), []byte(opts.KeyPEM))
	case opts.CertFile != "" && opts.KeyFile != "":
		return tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
	default:
		return tls.Certificate{}, fmt.Errorf("native: https configured without cert+key (PEM or file)")
	}
}
