// Package tlsprobe fetches TLS leaf certificates via a direct handshake.
package tlsprobe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// Fetcher is a CertFetcher implementation that dials the host on port 443
// and returns the leaf certificate from the handshake. Verification is
// disabled on purpose: phishing sites frequently present certificates that
// fail chain validation, and the point is to inspect them, not trust them.
type Fetcher struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewFetcher creates a new TLS certificate fetcher.
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{timeout: timeout, logger: logger}
}

// Fetch implements core.CertFetcher.
func (f *Fetcher) Fetch(ctx context.Context, host string) (*x509.Certificate, error) {
	dialCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true,
		},
	}

	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, "443"))
	if err != nil {
		return nil, fmt.Errorf("tls handshake with %s failed: %w", host, err)
	}
	defer conn.Close()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return nil, fmt.Errorf("unexpected connection type from tls dialer")
	}

	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("no peer certificates presented by %s", host)
	}

	f.logger.Debug("Fetched TLS certificate",
		zap.String("host", host),
		zap.Time("not_after", certs[0].NotAfter))

	return certs[0], nil
}
