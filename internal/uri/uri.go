// Package uri parses mailbox connection strings of the form
// scheme[+ssl|+tls]://user:pass@host[:port] into structured
// connection parameters. It performs no network I/O.
package uri

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidURI is returned when a connection string cannot be parsed.
var ErrInvalidURI = errors.New("invalid connection URI")

// Default IMAP ports, used when the URI carries none.
const (
	defaultPort    = 143
	defaultSSLPort = 993
)

// ConnectionSpec holds the parsed connection parameters for a mailbox.
// It is derived once from a URI and not modified afterwards.
type ConnectionSpec struct {
	// Scheme is the base scheme with any +ssl/+tls modifier stripped
	// (e.g. "imap" for "imap+ssl").
	Scheme   string
	Host     string
	Port     int
	Username string
	Password string

	// UseSSL is set when the scheme carried a +ssl modifier; the
	// connection is opened as TLS from the start.
	UseSSL bool
	// UseTLS is set when the scheme carried a +tls modifier; the
	// connection starts in plaintext and is upgraded via STARTTLS.
	UseTLS bool
}

// Parse parses a mailbox connection string. Credentials are
// percent-decoded. A missing host yields an empty Host rather than an
// error; an unparseable scheme yields ErrInvalidURI.
func Parse(raw string) (*ConnectionSpec, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: missing scheme in %q", ErrInvalidURI, raw)
	}

	scheme := strings.ToLower(u.Scheme)
	base := scheme
	if i := strings.Index(scheme, "+"); i >= 0 {
		base = scheme[:i]
	}

	spec := &ConnectionSpec{
		Scheme: base,
		Host:   u.Hostname(),
		UseSSL: strings.Contains(scheme, "+ssl"),
		UseTLS: strings.Contains(scheme, "+tls"),
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: port %q", ErrInvalidURI, p)
		}
		spec.Port = port
	}

	if u.User != nil {
		// url.Userinfo accessors return percent-decoded values.
		spec.Username = u.User.Username()
		spec.Password, _ = u.User.Password()
	}

	return spec, nil
}

// Location returns the host, or the URI path when no host was given.
// Mirrors the tolerance for host-less URIs: it is empty rather than
// an error.
func (s *ConnectionSpec) Location() string {
	return s.Host
}

// Addr returns the dial address host:port, substituting the default
// IMAP port (993 for +ssl, 143 otherwise) when the URI had none.
func (s *ConnectionSpec) Addr() string {
	port := s.Port
	if port == 0 {
		if s.UseSSL {
			port = defaultSSLPort
		} else {
			port = defaultPort
		}
	}
	return net.JoinHostPort(s.Host, strconv.Itoa(port))
}

// Redacted returns the URI-ish identity of the connection without the
// password, for logging.
func (s *ConnectionSpec) Redacted() string {
	if s.Username == "" {
		return fmt.Sprintf("%s://%s", s.Scheme, s.Addr())
	}
	return fmt.Sprintf("%s://%s@%s", s.Scheme, s.Username, s.Addr())
}
