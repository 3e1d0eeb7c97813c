package restful

import (
	"net/http"
	"net/http/cookiejar"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// Session is a reusable connection and cookie context. A Client owns one
// and uses it for every call unless the call supplies another.
type Session struct {
	// ID identifies the session in log output.
	ID string
	// Header is sent with every request made through the session.
	Header http.Header

	client *http.Client
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithHTTPClient uses hc instead of a new client. If hc has no cookie jar
// the session's jar is installed on it.
func WithHTTPClient(hc *http.Client) SessionOption {
	return func(s *Session) {
		if hc.Jar == nil {
			hc.Jar = s.client.Jar
		}
		s.client = hc
	}
}

// WithHeader adds a default header to every request of the session.
func WithHeader(key, value string) SessionOption {
	return func(s *Session) {
		s.Header.Add(key, value)
	}
}

// NewSession creates a session with a cookie jar scoped by the public
// suffix list.
func NewSession(opts ...SessionOption) *Session {
	// cookiejar.New only fails on invalid options
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	s := &Session{
		ID:     uuid.NewString(),
		Header: make(http.Header),
		client: &http.Client{Jar: jar},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// anonymousSession has no jar and no default headers.
func anonymousSession() *Session {
	return &Session{
		Header: make(http.Header),
		client: &http.Client{},
	}
}

// HTTPClient returns the underlying client.
func (s *Session) HTTPClient() *http.Client {
	return s.client
}

// Close releases idle connections.
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}
