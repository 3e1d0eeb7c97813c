package restful

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/kitir/kitir/pkg/logging"
	"github.com/kitir/kitir/pkg/metrics"
	"github.com/kitir/kitir/pkg/xdg"
)

// DefaultName namespaces the log directory of clients created without WithName.
const DefaultName = "rest"

// Client sends HTTP requests and logs each one as a transaction.
type Client struct {
	baseURL string
	name    string
	logRoot string
	logDir  string

	session  *Session
	seq      Sequence
	timeout  time.Duration
	defaults LogDefaults

	logger  *slog.Logger
	metrics *metrics.Metrics

	ignoredJSONErrors []string
	decodeJSON        JSONDecoder
}

// Option configures a Client.
type Option func(*Client)

// WithName sets the client name, used as the log sub-directory.
func WithName(name string) Option {
	return func(c *Client) {
		c.name = name
	}
}

// WithLogRoot sets the directory under which <name>/request and
// <name>/response are created.
func WithLogRoot(dir string) Option {
	return func(c *Client) {
		c.logRoot = dir
	}
}

// WithLogDir sets the client's log directory directly, bypassing
// <root>/<name>.
func WithLogDir(dir string) Option {
	return func(c *Client) {
		c.logDir = dir
	}
}

// WithSession sets the session shared by all calls.
func WithSession(s *Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithSequence sets the source of transaction numbers.
func WithSequence(seq Sequence) Option {
	return func(c *Client) {
		c.seq = seq
	}
}

// WithTimeout changes the timeout used when a call sets none. Zero or a
// negative value keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithDefaults sets the defaults for the tri-state LogOptions fields.
func WithDefaults(d LogDefaults) Option {
	return func(c *Client) {
		c.defaults = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics records transactions into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithIgnoredJSONErrors replaces the decode-error fragments that mean
// "the body is not JSON".
func WithIgnoredJSONErrors(fragments ...string) Option {
	return func(c *Client) {
		c.ignoredJSONErrors = fragments
	}
}

// WithJSONDecoder replaces the decoder used when logging response bodies.
func WithJSONDecoder(d JSONDecoder) Option {
	return func(c *Client) {
		c.decodeJSON = d
	}
}

// New creates a client. Relative URLs passed to its methods are joined to
// baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:           baseURL,
		name:              DefaultName,
		seq:               ProcessCounter(),
		timeout:           DefaultTimeout,
		logger:            logging.Nop(),
		ignoredJSONErrors: DefaultIgnoredJSONErrors,
		decodeJSON:        decodeJSON,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logDir == "" {
		root := c.logRoot
		if root == "" {
			root = xdg.DefaultLogDir()
		}
		c.logDir = filepath.Join(root, c.name)
	}
	if c.session == nil {
		c.session = NewSession()
	}
	c.logger = c.logger.With("client", c.name)
	return c
}

// Name returns the client name.
func (c *Client) Name() string { return c.name }

// BaseURL returns the base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the client's session.
func (c *Client) Session() *Session { return c.session }

// LogDir returns the directory holding the request and response dirs.
func (c *Client) LogDir() string { return c.logDir }

// RequestDir is where request artifacts go by default.
func (c *Client) RequestDir() string { return filepath.Join(c.logDir, "request") }

// ResponseDir is where response artifacts go by default.
func (c *Client) ResponseDir() string { return filepath.Join(c.logDir, "response") }

// Close releases the session's idle connections.
func (c *Client) Close() {
	c.session.Close()
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, t *Transport, l *LogOptions) (*Response, error) {
	return c.Do(ctx, http.MethodGet, rawURL, t, l)
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, rawURL string, t *Transport, l *LogOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPost, rawURL, t, l)
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, rawURL string, t *Transport, l *LogOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPut, rawURL, t, l)
}

// Patch sends a PATCH request.
func (c *Client) Patch(ctx context.Context, rawURL string, t *Transport, l *LogOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, rawURL, t, l)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string, t *Transport, l *LogOptions) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, rawURL, t, l)
}

// Do sends a request and logs the transaction.
//
// Transport errors are returned unchanged. The exception is a timeout with
// t.IgnoreTimeout or an aborted connection with t.IgnoreAborted: then Do
// returns a nil Response and a nil error, and nothing is logged to disk.
// Errors in t itself, such as ErrMultipleBodies, are returned before
// anything is sent and are not counted as transport errors.
// Failures while writing the transaction log never affect the result.
func (c *Client) Do(ctx context.Context, method, rawURL string, t *Transport, l *LogOptions) (*Response, error) {
	if t == nil {
		t = &Transport{}
	}
	target := c.resolveURL(rawURL)

	if !t.Quiet {
		c.logger.Debug("request", "method", method, "url", target)
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout(t))
	defer cancel()

	sess := c.pickSession(t)
	req, body, err := c.newRequest(ctx, method, target, t, sess)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req, body, sess)
	if err != nil {
		return nil, c.handleTransportError(method, target, t, err)
	}

	c.metrics.ObserveTransaction(c.name, method, resp.StatusCode, resp.Elapsed)
	c.logTransaction(resp, l)
	return resp, nil
}

// resolveURL joins relative URLs to the base URL.
func (c *Client) resolveURL(rawURL string) string {
	if c.baseURL == "" {
		return rawURL
	}
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" {
		return rawURL
	}
	if rawURL == "" {
		return c.baseURL
	}
	return strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(rawURL, "/")
}

func (c *Client) pickSession(t *Transport) *Session {
	switch {
	case t.Session != nil:
		return t.Session
	case t.Anonymous:
		return anonymousSession()
	default:
		return c.session
	}
}

// callTimeout is the call's own timeout, else the client's, else
// DefaultTimeout.
func (c *Client) callTimeout(t *Transport) time.Duration {
	switch {
	case t.Timeout > 0:
		return t.Timeout
	case c.timeout > 0:
		return c.timeout
	default:
		return DefaultTimeout
	}
}

// newRequest builds the outgoing request. Its errors come from the caller's
// options, not from the network.
func (c *Client) newRequest(ctx context.Context, method, target string, t *Transport, sess *Session) (*http.Request, []byte, error) {
	body, contentType, err := t.encodeBody()
	if err != nil {
		return nil, nil, err
	}

	if len(t.Query) > 0 {
		u, err := url.Parse(target)
		if err != nil {
			return nil, nil, err
		}
		q := u.Query()
		for k, vs := range t.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, err
	}

	for k, vs := range sess.Header {
		req.Header[k] = append([]string(nil), vs...)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range t.Header {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	return req, body, nil
}

// send performs the request and reads the whole body so the transaction
// can be logged. The returned Response has a re-readable Body.
//
// After a redirect resp.Request is the last request sent; body is kept
// only if that request carried it too (307 and 308 resend the body).
func (c *Client) send(req *http.Request, body []byte, sess *Session) (*Response, error) {
	start := time.Now()
	httpResp, err := sess.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	content, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	httpResp.Body = io.NopCloser(bytes.NewReader(content))

	if final := httpResp.Request; final != nil && final != req && final.ContentLength == 0 {
		body = nil
	}

	return &Response{
		Response:    httpResp,
		Content:     content,
		RequestBody: body,
		Elapsed:     elapsed,
	}, nil
}

// handleTransportError returns nil when the error was opted out of, and
// err itself otherwise.
func (c *Client) handleTransportError(method, target string, t *Transport, err error) error {
	kind := classifyTransportError(err)
	switch {
	case kind == metrics.KindTimeout && t.IgnoreTimeout:
		c.metrics.ObserveTransportError(c.name, kind, true)
		c.logger.Debug("request timeout, ignored", "method", method, "url", target, "error", err)
		return nil
	case kind == metrics.KindAborted && t.IgnoreAborted:
		c.metrics.ObserveTransportError(c.name, kind, true)
		c.logger.Debug("connection aborted, ignored", "method", method, "url", target, "error", err)
		return nil
	}

	c.metrics.ObserveTransportError(c.name, kind, false)
	c.logger.Error("request failed", "method", method, "url", target, "error", err)
	return err
}
