package restful

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"time"
)

// DefaultTimeout applies to calls that do not set Transport.Timeout.
const DefaultTimeout = 120 * time.Second

// ErrMultipleBodies is returned when more than one of Transport.Body,
// Transport.JSON and Transport.Form is set.
var ErrMultipleBodies = errors.New("restful: only one of Body, JSON or Form may be set")

// Transport holds the options forwarded to the HTTP layer.
type Transport struct {
	// Header is added to the request after the session's default headers.
	Header http.Header
	// Query is appended to the URL's query string.
	Query url.Values

	// Body is sent as-is.
	Body []byte
	// JSON is marshalled and sent with Content-Type application/json.
	JSON any
	// Form is url-encoded and sent with Content-Type application/x-www-form-urlencoded.
	Form url.Values

	// Timeout bounds the whole call including reading the body.
	// Zero means the client's timeout (DefaultTimeout unless changed).
	Timeout time.Duration

	// Session replaces the client's session for this call.
	Session *Session
	// Anonymous sends the call on a fresh client without cookies or
	// session headers. Ignored when Session is set.
	Anonymous bool

	// IgnoreTimeout swallows timeout errors: the call returns (nil, nil).
	IgnoreTimeout bool
	// IgnoreAborted swallows connection-aborted errors: the call returns (nil, nil).
	IgnoreAborted bool

	// Quiet suppresses the debug line announcing the request.
	Quiet bool
}

func (t *Transport) encodeBody() ([]byte, string, error) {
	set := 0
	for _, ok := range []bool{t.Body != nil, t.JSON != nil, t.Form != nil} {
		if ok {
			set++
		}
	}
	if set > 1 {
		return nil, "", ErrMultipleBodies
	}

	switch {
	case t.JSON != nil:
		data, err := json.Marshal(t.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("restful: encode json body: %w", err)
		}
		return data, "application/json", nil
	case t.Form != nil:
		return []byte(t.Form.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return t.Body, "", nil
	}
}

// LogOptions controls whether, what and where a call is logged. A nil
// field means "use the default" as documented on each field.
type LogOptions struct {
	// TransactionID replaces the generated id. The counter is not advanced.
	TransactionID string
	// TransactionName is inserted into the generated id after the number.
	TransactionName string

	// SaveRequest writes the request artifact. Default true.
	SaveRequest *bool
	// SaveResponse writes the response artifact. Default true.
	SaveResponse *bool

	// RequestDir overrides <log dir>/request.
	RequestDir string
	// ResponseDir overrides <log dir>/response.
	ResponseDir string

	// FullRequest writes a JSON record instead of the raw body. Default from the client.
	FullRequest *bool
	// FullResponse writes a JSON record instead of the raw body. Default from the client.
	FullResponse *bool

	// OnlyNotOK skips logging when the status is 2xx. Default from the client.
	OnlyNotOK *bool
}

// LogDefaults are the client-wide defaults for the tri-state LogOptions fields.
type LogDefaults struct {
	FullRequest  bool `yaml:"fullRequest" json:"fullRequest"`
	FullResponse bool `yaml:"fullResponse" json:"fullResponse"`
	OnlyNotOK    bool `yaml:"onlyNotOk" json:"onlyNotOk"`
}

// Bool returns a pointer to v, for the tri-state LogOptions fields.
func Bool(v bool) *bool {
	return &v
}

// logSettings is LogOptions with every default applied.
type logSettings struct {
	transactionID   string
	transactionName string
	saveRequest     bool
	saveResponse    bool
	requestDir      string
	responseDir     string
	fullRequest     bool
	fullResponse    bool
	onlyNotOK       bool
}

func (c *Client) resolveLogOptions(l *LogOptions) logSettings {
	s := logSettings{
		saveRequest:  true,
		saveResponse: true,
		requestDir:   c.RequestDir(),
		responseDir:  c.ResponseDir(),
		fullRequest:  c.defaults.FullRequest,
		fullResponse: c.defaults.FullResponse,
		onlyNotOK:    c.defaults.OnlyNotOK,
	}
	if l == nil {
		return s
	}

	s.transactionID = l.TransactionID
	s.transactionName = l.TransactionName
	if l.SaveRequest != nil {
		s.saveRequest = *l.SaveRequest
	}
	if l.SaveResponse != nil {
		s.saveResponse = *l.SaveResponse
	}
	if l.RequestDir != "" {
		s.requestDir = l.RequestDir
	}
	if l.ResponseDir != "" {
		s.responseDir = l.ResponseDir
	}
	if l.FullRequest != nil {
		s.fullRequest = *l.FullRequest
	}
	if l.FullResponse != nil {
		s.fullResponse = *l.FullResponse
	}
	if l.OnlyNotOK != nil {
		s.onlyNotOK = *l.OnlyNotOK
	}
	return s
}

// Artifact extensions.
const (
	extText = "txt"
	extJSON = "json"
)

// LogFilePath builds <directory>/<transactionID>.<ext>.
func LogFilePath(directory, transactionID, ext string) string {
	return filepath.Join(directory, transactionID+"."+ext)
}
