package restful

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is an *http.Response whose body has already been read.
// Response.Body can still be read once; Content holds the same bytes.
type Response struct {
	*http.Response

	// Content is the full response body.
	Content []byte
	// RequestBody is the body that was sent, nil when there was none.
	RequestBody []byte
	// Elapsed is the time from sending the request to reading the last
	// byte of the body.
	Elapsed time.Duration
	// TransactionID is the id the transaction was logged under. It is set
	// even when OnlyNotOK suppressed the artifacts.
	TransactionID string
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Content)
}

// JSON unmarshals the body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Content, v)
}

// URL returns the final request URL, after redirects.
func (r *Response) URL() string {
	if r.Request == nil || r.Request.URL == nil {
		return ""
	}
	return r.Request.URL.String()
}

// IsRedirect reports whether the response is a redirect that carries a Location.
func (r *Response) IsRedirect() bool {
	if r.Header.Get("Location") == "" {
		return false
	}
	switch r.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// IsPermanentRedirect reports whether the response is a permanent redirect
// that carries a Location.
func (r *Response) IsPermanentRedirect() bool {
	if r.Header.Get("Location") == "" {
		return false
	}
	return r.StatusCode == http.StatusMovedPermanently || r.StatusCode == http.StatusPermanentRedirect
}
