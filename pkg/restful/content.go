package restful

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// JSONDecoder parses a response body. It returns the raw JSON value or an
// error whose message says why the body is not JSON.
type JSONDecoder func(data []byte) (json.RawMessage, error)

// DefaultIgnoredJSONErrors are decode-error fragments that only mean the
// body is not JSON. Bodies failing with one of these are logged as text.
var DefaultIgnoredJSONErrors = []string{
	"unexpected end of JSON input",
	"looking for beginning of value",
	"after top-level value",
	"Expecting value",
	"Extra data",
	"No JSON object could be decoded",
}

const jsonIndent = "    "

func decodeJSON(data []byte) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Content is a response body as it is logged. At most one field is set;
// both are empty when the body was empty.
type Content struct {
	JSON json.RawMessage
	Text string
}

// Empty reports whether there is nothing to log.
func (c *Content) Empty() bool {
	return c == nil || (c.JSON == nil && c.Text == "")
}

// Pretty renders JSON with a four-space indent and returns text as is.
func (c *Content) Pretty() ([]byte, error) {
	if c.JSON == nil {
		return []byte(c.Text), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, c.JSON, "", jsonIndent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON emits the JSON value, the text as a JSON string, or null.
func (c Content) MarshalJSON() ([]byte, error) {
	switch {
	case c.JSON != nil:
		return c.JSON, nil
	case c.Text != "":
		return json.Marshal(c.Text)
	default:
		return []byte("null"), nil
	}
}

// ResponseContent extracts the loggable content of r. A body that is not
// JSON (per the ignored error fragments) falls back to text decoded with
// the declared charset. Any other decode error is returned.
func (c *Client) ResponseContent(r *Response) (*Content, error) {
	raw, err := c.decodeJSON(r.Content)
	if err == nil {
		return &Content{JSON: raw}, nil
	}
	if !c.isIgnoredJSONError(err) {
		return nil, err
	}
	if len(r.Content) == 0 {
		return &Content{}, nil
	}
	return &Content{Text: decodeText(r.Content, r.Header.Get("Content-Type"))}, nil
}

func (c *Client) isIgnoredJSONError(err error) bool {
	msg := err.Error()
	for _, frag := range c.ignoredJSONErrors {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

// decodeText converts body to UTF-8 using the charset parameter of
// contentType, falling back to UTF-8. Invalid sequences become U+FFFD.
func decodeText(body []byte, contentType string) string {
	if name := declaredCharset(contentType); name != "" {
		if enc, _ := charset.Lookup(name); enc != nil {
			if out, err := enc.NewDecoder().Bytes(body); err == nil {
				body = out
			}
		}
	}
	if utf8.Valid(body) {
		return string(body)
	}
	return strings.ToValidUTF8(string(body), string(utf8.RuneError))
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// declaredEncoding is the encoding the body claims: the charset parameter,
// ISO-8859-1 for text types without one, and nil otherwise.
func declaredEncoding(contentType string) *string {
	if contentType == "" {
		return nil
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	if cs := params["charset"]; cs != "" {
		return &cs
	}
	if strings.HasPrefix(mediaType, "text/") {
		latin1 := "ISO-8859-1"
		return &latin1
	}
	return nil
}

// apparentEncoding guesses the body's encoding from its bytes.
func apparentEncoding(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if utf8.Valid(body) {
		return "utf-8"
	}
	_, name, _ := charset.DetermineEncoding(body, "")
	return name
}

// requestBodyValue is the request body for full records: the JSON value
// when the body is JSON, else its text, else null.
func requestBodyValue(body []byte) Content {
	if len(body) == 0 {
		return Content{}
	}
	if json.Valid(body) {
		return Content{JSON: json.RawMessage(body)}
	}
	return Content{Text: strings.ToValidUTF8(string(body), string(utf8.RuneError))}
}
