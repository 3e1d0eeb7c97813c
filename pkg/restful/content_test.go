package restful

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseWith(body, contentType string) *Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &Response{Response: &http.Response{StatusCode: http.StatusOK, Header: h}, Content: []byte(body)}
}

func TestResponseContent(t *testing.T) {
	c := New("", WithLogDir(t.TempDir()))

	tests := []struct {
		name     string
		body     string
		ctype    string
		wantJSON string
		wantText string
	}{
		{"json object", `{"a":1}`, "application/json", `{"a":1}`, ""},
		{"json array", `[1,2]`, "", `[1,2]`, ""},
		{"plain text", "hello", "text/plain", "", "hello"},
		{"trailing data", `{"a":1} x`, "", "", `{"a":1} x`},
		{"empty", "", "", "", ""},
		{"latin1", "caf\xe9", "text/plain; charset=iso-8859-1", "", "café"},
		{"invalid utf8", "ab\xff", "", "", "ab�"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ResponseContent(responseWith(tt.body, tt.ctype))
			require.NoError(t, err)
			assert.Equal(t, tt.wantJSON, string(got.JSON))
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}

func TestResponseContent_MalformedJSONPropagates(t *testing.T) {
	c := New("", WithLogDir(t.TempDir()))

	for _, body := range []string{`{"a" 1}`, `{"a":1,}`} {
		t.Run(body, func(t *testing.T) {
			got, err := c.ResponseContent(responseWith(body, "application/json"))
			var syntaxErr *json.SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Nil(t, got)
		})
	}
}

func TestResponseContent_CustomIgnoredErrors(t *testing.T) {
	c := New("", WithLogDir(t.TempDir()), WithIgnoredJSONErrors("nothing matches"))
	_, err := c.ResponseContent(responseWith("hello", ""))
	require.Error(t, err)
}

func TestContent_Pretty(t *testing.T) {
	out, err := (&Content{JSON: json.RawMessage(`{"a":[1,2]}`)}).Pretty()
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": [\n        1,\n        2\n    ]\n}", string(out))

	out, err = (&Content{Text: "raw"}).Pretty()
	require.NoError(t, err)
	assert.Equal(t, "raw", string(out))
}

func TestContent_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"j": Content{JSON: json.RawMessage(`{"x":1}`)},
		"t": Content{Text: "hi"},
		"n": Content{},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"j":{"x":1},"t":"hi","n":null}`, string(data))
}

func TestDeclaredEncoding(t *testing.T) {
	assert.Nil(t, declaredEncoding(""))
	assert.Nil(t, declaredEncoding("application/json"))
	require.NotNil(t, declaredEncoding("text/html"))
	assert.Equal(t, "ISO-8859-1", *declaredEncoding("text/html"))
	assert.Equal(t, "utf-8", *declaredEncoding("application/json; charset=utf-8"))
}

func TestApparentEncoding(t *testing.T) {
	assert.Equal(t, "", apparentEncoding(nil))
	assert.Equal(t, "utf-8", apparentEncoding([]byte("héllo")))
	assert.NotEmpty(t, apparentEncoding([]byte("caf\xe9")))
}

func TestResponse_Redirects(t *testing.T) {
	r := responseWith("", "")
	r.StatusCode = http.StatusFound
	assert.False(t, r.IsRedirect(), "no location")

	r.Header.Set("Location", "/next")
	assert.True(t, r.IsRedirect())
	assert.False(t, r.IsPermanentRedirect())

	r.StatusCode = http.StatusPermanentRedirect
	assert.True(t, r.IsPermanentRedirect())

	r.StatusCode = http.StatusOK
	assert.False(t, r.IsRedirect())
}

func TestResolveLogOptions(t *testing.T) {
	c := New("", WithLogDir("/logs"), WithDefaults(LogDefaults{FullResponse: true}))

	s := c.resolveLogOptions(nil)
	assert.True(t, s.saveRequest)
	assert.True(t, s.saveResponse)
	assert.False(t, s.fullRequest)
	assert.True(t, s.fullResponse)
	assert.Equal(t, c.RequestDir(), s.requestDir)

	s = c.resolveLogOptions(&LogOptions{FullResponse: Bool(false), SaveRequest: Bool(false), ResponseDir: "/x"})
	assert.False(t, s.fullResponse)
	assert.False(t, s.saveRequest)
	assert.Equal(t, "/x", s.responseDir)
}
