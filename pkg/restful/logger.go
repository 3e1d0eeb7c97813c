package restful

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/kitir/kitir/pkg/logging"
	"github.com/kitir/kitir/pkg/metrics"
	"github.com/kitir/kitir/pkg/util"
)

const (
	requestMeta  = "sent request: headers as set by the client"
	responseMeta = "response: content is json if possible. Excluding fields: [history links raw reason next connection request text]"
)

type requestRecord struct {
	Meta    string            `json:"__meta__"`
	Body    Content           `json:"body"`
	Headers map[string]string `json:"headers"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
}

type responseRecord struct {
	Meta                string            `json:"__meta__"`
	ApparentEncoding    string            `json:"apparent_encoding"`
	Content             *Content          `json:"content"`
	Elapsed             string            `json:"elapsed"`
	Encoding            *string           `json:"encoding"`
	Headers             map[string]string `json:"headers"`
	IsPermanentRedirect bool              `json:"is_permanent_redirect"`
	IsRedirect          bool              `json:"is_redirect"`
	OK                  bool              `json:"ok"`
	StatusCode          int               `json:"status_code"`
	URL                 string            `json:"url"`
}

// logTransaction writes the request and response artifacts of resp and
// sets resp.TransactionID. It never fails; problems are logged.
func (c *Client) logTransaction(resp *Response, l *LogOptions) {
	s := c.resolveLogOptions(l)

	method := ""
	if resp.Request != nil {
		method = resp.Request.Method
	}
	id := util.SafeFileName(s.transactionID)
	if s.transactionID == "" {
		id = c.MakeTransactionID(s.transactionName, method)
	}
	resp.TransactionID = id

	if s.onlyNotOK && resp.OK() {
		c.logger.Debug("not logging transaction (only not ok)", "id", id, "status", resp.StatusCode)
		return
	}

	if s.saveRequest {
		c.guard(metrics.SideRequest, id, func() error {
			if s.fullRequest {
				return c.writeRequestFull(resp, LogFilePath(s.requestDir, id, extJSON))
			}
			return c.writeRequest(resp, LogFilePath(s.requestDir, id, extText))
		})
	}
	if s.saveResponse {
		c.guard(metrics.SideResponse, id, func() error {
			if s.fullResponse {
				return c.writeResponseFull(resp, LogFilePath(s.responseDir, id, extJSON))
			}
			return c.writeResponse(resp, LogFilePath(s.responseDir, id, extText))
		})
	}
}

// guard runs fn and turns a returned error or a panic into an ERROR entry.
func (c *Client) guard(side, id string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			c.metrics.ObserveLogFailure(c.name, side)
			c.logger.Error("logging rest transaction "+side+" panicked",
				"id", id, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	if err := fn(); err != nil {
		c.metrics.ObserveLogFailure(c.name, side)
		c.logger.Error("logging rest transaction "+side+" failed",
			"id", id, "error", err, "stack", string(debug.Stack()))
		return
	}
	c.metrics.ObserveLogFile(c.name, side)
}

func (c *Client) writeRequest(resp *Response, path string) error {
	data := resp.RequestBody
	if len(data) == 0 {
		data = []byte(resp.URL())
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	c.trace("log-request",
		"method", resp.Request.Method, "url", resp.URL(), "path", path, "data", len(resp.RequestBody) > 0)
	return nil
}

func (c *Client) writeRequestFull(resp *Response, path string) error {
	rec := requestRecord{
		Meta:    requestMeta,
		Body:    requestBodyValue(resp.RequestBody),
		Headers: flattenHeader(resp.Request.Header),
		Method:  resp.Request.Method,
		URL:     resp.URL(),
	}
	if err := writeJSON(path, rec); err != nil {
		return err
	}
	c.trace("log-request-full", "method", rec.Method, "url", rec.URL, "path", path)
	return nil
}

func (c *Client) writeResponse(resp *Response, path string) error {
	content, err := c.ResponseContent(resp)
	if err != nil {
		return fmt.Errorf("extract response content: %w", err)
	}
	if content.Empty() {
		c.trace("log-response", "status", resp.StatusCode, "path", nil)
		return nil
	}
	data, err := content.Pretty()
	if err != nil {
		return err
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	c.trace("log-response", "status", resp.StatusCode, "path", path)
	return nil
}

func (c *Client) writeResponseFull(resp *Response, path string) error {
	content, err := c.ResponseContent(resp)
	if err != nil {
		return fmt.Errorf("extract response content: %w", err)
	}
	rec := responseRecord{
		Meta:                responseMeta,
		ApparentEncoding:    apparentEncoding(resp.Content),
		Content:             content,
		Elapsed:             resp.Elapsed.String(),
		Encoding:            declaredEncoding(resp.Header.Get("Content-Type")),
		Headers:             flattenHeader(resp.Header),
		IsPermanentRedirect: resp.IsPermanentRedirect(),
		IsRedirect:          resp.IsRedirect(),
		OK:                  resp.OK(),
		StatusCode:          resp.StatusCode,
		URL:                 resp.URL(),
	}
	if err := writeJSON(path, rec); err != nil {
		return err
	}
	c.trace("log-response-full", "status", resp.StatusCode, "path", path)
	return nil
}

func (c *Client) trace(msg string, args ...any) {
	c.logger.Log(context.Background(), logging.LevelTrace, msg, args...)
}

// flattenHeader joins repeated header values with ", ".
func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", jsonIndent)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
