package smms

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smmsclient/smms/internal/logger"
)

const maxLoggedBody = 10000

// LoggingTransport wraps an http.RoundTripper and records every request and
// response in the session log.
type LoggingTransport struct {
	Transport http.RoundTripper
}

func NewLoggingTransport(transport http.RoundTripper) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &LoggingTransport{Transport: transport}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logRequest(req)

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		logger.LogError("HTTP_REQUEST", fmt.Sprintf("%s %s", req.Method, req.URL.Path), err)
		return nil, err
	}

	t.logResponse(req, resp, duration)
	return resp, nil
}

func (t *LoggingTransport) logRequest(req *http.Request) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "HTTP %s %s\n", req.Method, req.URL.String())
	writeHeaders(&buf, req.Header)

	switch {
	case req.Body == nil || req.ContentLength == 0:
	case isBinary(req.Header.Get("Content-Type")):
		fmt.Fprintf(&buf, "Body: (%d bytes, %s)\n", req.ContentLength, mediaType(req.Header.Get("Content-Type")))
	case req.ContentLength > 0 && req.ContentLength < maxLoggedBody:
		body, err := io.ReadAll(req.Body)
		if err == nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
			fmt.Fprintf(&buf, "Body: %s\n", redactForm(string(body)))
		}
	default:
		fmt.Fprintf(&buf, "Body: (%d bytes, too large to log)\n", req.ContentLength)
	}

	logger.Log(strings.TrimRight(buf.String(), "\n"))
}

func (t *LoggingTransport) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "HTTP %s %s -> %s (%v)\n", req.Method, req.URL.Path, resp.Status, duration.Round(time.Millisecond))

	if resp.Body != nil && resp.ContentLength != 0 {
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err == nil {
			resp.Body = io.NopCloser(bytes.NewReader(body))
			if len(body) > 0 && len(body) < maxLoggedBody {
				fmt.Fprintf(&buf, "Body: %s\n", redactJSONToken(string(body)))
			} else if len(body) > 0 {
				fmt.Fprintf(&buf, "Body: (%d bytes, too large to log)\n", len(body))
			}
		} else {
			resp.Body = io.NopCloser(bytes.NewReader(nil))
		}
	}

	logger.Log(strings.TrimRight(buf.String(), "\n"))
}

func writeHeaders(buf *bytes.Buffer, h http.Header) {
	for name, values := range h {
		if isSensitiveHeader(name) {
			fmt.Fprintf(buf, "  %s: [REDACTED]\n", name)
			continue
		}
		for _, v := range values {
			fmt.Fprintf(buf, "  %s: %s\n", name, v)
		}
	}
}

func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-api-key", "api-key", "x-auth-token", "cookie", "set-cookie":
		return true
	}
	return false
}

func isBinary(contentType string) bool {
	mt := mediaType(contentType)
	return strings.HasPrefix(mt, "multipart/") || strings.HasPrefix(mt, "image/") || mt == "application/octet-stream"
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(strings.ToLower(mt))
}

// redactForm hides the password of a form-encoded login body.
func redactForm(body string) string {
	parts := strings.Split(body, "&")
	for i, p := range parts {
		if strings.HasPrefix(p, "password=") {
			parts[i] = "password=[REDACTED]"
		}
	}
	return strings.Join(parts, "&")
}

// redactJSONToken hides the token value in a /token response.
func redactJSONToken(body string) string {
	const key = `"token":"`
	i := strings.Index(body, key)
	if i < 0 {
		return body
	}
	start := i + len(key)
	end := strings.IndexByte(body[start:], '"')
	if end < 0 {
		return body
	}
	return body[:start] + "[REDACTED]" + body[start+end:]
}
