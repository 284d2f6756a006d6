package smms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const maxResponseSize = 8 << 20

type Options struct {
	BaseURL string
	Timeout time.Duration

	// TokenSource supplies the Authorization header for every call except
	// token issuance.
	TokenSource oauth2.TokenSource

	// RawAuthorization sends the access token as the whole Authorization
	// header value, with no scheme prefix.
	RawAuthorization bool

	// Transport is the underlying round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client speaks the sm.ms v2 wire format. It returns wire types; Provider
// maps them onto the domain.
type Client struct {
	baseURL string
	anon    *http.Client
	authed  *http.Client
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}
	if opts.TokenSource == nil {
		return nil, fmt.Errorf("token source is required")
	}

	logging := NewLoggingTransport(opts.Transport)

	var authed http.RoundTripper = &oauth2.Transport{Source: opts.TokenSource, Base: logging}
	if opts.RawAuthorization {
		authed = &rawTokenTransport{source: opts.TokenSource, base: logging}
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		anon: &http.Client{
			Transport: logging,
			Timeout:   opts.Timeout,
		},
		authed: &http.Client{
			Transport: authed,
			Timeout:   opts.Timeout,
		},
	}, nil
}

// rawTokenTransport is oauth2.Transport without the token type: the header
// carries the access token alone.
type rawTokenTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *rawTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", token.AccessToken)
	return t.base.RoundTrip(authed)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

func (c *Client) Token(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/token"), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var data tokenData
	if err := c.do(c.anon, req, &data, true); err != nil {
		return "", err
	}
	return data.Token, nil
}

func (c *Client) Profile(ctx context.Context) (*profileData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/profile"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}

	var data profileData
	if err := c.do(c.authed, req, &data, true); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) UploadHistory(ctx context.Context, page int) ([]imageData, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/upload_history")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build history request: %w", err)
	}

	var data []imageData
	if err := c.do(c.authed, req, &data, true); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) Upload(ctx context.Context, path string) (*imageData, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("smfile", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := w.WriteField("format", "json"); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload"), &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var data imageData
	if err := c.do(c.authed, req, &data, true); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) Delete(ctx context.Context, hash string) error {
	if hash == "" {
		return ErrEmptyHash
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/delete/"+url.PathEscape(hash)), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	return c.do(c.authed, req, nil, false)
}

// do sends req and decodes the envelope. When requireData is set, a
// successful response without data is ErrMissingData.
func (c *Client) do(client *http.Client, req *http.Request, out any, requireData bool) error {
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode response (HTTP %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		return &APIError{
			Code:        env.Code,
			Message:     env.Message,
			RequestID:   env.RequestID,
			ExistingURL: env.Images,
		}
	}

	if !env.hasData() {
		if requireData {
			return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrMissingData)
		}
		return nil
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
