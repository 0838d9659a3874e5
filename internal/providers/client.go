package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBody caps how much of an upstream response we read.
const maxBody = 1 << 20

// UpstreamError keeps the upstream detail for logs; clients only see ErrUpstream.
type UpstreamError struct {
	Provider string
	Op       string
	Status   int
	Body     string
	Err      error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Provider, e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstream, e.Err}
	}
	return []error{ErrUpstream}
}

// Client is what descriptors get to talk to their upstream.
type Client struct {
	Name string
	Cfg  Config
	HTTP *http.Client
}

// GetJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) GetJSON(ctx context.Context, op, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	return c.do(req, op, out)
}

// PostJSON sends body as JSON (nil body sends "{}").
func (c *Client) PostJSON(ctx context.Context, op, url string, body any, out any) error {
	var payload []byte
	if body == nil {
		payload = []byte("{}")
	} else {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &UpstreamError{Provider: c.Name, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &UpstreamError{Provider: c.Name, Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Provider: c.Name, Op: op, Status: resp.StatusCode, Body: truncate(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &UpstreamError{Provider: c.Name, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err), Body: truncate(raw)}
	}
	return nil
}

func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "…"
	}
	return string(b)
}

// tokenResponse is the common shape of token endpoints (snake_case, as in RFC 6749).
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// tokenSet surfaces in-body OAuth errors (200 with an error field).
func (c *Client) tokenSet(op string, tr tokenResponse) (*TokenSet, error) {
	if tr.Error != "" {
		return nil, &UpstreamError{Provider: c.Name, Op: op, Err: fmt.Errorf("%s: %s", tr.Error, tr.ErrorDescription)}
	}
	if tr.AccessToken == "" {
		return nil, &UpstreamError{Provider: c.Name, Op: op, Err: ErrNoAccessToken}
	}
	return &TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
		ExpiresIn:    tr.ExpiresIn,
	}, nil
}

// PostJSONToken posts body as JSON to a token endpoint.
func (c *Client) PostJSONToken(ctx context.Context, url string, body any) (*TokenSet, error) {
	var tr tokenResponse
	if err := c.PostJSON(ctx, "token", url, body, &tr); err != nil {
		return nil, err
	}
	return c.tokenSet("token", tr)
}
