// Package httpx is the JSON request wrapper shared by every remote gateway.
// It attaches the bearer credential and normalises failures into
// apperrors.Error kinds.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "vocabhub/internal/platform/errors"
)

// TokenSource is satisfied by identity.Static.
type TokenSource interface {
	Token() (string, bool)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// ErrorBody is the normalised error payload of every non-2xx reply.
type ErrorBody struct {
	Error string `json:"error"`
}

// Do sends in (if non-nil) as JSON and decodes the reply into out (if
// non-nil). An explicit token overrides the client's TokenSource.
func (c *Client) Do(ctx context.Context, op, method, path, token string, in, out any) error {
	if token == "" && c.tokens != nil {
		token, _ = c.tokens.Token()
	}
	if token == "" {
		return apperrors.New(op, apperrors.KindUnauthenticated, errors.New("no credential available"))
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return apperrors.New(op, apperrors.KindMalformed, fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.New(op, apperrors.KindTransport, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.New(op, apperrors.KindTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.New(op, apperrors.KindTransport, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		if out != nil {
			return apperrors.New(op, apperrors.KindMalformed, errors.New("empty response body"))
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.New(op, apperrors.KindMalformed, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func statusError(op string, status int, raw []byte) error {
	msg := strings.TrimSpace(string(raw))
	decoded := ErrorBody{}
	if json.Unmarshal(raw, &decoded) == nil && decoded.Error != "" {
		msg = decoded.Error
	}
	cause := fmt.Errorf("status %d: %s", status, msg)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.New(op, apperrors.KindUnauthenticated, cause)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return apperrors.New(op, apperrors.KindRejected, cause)
	default:
		return apperrors.New(op, apperrors.KindTransport, cause)
	}
}

// GetJSON fetches an absolute URL without credentials, for public services
// such as the dictionary lookup.
func (c *Client) GetJSON(ctx context.Context, op, rawURL string, out any) error {
	raw, err := c.get(ctx, op, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.New(op, apperrors.KindMalformed, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// Download copies the body of an absolute URL into w.
func (c *Client) Download(ctx context.Context, op, rawURL string, w io.Writer) error {
	raw, err := c.get(ctx, op, rawURL, "*/*")
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return apperrors.New(op, apperrors.KindMalformed, errors.New("empty response body"))
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("%s: write: %w", op, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.New(op, apperrors.KindTransport, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", accept)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.New(op, apperrors.KindTransport, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.New(op, apperrors.KindTransport, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(op, resp.StatusCode, raw)
	}
	return raw, nil
}
