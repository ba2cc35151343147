// Package api is the single entry point to the remote backend. Requester
// attaches the bearer token, picks the content type and handles 401
// responses centrally; Client exposes one method per endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session is what the requester needs from the auth session.
type Session interface {
	Token() string
	Expire(ctx context.Context)
}

// Options configures a Requester.
type Options struct {
	HTTPClient *http.Client
	BaseURL    string
	Breaker    BreakerSettings
	Timeout    time.Duration
}

// Requester sends requests to the backend.
type Requester struct {
	httpClient *http.Client
	session    Session
	breaker    *breaker
	baseURL    string
}

// NewRequester creates a requester bound to session. session may be nil for
// anonymous use.
func NewRequester(opts Options, session Session) (*Requester, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Requester{
		baseURL:    base,
		httpClient: client,
		session:    session,
		breaker:    newBreaker(u.Host, opts.Breaker),
	}, nil
}

// Body is an outgoing request payload.
type Body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct{ v any }

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// JSON encodes v as the request body.
func JSON(v any) Body { return jsonBody{v: v} }

type formBody struct{ values url.Values }

func (b formBody) encode() (io.Reader, string, error) {
	return strings.NewReader(b.values.Encode()), "application/x-www-form-urlencoded", nil
}

// Form sends values url-encoded.
func Form(values url.Values) Body { return formBody{values: values} }

type fileBody struct {
	content  io.Reader
	field    string
	filename string
}

func (b fileBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(b.field, b.filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, b.content); err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	// The writer's content type carries the boundary.
	return &buf, w.FormDataContentType(), nil
}

// File uploads content as a multipart form field.
func File(field, filename string, content io.Reader) Body {
	return fileBody{field: field, filename: filename, content: content}
}

// Request describes one call.
type Request struct {
	Body   Body
	Method string
	Path   string
	// Anonymous requests carry no token and a 401 is reported as a plain
	// APIError instead of expiring the session (wrong credentials at login).
	Anonymous bool
}

// Response is a successful (2xx) response with its body read.
type Response struct {
	Header http.Header
	Body   []byte
	Status int
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// Do sends req. A 401 on an authenticated request expires the session and
// returns ErrUnauthorized; other non-2xx statuses return *APIError.
func (r *Requester) Do(ctx context.Context, req Request) (*Response, error) {
	requestID := uuid.New().String()
	start := time.Now()

	resp, err := r.breaker.execute(func() (*Response, error) {
		return r.send(ctx, req, requestID)
	})

	logger := slog.With("method", req.Method, "path", req.Path, "request_id", requestID)
	if err != nil {
		logger.Warn("API request failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	logger.Debug("API request", "status", resp.Status, "duration", time.Since(start))

	if resp.Status == http.StatusUnauthorized && !req.Anonymous {
		if r.session != nil {
			r.session.Expire(ctx)
		}
		return nil, ErrUnauthorized
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, &APIError{Status: resp.Status, Detail: detailFrom(resp.Body)}
	}
	return resp, nil
}

// send performs the round trip. Transport failures and 5xx statuses are
// returned as errors so the breaker counts them; other statuses are left for
// Do to interpret.
func (r *Requester) send(ctx context.Context, req Request, requestID string) (*Response, error) {
	var (
		body        io.Reader
		contentType = "application/json"
	)
	if req.Body != nil {
		var err error
		body, contentType, err = req.Body.encode()
		if err != nil {
			return nil, err
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, r.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if !req.Anonymous && r.session != nil {
		if token := r.session.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	httpResp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: data}
	if httpResp.StatusCode >= http.StatusInternalServerError {
		return nil, &APIError{Status: httpResp.StatusCode, Detail: detailFrom(data)}
	}
	return resp, nil
}
