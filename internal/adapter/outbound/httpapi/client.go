// Package httpapi is the HTTP client for the portal backend. Sessions are
// carried by HTTP-only cookies; an expired access cookie is renewed once per
// request through the refresh endpoint.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/osvs/memberportal/internal/domain/apierror"
)

const (
	defaultTimeout = 10 * time.Second
	apiPrefix      = "/api"
	refreshPath    = "/auth/refresh"
	tracerName     = "github.com/osvs/memberportal/internal/adapter/outbound/httpapi"

	// HeaderRequestID carries a per-attempt correlation ID.
	HeaderRequestID = "X-Request-ID"
)

// Client talks to the portal backend.
type Client struct {
	backendURL string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	jar        http.CookieJar
	userAgent  string
	metrics    *Metrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewClient creates a client. Options override the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:   defaultTimeout,
		userAgent: "osvs",
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.baseURL = strings.TrimRight(c.backendURL, "/") + apiPrefix

	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}

	if c.httpClient == nil {
		if c.jar == nil {
			// cookiejar.New only fails on a broken public suffix list.
			c.jar, _ = cookiejar.New(nil)
		}
		var transport http.RoundTripper = http.DefaultTransport
		if c.metrics != nil {
			transport = c.metrics.instrument(transport)
		}
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Jar:       c.jar,
			Transport: transport,
		}
	}

	return c
}

// BaseURL returns the API root all paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Jar returns the cookie jar holding the session.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// payload is an encoded request body that can be replayed on retry.
type payload struct {
	data        []byte
	contentType string
}

// Picture is an image uploaded as a multipart file part.
type Picture struct {
	Name    string
	Content io.Reader
}

// form is a multipart request body.
type form struct {
	fields map[string]string
	file   string
	pic    *Picture
}

// doRequest performs one API call. On a 401 for anything but the refresh
// endpoint it renews the session once and replays the call once; when the
// refresh fails the original 401 is returned. Non-2xx responses become
// *apierror.TransportError, connection failures *apierror.UnknownError.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	ctx, span := c.tracer.Start(ctx, "api "+method+" "+routeOf(path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	p, err := encodeBody(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode body")
		return &apierror.UnknownError{Raw: err}
	}

	status, data, err := c.send(ctx, method, path, p)
	if err == nil && status == http.StatusUnauthorized && path != refreshPath {
		if c.refresh(ctx) {
			span.AddEvent("session refreshed")
			status, data, err = c.send(ctx, method, path, p)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return &apierror.UnknownError{Raw: err}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if status < 200 || status >= 300 {
		apiErr := normalizeError(status, data)
		span.SetStatus(codes.Error, apiErr.Message)
		c.logger.Debug("api call failed",
			"method", method,
			"path", path,
			"status", status,
			"error", apiErr.Message,
		)
		return apiErr
	}

	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		err = fmt.Errorf("failed to unmarshal response: %w", err)
		span.RecordError(err)
		return &apierror.UnknownError{Raw: err}
	}
	return nil
}

// send performs a single attempt and returns the status and body.
func (c *Client) send(ctx context.Context, method, path string, p payload) (int, []byte, error) {
	var bodyReader io.Reader
	if p.data != nil {
		bodyReader = bytes.NewReader(p.data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if p.contentType != "" {
		httpReq.Header.Set("Content-Type", p.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return httpResp.StatusCode, data, nil
}

// refresh asks the backend to renew the access cookie. It reports whether
// the backend accepted.
func (c *Client) refresh(ctx context.Context) bool {
	status, _, err := c.send(ctx, http.MethodPost, refreshPath, payload{})
	ok := err == nil && status >= 200 && status < 300
	if c.metrics != nil {
		result := "ok"
		if !ok {
			result = "failed"
		}
		c.metrics.Refreshes.WithLabelValues(result).Inc()
	}
	if !ok {
		c.logger.Debug("session refresh failed", "status", status, "error", err)
	}
	return ok
}

// normalizeError builds a TransportError from a non-2xx body. The message
// is the body's "error", then "message", then a plain-text body, then the
// status fallback.
func normalizeError(status int, data []byte) *apierror.TransportError {
	apiErr := &apierror.TransportError{Status: status}

	var raw any
	if err := json.Unmarshal(data, &raw); err == nil {
		switch v := raw.(type) {
		case map[string]any:
			if msg, ok := v["error"].(string); ok && msg != "" {
				apiErr.Message = msg
			} else if msg, ok := v["message"].(string); ok && msg != "" {
				apiErr.Message = msg
			}
			if code, ok := v["code"].(string); ok {
				apiErr.Code = code
			}
			apiErr.Details = v["details"]
		case string:
			apiErr.Message = v
		}
	} else if text := strings.TrimSpace(string(data)); text != "" && !strings.HasPrefix(text, "<") {
		apiErr.Message = text
	}

	if apiErr.Message == "" {
		apiErr.Message = apierror.StatusMessage(status)
	}
	return apiErr
}

func encodeBody(body any) (payload, error) {
	switch b := body.(type) {
	case nil:
		return payload{}, nil
	case *form:
		return b.encode()
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return payload{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return payload{data: data, contentType: "application/json"}, nil
	}
}

func (f *form) encode() (payload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range f.fields {
		if err := mw.WriteField(k, v); err != nil {
			return payload{}, fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if f.pic != nil && f.pic.Content != nil {
		part, err := mw.CreateFormFile(f.file, f.pic.Name)
		if err != nil {
			return payload{}, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, f.pic.Content); err != nil {
			return payload{}, fmt.Errorf("failed to copy %s: %w", f.pic.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return payload{}, fmt.Errorf("failed to close multipart body: %w", err)
	}
	return payload{data: buf.Bytes(), contentType: mw.FormDataContentType()}, nil
}

// unwrap returns the value under key when data is an object carrying it,
// and data itself otherwise. The backend wraps some payloads inconsistently.
func unwrap(data json.RawMessage, key string) json.RawMessage {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return data
	}
	if inner, ok := env[key]; ok && len(inner) > 0 {
		return inner
	}
	return data
}

// decodeWrapped unmarshals data into out, looking through a {key: ...}
// envelope. An empty body leaves out untouched.
func decodeWrapped(data json.RawMessage, key string, out any) error {
	if len(bytes.TrimSpace(data)) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(unwrap(data, key), out); err != nil {
		return &apierror.UnknownError{Raw: fmt.Errorf("failed to unmarshal %s: %w", key, err)}
	}
	return nil
}

// routeOf replaces numeric and token path segments so span names stay
// low-cardinality.
func routeOf(path string) string {
	path, _, _ = strings.Cut(path, "?")
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == "" {
			continue
		}
		if isDigits(s) || (i > 0 && segs[i-1] == "status") {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
