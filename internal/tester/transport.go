package tester

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/encoding/json"
	"golang.org/x/net/html/charset"

	"github.com/moamenhredeen/reqcheck/internal/logging"
	"github.com/moamenhredeen/reqcheck/internal/models"
)

// maxBodyRead caps how much of a response body is kept
const maxBodyRead = 10 << 20

// Transport sends one request and normalizes the outcome. Network and
// HTTP failures are reported inside the ResponseResult, not as errors.
type Transport interface {
	Send(ctx context.Context, req models.RequestDescriptor) (models.ResponseResult, error)
}

// HTTPTransport is the net/http implementation of Transport
type HTTPTransport struct {
	client         *http.Client
	requestBuilder *RequestBuilder
	timeout        time.Duration
	logger         *slog.Logger
}

// NewHTTPTransport creates a transport. timeout applies to requests
// that do not declare their own; logger may be nil.
func NewHTTPTransport(timeout time.Duration, logger *slog.Logger) *HTTPTransport {
	if timeout <= 0 {
		timeout = models.DefaultTimeoutSecs * time.Second
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPTransport{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
		requestBuilder: NewRequestBuilder(),
		timeout:        timeout,
		logger:         logger,
	}
}

// Send executes the request described by desc
func (t *HTTPTransport) Send(ctx context.Context, desc models.RequestDescriptor) (models.ResponseResult, error) {
	method := strings.ToUpper(strings.TrimSpace(desc.Method))
	if method == "" {
		return models.FailedResponse(models.ErrInvalidMethod, "method is required"), nil
	}
	if !supportedMethods[method] {
		return models.FailedResponse(models.ErrInvalidMethod, fmt.Sprintf("unsupported method: %s", method)), nil
	}
	rawURL := strings.TrimSpace(desc.URL)
	if rawURL == "" {
		return models.FailedResponse(models.ErrInvalidURL, "url is required"), nil
	}
	if u, err := url.Parse(rawURL); err != nil || u.Scheme == "" || u.Host == "" {
		return models.FailedResponse(models.ErrInvalidURL, fmt.Sprintf("invalid url: %s", rawURL)), nil
	}
	desc.Method = method
	desc.URL = rawURL

	reqCtx, cancel := context.WithTimeout(ctx, desc.TimeoutDuration(t.timeout))
	defer cancel()

	req, err := t.requestBuilder.BuildRequest(reqCtx, desc)
	if err != nil {
		return models.FailedResponse(models.ErrRequest, err.Error()), nil
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		errType := classifyError(err)
		t.logger.Debug("request failed", "method", method, "url", rawURL, "error_type", errType, "error", err)
		return models.FailedResponse(errType, err.Error()), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyRead))
	if err != nil {
		return models.FailedResponse(classifyError(err), fmt.Sprintf("failed to read response body: %v", err)), nil
	}

	text := decodeText(raw, resp.Header.Get("Content-Type"))
	var parsed any
	if strings.TrimSpace(text) != "" {
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			parsed = nil
		}
	}

	headers := make(map[string]string, len(resp.Header))
	for k, vs := range resp.Header {
		headers[k] = strings.Join(vs, ", ")
	}

	t.logger.Debug("request completed", "method", method, "url", rawURL, "status", resp.StatusCode, "elapsed_ms", elapsed)

	status := resp.StatusCode
	return models.ResponseResult{
		Success:      true,
		StatusCode:   &status,
		Headers:      headers,
		ResponseText: &text,
		ResponseJSON: parsed,
		ElapsedMS:    &elapsed,
	}, nil
}

// decodeText converts the body to UTF-8 using the declared or sniffed charset
func decodeText(raw []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// classifyError maps a client error onto the transport error taxonomy
func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ErrTimeout
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return models.ErrConnection
	}
	return models.ErrRequest
}
