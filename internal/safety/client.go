package safety

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second

	contentType = "application/json; charset=UTF-8"
	accept      = "application/json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is a single classification call.
type Request struct {
	Endpoint  string
	Text      string
	Threshold float64
}

type requestBody struct {
	Text      string  `json:"text"`
	Threshold float64 `json:"threshold"`
}

// Client posts texts to the safety service. Each call opens its own
// connection and makes exactly one attempt.
type Client struct {
	http        *http.Client
	readTimeout time.Duration
}

type clientOptions struct {
	connectTimeout time.Duration
	readTimeout    time.Duration
}

// Option customises a Client.
type Option func(*clientOptions)

// WithConnectTimeout bounds connection establishment.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.connectTimeout = d }
}

// WithReadTimeout bounds the wait for response headers and, separately, the
// read of the response body.
func WithReadTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.readTimeout = d }
}

// NewClient returns a Client with the default 10s connect and 30s read
// timeouts unless overridden.
func NewClient(opts ...Option) *Client {
	o := clientOptions{connectTimeout: DefaultConnectTimeout, readTimeout: DefaultReadTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	dialer := &net.Dialer{Timeout: o.connectTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   o.connectTimeout,
		ResponseHeaderTimeout: o.readTimeout,
		DisableKeepAlives:     true,
	}
	return &Client{
		http:        &http.Client{Transport: transport},
		readTimeout: o.readTimeout,
	}
}

// Classify sends one request and interprets the answer. It never returns an
// error: every failure is folded into the Outcome.
func (c *Client) Classify(ctx context.Context, req Request) Outcome {
	payload, err := json.Marshal(requestBody{Text: req.Text, Threshold: req.Threshold})
	if err != nil {
		return TransportFailed(0, fmt.Sprintf("encode request: %v", err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return TransportFailed(0, fmt.Sprintf("invalid service url: %v", err))
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", accept)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return TransportFailed(0, oneLine(err.Error()))
	}
	defer resp.Body.Close()

	var readTimedOut atomic.Bool
	watchdog := time.AfterFunc(c.readTimeout, func() {
		readTimedOut.Store(true)
		cancel()
	})
	raw, readErr := io.ReadAll(resp.Body)
	watchdog.Stop()

	if resp.StatusCode != http.StatusOK {
		// The body is diagnostic only; a failed read leaves what was received.
		return TransportFailed(resp.StatusCode, fmt.Sprintf("API returned HTTP %d: %s", resp.StatusCode, oneLine(string(raw))))
	}
	if readErr != nil {
		if readTimedOut.Load() {
			return TransportFailed(resp.StatusCode, fmt.Sprintf("read timeout after %s", c.readTimeout))
		}
		return TransportFailed(resp.StatusCode, fmt.Sprintf("read response: %s", oneLine(readErr.Error())))
	}
	return ParseResponse(raw)
}

// ParseResponse interprets a 200 body. is_safe must be a boolean and
// risk_score a number; risk_category is optional and null counts as absent.
func ParseResponse(raw []byte) Outcome {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Malformed(ReasonInvalidJSON, fmt.Sprintf("invalid JSON response: %s", oneLine(err.Error())))
	}
	isSafeV, ok := doc["is_safe"]
	if !ok || isSafeV == nil {
		return Malformed(ReasonMissingField, "missing field: is_safe")
	}
	isSafe, ok := isSafeV.(bool)
	if !ok {
		return Malformed(ReasonWrongType, "invalid type for field: is_safe (expected boolean)")
	}
	scoreV, ok := doc["risk_score"]
	if !ok || scoreV == nil {
		return Malformed(ReasonMissingField, "missing field: risk_score")
	}
	score, ok := scoreV.(float64)
	if !ok {
		return Malformed(ReasonWrongType, "invalid type for field: risk_score (expected number)")
	}
	category, err := categoryOf(doc["risk_category"])
	if err != nil {
		return Malformed(ReasonWrongType, err.Error())
	}
	return Succeeded(isSafe, category, score)
}

// categoryOf accepts any JSON scalar, rendering numbers and booleans as text.
func categoryOf(v any) (*string, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = x
	case bool:
		s = strconv.FormatBool(x)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return nil, errors.New("invalid type for field: risk_category (expected string)")
	}
	return &s, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
