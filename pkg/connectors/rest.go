package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

// RESTConnector routes tool calls to an external HTTP service: the tool name
// becomes the path segment, arguments travel as a JSON body (POST) or query
// parameters (GET). One connector instance serves every tool bound to it.
type RESTConnector struct {
	baseURL string
	method  string
	headers map[string]string
	client  *http.Client
}

// RESTOption configures a RESTConnector.
type RESTOption func(*RESTConnector)

// WithRESTMethod sets the HTTP method, POST by default.
func WithRESTMethod(method string) RESTOption {
	return func(c *RESTConnector) { c.method = strings.ToUpper(method) }
}

// WithRESTHeaders sets headers applied to every request.
func WithRESTHeaders(headers map[string]string) RESTOption {
	return func(c *RESTConnector) { c.headers = headers }
}

// WithRESTClient overrides the HTTP client.
func WithRESTClient(client *http.Client) RESTOption {
	return func(c *RESTConnector) { c.client = client }
}

// NewRESTConnector creates a connector for the given service base URL.
func NewRESTConnector(baseURL string, opts ...RESTOption) *RESTConnector {
	c := &RESTConnector{
		baseURL: strings.TrimRight(baseURL, "/"),
		method:  http.MethodPost,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute calls <baseURL>/<tool name> and decodes the JSON response.
func (c *RESTConnector) Execute(ctx context.Context, contract core.Contract, args map[string]any, timeout time.Duration) (any, error) {
	endpoint := c.baseURL + "/" + contract.Name

	var req *http.Request
	var err error
	switch c.method {
	case http.MethodPost:
		body, marshalErr := json.Marshal(args)
		if marshalErr != nil {
			return nil, errors.New(errors.CodeToolFailure, "encode request body", marshalErr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	case http.MethodGet:
		query := url.Values{}
		for key, value := range args {
			query.Set(key, fmt.Sprintf("%v", value))
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	default:
		return nil, errors.Newf(errors.CodeToolFailure, "unsupported HTTP method: %s", c.method)
	}
	if err != nil {
		return nil, errors.New(errors.CodeToolFailure, "build request", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.New(errors.CodeToolFailure, "REST call failed", err).WithRecoverable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Newf(errors.CodeToolFailure, "REST call returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body))).WithRecoverable(resp.StatusCode >= 500)
	}

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.New(errors.CodeToolFailure, "decode response", err)
	}
	return decoded, nil
}

// Health probes the service root.
func (c *RESTConnector) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// Shutdown closes idle connections.
func (c *RESTConnector) Shutdown(ctx context.Context) error {
	c.client.CloseIdleConnections()
	return nil
}
