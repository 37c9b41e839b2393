// Package transport implements GraphQL over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Transport = (*Client)(nil)

// maxErrorBody bounds how much of a failed response body is attached to errors.
const maxErrorBody = 512

// Client implements ports.Transport with JSON POST requests.
type Client struct {
	endpoint   string
	headers    map[string]string
	httpClient *http.Client
}

// New creates a Client for the endpoint and headers in cfg.
func New(cfg domain.Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}
	return NewWithClient(cfg, &http.Client{Timeout: timeout})
}

// NewWithClient creates a Client sending requests through client.
func NewWithClient(cfg domain.Config, client *http.Client) *Client {
	return &Client{
		endpoint:   cfg.Endpoint,
		headers:    cfg.Headers,
		httpClient: client,
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// GraphQLError is one entry of a response errors list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Execute posts document and variables to the endpoint and returns the response data.
// Numbers in the data are decoded as json.Number.
func (c *Client) Execute(ctx context.Context, document string, variables map[string]any) (any, error) {
	if c.endpoint == "" {
		return nil, zerr.Wrap(domain.ErrNoEndpoint, "execute operation")
	}

	body, err := json.Marshal(request{Query: document, Variables: variables})
	if err != nil {
		return nil, zerr.Wrap(domain.ErrTransportFailed, "encode request: "+err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrTransportFailed, err.Error()), "endpoint", c.endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/graphql-response+json, application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrTransportFailed, err.Error()), "endpoint", c.endpoint)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := zerr.With(zerr.Wrap(domain.ErrTransportFailed, "unexpected status"), "status_code", resp.StatusCode)
		return nil, zerr.With(apiErr, "body", strings.TrimSpace(string(snippet)))
	}

	var decoded response
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrTransportFailed, "decode response: "+err.Error()), "endpoint", c.endpoint)
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, len(decoded.Errors))
		for i, e := range decoded.Errors {
			messages[i] = e.Message
		}
		gqlErr := zerr.With(zerr.Wrap(domain.ErrGraphQLErrors, strings.Join(messages, "; ")), "errors", len(decoded.Errors))
		return nil, zerr.With(gqlErr, "endpoint", c.endpoint)
	}

	return decoded.Data, nil
}
