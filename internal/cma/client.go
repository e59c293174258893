// Package cma is a small client for the Content Management API of a hosted
// content-management service. It covers the content type calls needed to
// bootstrap a space: list, create, fetch, and publish.
package cma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"lingua/cmsinit/internal/breaker"
	"lingua/cmsinit/internal/config"
)

const (
	mediaType = "application/vnd.contentful.management.v1+json"

	// pageSize is the number of content types requested per list page.
	pageSize = 100

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client talks to the management API for a single environment, with a
// circuit breaker around every outbound call.
type Client struct {
	baseURL     string
	environment string
	token       string
	cb          *gobreaker.CircuitBreaker
	httpDo      func(req *http.Request) (*http.Response, error)
}

// NewClient constructs a Client. No HTTP calls are made at construction time.
func NewClient(cfg config.ManagementConfig, cb *gobreaker.CircuitBreaker) *Client {
	hc := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		environment: cfg.Environment,
		token:       cfg.Token,
		cb:          cb,
		httpDo:      hc.Do,
	}
}

// ListContentTypes returns every content type defined in the space, following
// pagination until the reported total has been read.
func (c *Client) ListContentTypes(ctx context.Context, spaceID string) ([]ContentType, error) {
	var all []ContentType

	err := c.execute(func() error {
		all = all[:0]
		skip := 0
		for {
			q := url.Values{}
			q.Set("skip", strconv.Itoa(skip))
			q.Set("limit", strconv.Itoa(pageSize))

			var page contentTypeCollection
			if err := c.do(ctx, http.MethodGet, c.collectionPath(spaceID), q, nil, nil, &page); err != nil {
				return err
			}
			all = append(all, page.Items...)

			skip += len(page.Items)
			if len(page.Items) == 0 || skip >= page.Total {
				return nil
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("listing content types in space %s: %w", spaceID, err)
	}
	return all, nil
}

// FetchContentType returns the content type with the given id. A missing
// content type yields an error matching ErrNotFound.
func (c *Client) FetchContentType(ctx context.Context, spaceID, id string) (ContentType, error) {
	var ct ContentType
	err := c.execute(func() error {
		return c.do(ctx, http.MethodGet, c.itemPath(spaceID, id), nil, nil, nil, &ct)
	})
	if err != nil {
		return ContentType{}, fmt.Errorf("fetching content type %s: %w", id, err)
	}
	return ct, nil
}

// PublishContentType publishes the given revision of a content type. ct must
// carry the id and version returned by the API; a content type that is
// already published at its current version is rejected with
// ErrAlreadyPublished without calling the API.
func (c *Client) PublishContentType(ctx context.Context, spaceID string, ct ContentType) (ContentType, error) {
	if ct.Sys.ID == "" {
		return ContentType{}, fmt.Errorf("publishing content type %q: missing sys.id", ct.Name)
	}
	if ct.IsPublishedAtCurrentVersion() {
		return ContentType{}, fmt.Errorf("publishing content type %s: %w", ct.Sys.ID, ErrAlreadyPublished)
	}

	headers := http.Header{}
	headers.Set("X-Contentful-Version", strconv.Itoa(ct.Sys.Version))

	var published ContentType
	err := c.execute(func() error {
		return c.do(ctx, http.MethodPut, c.itemPath(spaceID, ct.Sys.ID)+"/published", nil, nil, headers, &published)
	})
	if err != nil {
		return ContentType{}, fmt.Errorf("publishing content type %s: %w", ct.Sys.ID, err)
	}
	return published, nil
}

// Probe checks that the management API is reachable and accepts the
// configured token by reading a single content type page.
func (c *Client) Probe(ctx context.Context, spaceID string) error {
	return c.execute(func() error {
		q := url.Values{}
		q.Set("limit", "1")
		return c.do(ctx, http.MethodGet, c.collectionPath(spaceID), q, nil, nil, nil)
	})
}

func (c *Client) execute(fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return breaker.Err(err)
}

func (c *Client) collectionPath(spaceID string) string {
	return fmt.Sprintf("/spaces/%s/environments/%s/content_types",
		url.PathEscape(spaceID), url.PathEscape(c.environment))
}

func (c *Client) itemPath(spaceID, id string) string {
	return c.collectionPath(spaceID) + "/" + url.PathEscape(id)
}

// do sends one request. body, when non-nil, is JSON encoded. out, when
// non-nil, receives the decoded 2xx response. Non-2xx responses become
// *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, headers http.Header, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building request for %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", mediaType)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpDo(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(method, path, resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(method, path string, resp *http.Response) error {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("X-Contentful-Request-Id"),
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var eb errorBody
	if len(raw) > 0 && json.Unmarshal(raw, &eb) == nil {
		apiErr.ID = eb.Sys.ID
		apiErr.Message = eb.Message
		if eb.RequestID != "" {
			apiErr.RequestID = eb.RequestID
		}
	}
	return apiErr
}
