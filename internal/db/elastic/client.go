// Package elastic talks to the Elasticsearch-compatible search engine over HTTP.
//
// It uses the bare elastic transport instead of the versioned client so that
// engines from 1.x on can be reached: the v8 client refuses servers that fail
// its product check.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/theduckylittle/registry/internal/db"
	"github.com/theduckylittle/registry/internal/domain"
	"github.com/theduckylittle/registry/internal/domain/catalog"
	"github.com/theduckylittle/registry/internal/domain/engine"
	"github.com/theduckylittle/registry/internal/metrics"
)

// Compile-time check: Client implements db.Engine.
var _ db.Engine = (*Client)(nil)

// Config holds connection parameters for the search engine.
type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
	// Transport overrides the HTTP round tripper (tests).
	Transport http.RoundTripper
}

// Client implements db.Engine on top of elastictransport.
type Client struct {
	tp      *elastictransport.Client
	baseURL string
	timeout time.Duration
}

// New creates a client. No request is made until the first call.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid search url %q", cfg.URL)
	}

	tp, err := elastictransport.New(elastictransport.Config{
		URLs:         []*url.URL{u},
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    cfg.Transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return &Client{
		tp:      tp,
		baseURL: strings.TrimRight(u.String(), "/"),
		timeout: cfg.Timeout,
	}, nil
}

// URL returns the configured engine endpoint.
func (c *Client) URL() string { return c.baseURL }

// Info probes the root endpoint and parses version.number.
func (c *Client) Info(ctx context.Context) (engine.Version, error) {
	body, err := c.expectOK(ctx, db.OpInfo, esapi.InfoRequest{})
	if err != nil {
		return engine.Version{}, err
	}

	var info struct {
		Version struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return engine.Version{}, &db.Error{Op: db.OpInfo, Err: fmt.Errorf("decode info: %w", err)}
	}
	v, err := engine.ParseVersion(info.Version.Number)
	if err != nil {
		return engine.Version{}, &db.Error{Op: db.OpInfo, Err: err}
	}
	return v, nil
}

// Search posts a compiled query to <endpoint>[/<index>]/_search.
// Engine-side errors are not interpreted here: the raw status and body are returned.
func (c *Client) Search(ctx context.Context, index string, body []byte) (*db.SearchResponse, error) {
	req := esapi.SearchRequest{Body: bytes.NewReader(body)}
	path := "/_search"
	if index != "" {
		req.Index = []string{index}
		path = "/" + index + "/_search"
	}

	res, err := c.perform(ctx, db.OpSearch, req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: read body: %v", domain.ErrEngineUnreachable, err)}
	}
	return &db.SearchResponse{URL: c.baseURL + path, Status: res.StatusCode, Body: raw}, nil
}

// CreateIndex creates an index with the given mapping. An existing index surfaces as the engine's conflict error.
func (c *Client) CreateIndex(ctx context.Context, name string, mapping map[string]any) error {
	body, err := json.Marshal(mapping)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("encode mapping: %w", err)}
	}
	_, err = c.expectOK(ctx, db.OpCreateIndex, esapi.IndicesCreateRequest{Index: name, Body: bytes.NewReader(body)})
	return err
}

// DeleteIndex removes an index. A missing index yields domain.ErrCatalogNotFound.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	_, err := c.expectOK(ctx, db.OpDeleteIndex, esapi.IndicesDeleteRequest{Index: []string{name}})
	return err
}

// Aliases lists index names from GET /_aliases, sorted.
func (c *Client) Aliases(ctx context.Context) ([]string, error) {
	body, err := c.expectOK(ctx, db.OpAliases, rawRequest{method: http.MethodGet, path: "/_aliases"})
	if err != nil {
		return nil, err
	}

	var aliases map[string]json.RawMessage
	if err := json.Unmarshal(body, &aliases); err != nil {
		return nil, &db.Error{Op: db.OpAliases, Err: fmt.Errorf("decode aliases: %w", err)}
	}
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// IndexDocument stores doc under id. Engines before 7.x get the "layer" type in the path.
func (c *Client) IndexDocument(ctx context.Context, v engine.Version, index, id string, doc map[string]any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return &db.Error{Op: db.OpIndexDoc, Err: fmt.Errorf("encode document: %w", err)}
	}

	var req esapi.Request = esapi.IndexRequest{Index: index, DocumentID: id, Body: bytes.NewReader(body)}
	if !v.Typeless() {
		req = rawRequest{
			method: http.MethodPut,
			path:   "/" + index + "/" + catalog.DocType + "/" + url.PathEscape(id),
			body:   body,
		}
	}
	_, err = c.expectOK(ctx, db.OpIndexDoc, req)
	return err
}

// expectOK performs req and returns the body of a 2xx response.
// Non-2xx responses become domain errors: 404 is ErrCatalogNotFound, anything else an EngineError.
func (c *Client) expectOK(ctx context.Context, op string, req esapi.Request) ([]byte, error) {
	res, err := c.perform(ctx, op, req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("%w: read body: %v", domain.ErrEngineUnreachable, err)}
	}

	switch {
	case res.StatusCode < http.StatusMultipleChoices:
		return body, nil
	case res.StatusCode == http.StatusNotFound && op != db.OpInfo:
		return nil, &db.Error{Op: op, Err: domain.ErrCatalogNotFound}
	default:
		return nil, &db.Error{Op: op, Err: domain.NewEngineError(res.StatusCode, body)}
	}
}

// perform runs one request with the configured timeout and records metrics.
func (c *Client) perform(ctx context.Context, op string, req esapi.Request) (*esapi.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		// The body is read by the caller; cancel only after it is closed.
		res, err := c.do(ctx, op, req)
		if err != nil {
			cancel()
			return nil, err
		}
		res.Body = &cancelOnClose{ReadCloser: res.Body, cancel: cancel}
		return res, nil
	}
	return c.do(ctx, op, req)
}

func (c *Client) do(ctx context.Context, op string, req esapi.Request) (*esapi.Response, error) {
	start := time.Now()
	res, err := req.Do(ctx, c.tp)
	metrics.EngineRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EngineRequestsTotal.WithLabelValues(op, "unreachable").Inc()
		return nil, &db.Error{Op: op, Err: fmt.Errorf("%w: %v", domain.ErrEngineUnreachable, err)}
	}
	metrics.EngineRequestsTotal.WithLabelValues(op, outcome(res.StatusCode)).Inc()
	return res, nil
}

func outcome(status int) string {
	switch {
	case status < http.StatusMultipleChoices:
		return "ok"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "rejected"
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close() //nolint:wrapcheck // delegating to the response body
}

// rawRequest covers endpoints esapi does not model for old engines (typed document paths, /_aliases).
type rawRequest struct {
	method string
	path   string
	body   []byte
}

func (r rawRequest) Do(ctx context.Context, transport esapi.Transport) (*esapi.Response, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := transport.Perform(req)
	if err != nil {
		return nil, fmt.Errorf("perform %s %s: %w", r.method, r.path, err)
	}
	return &esapi.Response{StatusCode: res.StatusCode, Header: res.Header, Body: res.Body}, nil
}
