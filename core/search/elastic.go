package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// Elastic implements Client and HealthChecker on top of the official Elasticsearch client.
type Elastic struct {
	es *elasticsearch.Client
}

// NewElastic creates an Elasticsearch-backed client based on the configuration.
// The connection is lazy; use Healthy to verify the cluster is reachable.
func NewElastic(cfg Config, logger *zap.Logger) (*Elastic, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Username == "" || cfg.Password == "" {
		logger.Warn("Username and/or password are empty, basic authentication is not used")
	}
	return newElastic(cfg, transport)
}

func newElastic(cfg Config, transport http.RoundTripper) (*Elastic, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
		// Retries belong to the connectivity check, never to individual scan requests.
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Elastic{es: es}, nil
}

// newTransport builds an HTTP transport with strict timeouts and the configured trust material.
func newTransport(cfg Config) (*http.Transport, error) {
	connectTimeout := seconds(cfg.ConnectTimeoutSeconds)
	socketTimeout := seconds(cfg.SocketTimeoutSeconds)

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CertificatePath != "" {
		pool, err := loadCertificate(cfg.CertificatePath)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}
	if !cfg.VerifyHostname {
		// Chain verification still happens, only the hostname check is skipped.
		roots := tlsConfig.RootCAs
		tlsConfig.InsecureSkipVerify = true
		tlsConfig.VerifyConnection = func(cs tls.ConnectionState) error {
			if len(cs.PeerCertificates) == 0 {
				return errors.New("server presented no certificate")
			}
			opts := x509.VerifyOptions{Roots: roots, Intermediates: x509.NewCertPool()}
			for _, cert := range cs.PeerCertificates[1:] {
				opts.Intermediates.AddCert(cert)
			}
			_, err := cs.PeerCertificates[0].Verify(opts)
			return err
		}
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   connectTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: socketTimeout,
		TLSClientConfig:       tlsConfig,
	}, nil
}

func loadCertificate(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not load server certificate %s: %w", path, err)
	}
	if len(bytes.TrimSpace(pem)) == 0 {
		return nil, fmt.Errorf("could not load server certificate, file is empty: %s", path)
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no PEM certificate found in %s", path)
	}
	return pool, nil
}

func seconds(n int) time.Duration {
	if n <= 0 {
		n = 30
	}
	return time.Duration(n) * time.Second
}

// Count returns the number of documents matching filter.
func (e *Elastic) Count(ctx context.Context, index string, filter Filter) (int64, error) {
	opts := []func(*esapi.CountRequest){
		e.es.Count.WithContext(ctx),
		e.es.Count.WithIndex(splitIndex(index)...),
	}
	if filter != nil {
		query, err := elasticFilter(filter)
		if err != nil {
			return 0, err
		}
		body, err := json.Marshal(map[string]any{"query": query})
		if err != nil {
			return 0, fmt.Errorf("%w: failed to encode count request: %v", ErrQuery, err)
		}
		opts = append(opts, e.es.Count.WithBody(bytes.NewReader(body)))
	}

	res, err := e.es.Count(opts...)
	var out struct {
		Count int64 `json:"count"`
	}
	if err := decodeResponse("count", res, err, false, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// OpenScan starts a scroll search and returns the first page.
func (e *Elastic) OpenScan(ctx context.Context, q Query, keepAlive time.Duration) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}
	body, err := searchBody(q)
	if err != nil {
		return Page{}, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Page{}, fmt.Errorf("%w: failed to encode search request: %v", ErrQuery, err)
	}

	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(splitIndex(q.Index)...),
		e.es.Search.WithBody(bytes.NewReader(payload)),
		e.es.Search.WithScroll(keepAlive),
	)
	return decodePage("search", res, err, false)
}

// AdvanceScan fetches the next page of a scroll.
func (e *Elastic) AdvanceScan(ctx context.Context, scrollID string, keepAlive time.Duration) (Page, error) {
	payload, err := json.Marshal(map[string]any{
		"scroll":    fmt.Sprintf("%dms", keepAlive.Milliseconds()),
		"scroll_id": scrollID,
	})
	if err != nil {
		return Page{}, fmt.Errorf("%w: failed to encode scroll request: %v", ErrQuery, err)
	}

	res, err := e.es.Scroll(
		e.es.Scroll.WithContext(ctx),
		e.es.Scroll.WithBody(bytes.NewReader(payload)),
	)
	return decodePage("scroll", res, err, true)
}

// CloseScan clears a scroll.
func (e *Elastic) CloseScan(ctx context.Context, scrollID string) error {
	res, err := e.es.ClearScroll(
		e.es.ClearScroll.WithContext(ctx),
		e.es.ClearScroll.WithScrollID(scrollID),
	)
	return decodeResponse("clear scroll", res, err, true, nil)
}

// Healthy reports whether the cluster answers the health endpoint with a cluster name.
func (e *Elastic) Healthy(ctx context.Context) (bool, error) {
	res, err := e.es.Cluster.Health(e.es.Cluster.Health.WithContext(ctx))
	var out struct {
		ClusterName string `json:"cluster_name"`
		Status      string `json:"status"`
	}
	if err := decodeResponse("cluster health", res, err, false, &out); err != nil {
		return false, err
	}
	return out.ClusterName != "", nil
}

type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string `json:"_id"`
			Source Record `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

func decodePage(op string, res *esapi.Response, err error, scroll bool) (Page, error) {
	var out searchResponse
	if err := decodeResponse(op, res, err, scroll, &out); err != nil {
		return Page{}, err
	}
	page := Page{
		ScrollID:     out.ScrollID,
		Total:        out.Hits.Total.Value,
		Aggregations: out.Aggregations,
		Records:      make([]Record, 0, len(out.Hits.Hits)),
	}
	for _, hit := range out.Hits.Hits {
		rec := hit.Source
		if rec == nil {
			rec = Record{}
		}
		page.Records = append(page.Records, rec)
	}
	return page, nil
}

// decodeResponse maps transport and status failures onto the error taxonomy and decodes
// a successful body into out. Numbers are kept as json.Number so 64-bit keys stay exact.
func decodeResponse(op string, res *esapi.Response, err error, scroll bool, out any) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrBackendUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return statusError(op, res, scroll)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func statusError(op string, res *esapi.Response, scroll bool) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	var body struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)
	reason := body.Error.Reason
	if reason == "" {
		reason = strings.TrimSpace(string(raw))
	}

	kind := ErrQuery
	switch {
	case body.Error.Type == "search_context_missing_exception":
		kind = ErrCursorExpired
	case scroll && res.StatusCode == http.StatusNotFound:
		kind = ErrCursorExpired
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		kind = ErrBackendUnavailable
	}
	return fmt.Errorf("%s: %w: status %d: %s", op, kind, res.StatusCode, reason)
}

func splitIndex(pattern string) []string {
	var out []string
	for _, part := range strings.Split(pattern, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func searchBody(q Query) (map[string]any, error) {
	body := map[string]any{"size": q.PageSize}
	if q.Filter != nil {
		query, err := elasticFilter(q.Filter)
		if err != nil {
			return nil, err
		}
		body["query"] = query
	}
	if len(q.Sort) > 0 {
		sorts := make([]any, 0, len(q.Sort))
		for _, s := range q.Sort {
			order := "asc"
			if s.Desc {
				order = "desc"
			}
			sorts = append(sorts, map[string]any{s.Field: map[string]any{"order": order}})
		}
		body["sort"] = sorts
	}
	if len(q.Fields) > 0 {
		body["_source"] = q.Fields
	}
	if len(q.Aggregations) > 0 {
		body["aggs"] = q.Aggregations
	}
	return body, nil
}

// elasticFilter translates a Filter tree into Elasticsearch query DSL.
func elasticFilter(f Filter) (map[string]any, error) {
	switch v := f.(type) {
	case AndFilter:
		must := make([]any, 0, len(v.Filters))
		for _, child := range v.Filters {
			q, err := elasticFilter(child)
			if err != nil {
				return nil, err
			}
			must = append(must, q)
		}
		return map[string]any{"bool": map[string]any{"must": must}}, nil
	case TermFilter:
		return map[string]any{"term": map[string]any{v.Field: v.Value}}, nil
	case TermsFilter:
		return map[string]any{"terms": map[string]any{v.Field: v.Values}}, nil
	case RangeFilter:
		bounds := map[string]any{}
		for name, bound := range map[string]any{"gt": v.Gt, "gte": v.Gte, "lt": v.Lt, "lte": v.Lte} {
			if bound != nil {
				bounds[name] = bound
			}
		}
		if len(bounds) == 0 {
			return nil, fmt.Errorf("%w: range on %s has no bounds", ErrQuery, v.Field)
		}
		return map[string]any{"range": map[string]any{v.Field: bounds}}, nil
	case ExistsFilter:
		return map[string]any{"exists": map[string]any{"field": v.Field}}, nil
	case NotFilter:
		inner, err := elasticFilter(v.Filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"bool": map[string]any{"must_not": []any{inner}}}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported filter %T", ErrQuery, f)
	}
}
