package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestElastic(t *testing.T, fn roundTripFunc) *Elastic {
	t.Helper()
	e, err := newElastic(Config{URL: "http://es.test:9200"}, fn)
	require.NoError(t, err)
	return e
}

func TestElastic_OpenScan(t *testing.T) {
	var gotPath, gotScroll string
	var gotBody map[string]any

	e := newTestElastic(t, func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		gotScroll = r.URL.Query().Get("scroll")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		return jsonResponse(200, `{
			"_scroll_id": "scroll-1",
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_id": "a", "_source": {"key": 9007199254740993, "value": {"parentElementInstanceKey": 10}}},
					{"_id": "b"}
				]
			}
		}`), nil
	})

	q := Query{
		Index:    "zeebe-record_process-instance_*",
		Filter:   And(Term("partitionId", 1), Greater("position", int64(100))),
		Sort:     []SortField{{Field: "sequence"}},
		Fields:   []string{"key", "value.parentElementInstanceKey"},
		PageSize: 3000,
	}
	page, err := e.OpenScan(context.Background(), q, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "/zeebe-record_process-instance_*/_search", gotPath)
	assert.Equal(t, "60000ms", gotScroll)
	assert.EqualValues(t, 3000, gotBody["size"])
	assert.Equal(t, []any{"key", "value.parentElementInstanceKey"}, gotBody["_source"])
	assert.Equal(t, []any{map[string]any{"sequence": map[string]any{"order": "asc"}}}, gotBody["sort"])
	assert.Contains(t, gotBody, "query")

	assert.Equal(t, "scroll-1", page.ScrollID)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Records, 2)
	assert.Equal(t, json.Number("9007199254740993"), page.Records[0]["key"])
	ref, ok := page.Records[0].Lookup("value.parentElementInstanceKey")
	assert.True(t, ok)
	assert.Equal(t, json.Number("10"), ref)
	assert.NotNil(t, page.Records[1])
}

func TestElastic_OpenScan_InvalidQuery(t *testing.T) {
	e := newTestElastic(t, func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := e.OpenScan(context.Background(), Query{Index: "operate*"}, time.Minute)
	assert.ErrorIs(t, err, ErrQuery)
}

func TestElastic_AdvanceScan(t *testing.T) {
	var gotBody map[string]any
	e := newTestElastic(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/_search/scroll", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		return jsonResponse(200, `{"_scroll_id": "scroll-2", "hits": {"total": {"value": 2}, "hits": []}}`), nil
	})

	page, err := e.AdvanceScan(context.Background(), "scroll-1", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "scroll-1", gotBody["scroll_id"])
	assert.Equal(t, "30000ms", gotBody["scroll"])
	assert.Equal(t, "scroll-2", page.ScrollID)
	assert.True(t, page.Empty())
}

func TestElastic_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		err    error
		scroll bool
		want   error
	}{
		{
			name:   "Expired scroll context",
			status: 404,
			body:   `{"error": {"type": "search_context_missing_exception", "reason": "No search context found for id [1]"}}`,
			scroll: true,
			want:   ErrCursorExpired,
		},
		{
			name:   "Scroll not found",
			status: 404,
			body:   `{}`,
			scroll: true,
			want:   ErrCursorExpired,
		},
		{
			name:   "Malformed query",
			status: 400,
			body:   `{"error": {"type": "parsing_exception", "reason": "unknown query"}}`,
			want:   ErrQuery,
		},
		{
			name:   "Unknown index",
			status: 404,
			body:   `{"error": {"type": "index_not_found_exception", "reason": "no such index"}}`,
			want:   ErrQuery,
		},
		{
			name:   "Overloaded node",
			status: 429,
			body:   `{}`,
			want:   ErrBackendUnavailable,
		},
		{
			name:   "Unavailable cluster",
			status: 503,
			body:   `{}`,
			want:   ErrBackendUnavailable,
		},
		{
			name: "Connection refused",
			err:  errors.New("dial tcp: connection refused"),
			want: ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestElastic(t, func(r *http.Request) (*http.Response, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return jsonResponse(tt.status, tt.body), nil
			})

			var err error
			if tt.scroll {
				_, err = e.AdvanceScan(context.Background(), "scroll-1", time.Minute)
			} else {
				_, err = e.OpenScan(context.Background(), Query{Index: "operate*", PageSize: 10}, time.Minute)
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestElastic_CloseScan(t *testing.T) {
	var method string
	e := newTestElastic(t, func(r *http.Request) (*http.Response, error) {
		method = r.Method
		return jsonResponse(200, `{"succeeded": true, "num_freed": 1}`), nil
	})

	assert.NoError(t, e.CloseScan(context.Background(), "scroll-1"))
	assert.Equal(t, http.MethodDelete, method)
}

func TestElastic_Count(t *testing.T) {
	var gotBody map[string]any
	e := newTestElastic(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/zeebe-record_process-instance_*/_count", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		return jsonResponse(200, `{"count": 42}`), nil
	})

	n, err := e.Count(context.Background(), "zeebe-record_process-instance_*", Term("partitionId", 1))
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)
	assert.Equal(t, map[string]any{"term": map[string]any{"partitionId": float64(1)}}, gotBody["query"])
}

func TestElastic_Healthy(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"Named cluster", `{"cluster_name": "operate", "status": "green"}`, true},
		{"No cluster name", `{"status": "red"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestElastic(t, func(r *http.Request) (*http.Response, error) {
				assert.Equal(t, "/_cluster/health", r.URL.Path)
				return jsonResponse(200, tt.body), nil
			})
			ok, err := e.Healthy(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestElasticFilter(t *testing.T) {
	f := And(
		Term("partitionId", 1),
		Greater("position", 100),
		Exists("value.parentProcessInstanceKey"),
		Not(Term("value.parentProcessInstanceKey", -1)),
	)

	got, err := elasticFilter(f)
	require.NoError(t, err)

	want := map[string]any{"bool": map[string]any{"must": []any{
		map[string]any{"term": map[string]any{"partitionId": 1}},
		map[string]any{"range": map[string]any{"position": map[string]any{"gt": 100}}},
		map[string]any{"exists": map[string]any{"field": "value.parentProcessInstanceKey"}},
		map[string]any{"bool": map[string]any{"must_not": []any{
			map[string]any{"term": map[string]any{"value.parentProcessInstanceKey": -1}},
		}}},
	}}}
	assert.Equal(t, want, got)
}

func TestElasticFilter_EmptyRange(t *testing.T) {
	_, err := elasticFilter(RangeFilter{Field: "position"})
	assert.ErrorIs(t, err, ErrQuery)
}

func TestNewTransport_Certificate(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := newTransport(Config{CertificatePath: t.TempDir() + "/missing.pem", VerifyHostname: true})
		assert.Error(t, err)
	})

	t.Run("No hostname verification", func(t *testing.T) {
		tr, err := newTransport(Config{VerifyHostname: false})
		require.NoError(t, err)
		assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
		assert.NotNil(t, tr.TLSClientConfig.VerifyConnection)
	})
}
