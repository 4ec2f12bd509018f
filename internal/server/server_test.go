package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stepgraph/pkg/buildinfo"
	"github.com/matzehuels/stepgraph/pkg/cache"
	"github.com/matzehuels/stepgraph/pkg/chart"
	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/flow/flowtest"
	"github.com/matzehuels/stepgraph/pkg/observability"
	"github.com/matzehuels/stepgraph/pkg/pipeline"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	ts := httptest.NewServer(New(runner, logger, opts...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postLayout(t *testing.T, ts *httptest.Server, query, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/layout"+query, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/layout: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestLayoutJSON(t *testing.T) {
	ts := newTestServer(t)
	resp := postLayout(t, ts, "", flowtest.BasicSplitJSON)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Graph-Hash") == "" {
		t.Error("X-Graph-Hash should be set")
	}

	data, _ := io.ReadAll(resp.Body)
	m, err := chart.Unmarshal(data)
	if err != nil {
		t.Fatalf("response is not a chart model: %v", err)
	}
	if m.Width != 440 || m.Height != 360 {
		t.Errorf("chart size = %vx%v, want 440x360", m.Width, m.Height)
	}
	if _, ok := m.Links["joinend"]; !ok {
		t.Errorf("links = %v, want joinend", m.LinkIDs())
	}
}

func TestLayoutFormats(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		query       string
		contentType string
		prefix      string
	}{
		{"?format=svg", "image/svg+xml", "<svg"},
		{"?format=dot&type=nodelink", "text/vnd.graphviz; charset=utf-8", "digraph G {"},
		{"?format=json&type=nodelink", "application/json", "{"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := postLayout(t, ts, tt.query, flowtest.BasicSplitJSON)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			data, _ := io.ReadAll(resp.Body)
			if !strings.HasPrefix(string(data), tt.prefix) {
				t.Errorf("body = %.40q, want prefix %q", data, tt.prefix)
			}
		})
	}
}

func TestLayoutQueryOptions(t *testing.T) {
	ts := newTestServer(t)
	resp := postLayout(t, ts, "?base_width=100&margin_x=10", flowtest.BasicSplitJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	m, err := chart.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	// two 100-wide branches and one 10px gap
	if m.Width != 210 {
		t.Errorf("width = %v, want 210", m.Width)
	}
}

func TestLayoutDefaults(t *testing.T) {
	payload, err := flow.MarshalGraph(flowtest.Linear())
	if err != nil {
		t.Fatal(err)
	}

	ts := newTestServer(t, WithDefaults(pipeline.Options{BaseHeight: 30}))
	resp := postLayout(t, ts, "", string(payload))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	m, err := chart.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	// end 30, a 30+(30+40), start 30+(100+40)
	if m.Width != 200 || m.Height != 170 {
		t.Errorf("chart size = %vx%v, want 200x170", m.Width, m.Height)
	}
}

func TestLayoutErrors(t *testing.T) {
	ts := newTestServer(t, WithMaxBodyBytes(1024))

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   apperrors.Code
	}{
		{"malformed json", "", `{`, http.StatusBadRequest, apperrors.ErrCodeInvalidGraph},
		{"missing start", "", `{"end": {"type": "end", "next": []}}`, http.StatusBadRequest, apperrors.ErrCodeMissingStart},
		{"unknown type", "", `{"start": {"type": "fork", "next": []}}`, http.StatusBadRequest, apperrors.ErrCodeUnknownStepType},
		{"unknown step", "", `{"start": {"type": "start", "next": ["ghost"]}}`, http.StatusBadRequest, apperrors.ErrCodeUnknownStep},
		{"cycle", "", `{"start": {"type": "start", "next": ["a"]}, "a": {"type": "linear", "next": ["start"]}}`, http.StatusBadRequest, apperrors.ErrCodeCyclicGraph},
		{"bad format", "?format=gif", flowtest.BasicSplitJSON, http.StatusBadRequest, apperrors.ErrCodeInvalidFormat},
		{"bad type", "?type=tower", flowtest.BasicSplitJSON, http.StatusBadRequest, apperrors.ErrCodeInvalidVizType},
		{"dot for chart", "?format=dot", flowtest.BasicSplitJSON, http.StatusBadRequest, apperrors.ErrCodeUnsupported},
		{"bad number", "?base_width=wide", flowtest.BasicSplitJSON, http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"too large", "", `{"start": {"type": "start", "next": [], "doc": "` + strings.Repeat("x", 2048) + `"}}`, http.StatusRequestEntityTooLarge, apperrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postLayout(t, ts, tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			e := decodeError(t, resp)
			if e.Code != tt.code {
				t.Errorf("code = %s, want %s (message %q)", e.Code, tt.code, e.Message)
			}
			if e.Message == "" {
				t.Error("message should not be empty")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("X-Request-ID = %q, want a uuid", resp.Header.Get(RequestIDHeader))
	}

	// A valid incoming id is echoed
	want := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, want)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != want {
		t.Errorf("X-Request-ID = %q, want %q", got, want)
	}

	// Error responses carry one too
	resp = postLayout(t, ts, "", "{")
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("error response should carry X-Request-ID")
	}
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil || health["status"] != "ok" {
		t.Errorf("healthz = %v, %v", health, err)
	}

	resp, err = http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var info buildinfo.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info != buildinfo.Get() {
		t.Errorf("version = %+v, want %+v", info, buildinfo.Get())
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != apperrors.ErrCodeNotFound {
		t.Errorf("code = %s, want NOT_FOUND", e.Code)
	}

	resp, err = http.Get(ts.URL + "/v1/layout")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
	errors   int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func (h *recordingHTTPHooks) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestHTTPHooks(t *testing.T) {
	observability.Reset()
	t.Cleanup(observability.Reset)
	h := &recordingHTTPHooks{}
	observability.SetHTTPHooks(h)

	ts := newTestServer(t)
	postLayout(t, ts, "", flowtest.BasicSplitJSON)
	postLayout(t, ts, "", "{")

	// OnResponse runs after the body is flushed, so wait for the server side.
	deadline := time.Now().Add(time.Second)
	for {
		h.mu.Lock()
		n := len(h.statuses)
		h.mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.statuses) != 2 || h.statuses[0] != http.StatusOK || h.statuses[1] != http.StatusBadRequest {
		t.Errorf("statuses = %v, want [200 400]", h.statuses)
	}
	if h.errors != 1 {
		t.Errorf("errors = %d, want 1", h.errors)
	}
}

func TestRunShutsDown(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
