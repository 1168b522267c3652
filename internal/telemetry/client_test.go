package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/j-veylop/agentlens-tui/internal/models"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 2*time.Second), srv
}

func TestGetStory(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stories/latency" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("days") != "7" {
			t.Errorf("days = %q, want 7", r.URL.Query().Get("days"))
		}
		w.Write([]byte(`{
			"health_score": 72.5,
			"summary": "2 slow operations",
			"detail_table": [{"agent_name":"planner","operation":"draft","call_count":40,"avg_latency_ms":3100}],
			"chart_data": [{"label":"Mon","value":2100}],
			"top_offender": "c-42"
		}`))
	})
	defer srv.Close()

	out, err := c.GetStory(context.Background(), models.StoryLatency, models.Scope{Window: models.TimeRange7Days})
	if err != nil {
		t.Fatalf("GetStory() error = %v", err)
	}
	if out.HealthScore != 72.5 {
		t.Errorf("HealthScore = %v", out.HealthScore)
	}
	if len(out.DetailTable) != 1 || out.DetailTable[0].Operation != "draft" {
		t.Errorf("DetailTable = %+v", out.DetailTable)
	}
	if out.TopOffender != "c-42" {
		t.Errorf("TopOffender = %q", out.TopOffender)
	}
}

func TestGetStory_MalformedDataDegradesToZeroValues(t *testing.T) {
	// Missing every expected field: counts decode to 0, lists to empty.
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	out, err := c.GetStory(context.Background(), models.StoryCost, models.Scope{Window: models.TimeRange7Days})
	if err != nil {
		t.Fatalf("GetStory() error = %v", err)
	}
	if out.HealthScore != 0 || out.Summary != "" {
		t.Errorf("got %+v, want zero values", out)
	}
	if out.DetailTable == nil || out.ChartData == nil {
		t.Error("lists must degrade to empty, not nil")
	}
}

func TestGetCall_NotFound(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	defer srv.Close()

	_, err := c.GetCall(context.Background(), "missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if nf.Key != "missing" {
		t.Errorf("Key = %q", nf.Key)
	}
}

func TestGetCall_ServerError(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := c.GetCall(context.Background(), "c-1")
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want ServerError", err)
	}
	if se.Status != http.StatusBadGateway {
		t.Errorf("Status = %d", se.Status)
	}
}

func TestGetCall_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately closed

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetCall(context.Background(), "c-1")
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want ServerError", err)
	}
	if se.Status != 0 {
		t.Errorf("Status = %d, want 0 for transport failure", se.Status)
	}
}

func TestListCalls(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("operation") != "draft" || q.Get("agent") != "planner" || q.Get("limit") != "50" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`[{"call_id":"c-1","latency_ms":900},{"call_id":"c-2","latency_ms":4100}]`))
	})
	defer srv.Close()

	calls, err := c.ListCalls(context.Background(), ListCallsParams{
		Operation: "draft", Agent: "planner", Days: 7, Limit: 50,
	})
	if err != nil {
		t.Fatalf("ListCalls() error = %v", err)
	}
	if len(calls) != 2 || calls[1].CallID != "c-2" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestGetCacheGroup(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stories/cache/operations/planner/draft/groups/fp-9" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"pattern":{"group_id":"fp-9","cache_type":"exact","repeat_count":4,"wasted_cost":0.06},"calls":[{"call_id":"c-7"}]}`))
	})
	defer srv.Close()

	out, err := c.GetCacheGroup(context.Background(), "planner", "draft", "fp-9", models.Scope{Window: models.TimeRange30Days})
	if err != nil {
		t.Fatalf("GetCacheGroup() error = %v", err)
	}
	if out.Pattern.CacheType != models.CacheExact || len(out.Calls) != 1 {
		t.Errorf("payload = %+v", out)
	}
}
