package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveConversion(t *testing.T) {
	c := NewCollector()

	c.ObserveConversion("pytorch", OutcomeSuccess, 2048, 150*time.Millisecond)
	c.ObserveConversion("pytorch", OutcomeSuccess, 4096, 90*time.Millisecond)
	c.ObserveConversion("sklearn", OutcomeRejected, 512, 5*time.Millisecond)

	got := testutil.ToFloat64(c.conversions.WithLabelValues("pytorch", OutcomeSuccess))
	if got != 2 {
		t.Fatalf("pytorch/success count = %v, want 2", got)
	}
	got = testutil.ToFloat64(c.conversions.WithLabelValues("sklearn", OutcomeRejected))
	if got != 1 {
		t.Fatalf("sklearn/rejected count = %v, want 1", got)
	}

	// One duration series per format seen.
	if n := testutil.CollectAndCount(c.duration); n != 2 {
		t.Fatalf("duration series = %d, want 2", n)
	}
}

func TestObserveRateLimited(t *testing.T) {
	c := NewCollector()
	c.ObserveRateLimited()
	c.ObserveRateLimited()
	if got := testutil.ToFloat64(c.rateLimited); got != 2 {
		t.Fatalf("rate limited count = %v, want 2", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.ObserveConversion("tensorflow", OutcomeFailed, 1024, time.Second)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	text := string(body)
	for _, want := range []string{
		`onnxgate_conversions_total{format="tensorflow",outcome="failed"} 1`,
		"onnxgate_conversion_duration_seconds_bucket",
		"onnxgate_payload_bytes_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("exposition missing %q", want)
		}
	}
}
