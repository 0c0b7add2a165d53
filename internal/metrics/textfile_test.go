package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/torosent/apiperf/internal/metrics"
)

func TestWriteTextfile(t *testing.T) {
	stats, err := metrics.Aggregate([]metrics.TestResult{
		ok(10),
		ok(30),
		metrics.FailureResult(2, "transport", "execute failed"),
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "apiperf.prom")
	if err := metrics.WriteTextfile(path, stats, "01HRUN", "http://localhost/api"); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)

	wants := []string{
		`apiperf_requests{outcome="ok",run_id="01HRUN",target="http://localhost/api"} 2`,
		`apiperf_requests{outcome="ng",run_id="01HRUN",target="http://localhost/api"} 1`,
		`apiperf_operate_time_milliseconds{run_id="01HRUN",stat="worst",target="http://localhost/api"} 30`,
		`apiperf_status_codes{code="400",run_id="01HRUN",target="http://localhost/api"} 1`,
		`apiperf_ok_percent{run_id="01HRUN",target="http://localhost/api"} 66.67`,
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q\n%s", want, out)
		}
	}
}
