package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hb9tf/rfiscan/metrics"
)

func TestWriteMetricsBeforeExit(t *testing.T) {
	old := *metricsFile
	defer func() { *metricsFile = old }()

	rec := metrics.New()
	rec.RecordSlot(metrics.SlotMissing)

	*metricsFile = ""
	writeMetrics(rec)

	*metricsFile = filepath.Join(t.TempDir(), "rfiscan.prom")
	writeMetrics(rec)
	b, err := os.ReadFile(*metricsFile)
	if err != nil {
		t.Fatalf("metrics file not written: %s", err)
	}
	if !strings.Contains(string(b), `rfiscan_slots_total{state="missing"} 1`) {
		t.Errorf("metrics file lacks the missing slot counter:\n%s", b)
	}
}
