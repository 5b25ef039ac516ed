package main

import (
	"flag"
	"math"
	"os"
	"testing"
	"time"
)

func withLoadtestCLIArgs(t *testing.T, args []string, fn func()) {
	t.Helper()

	oldArgs := os.Args
	oldCommandLine := flag.CommandLine

	os.Args = append([]string{"loadtest"}, args...)
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	defer func() {
		os.Args = oldArgs
		flag.CommandLine = oldCommandLine
	}()

	fn()
}

func TestParseConfig_Defaults(t *testing.T) {
	withLoadtestCLIArgs(t, []string{"-admin-user=admin@example.com", "-admin-pass=secreto"}, func() {
		cfg, err := parseConfig()
		if err != nil {
			t.Fatalf("parse config: %v", err)
		}
		if cfg.baseURL != "http://localhost:8080" {
			t.Errorf("unexpected base URL: %s", cfg.baseURL)
		}
		if cfg.total != 400 || cfg.concurrency != 20 {
			t.Errorf("unexpected defaults: total=%d concurrency=%d", cfg.total, cfg.concurrency)
		}
		if cfg.mode != modeOrder {
			t.Errorf("expected default mode order, got %s", cfg.mode)
		}
		if cfg.timeout != 5*time.Second {
			t.Errorf("expected default timeout 5s, got %s", cfg.timeout)
		}
	})
}

func TestParseConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"missing admin credentials", []string{}},
		{"zero total", []string{"-admin-user=a@b.c", "-admin-pass=x", "-total=0"}},
		{"bad mode", []string{"-admin-user=a@b.c", "-admin-pass=x", "-mode=delete-all"}},
		{"zero concurrency", []string{"-admin-user=a@b.c", "-admin-pass=x", "-concurrency=0"}},
		{"negative price", []string{"-admin-user=a@b.c", "-admin-pass=x", "-price=-1"}},
		{"zero quantity", []string{"-admin-user=a@b.c", "-admin-pass=x", "-quantity=0"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			withLoadtestCLIArgs(t, tc.args, func() {
				if _, err := parseConfig(); err == nil {
					t.Fatal("expected config error, got nil")
				}
			})
		})
	}
}

func TestParseMode(t *testing.T) {
	if mode, err := parseMode(" order "); err != nil || mode != modeOrder {
		t.Fatalf("expected order mode, got %v %v", mode, err)
	}
	if mode, err := parseMode("order-pay"); err != nil || mode != modeOrderPay {
		t.Fatalf("expected order-pay mode, got %v %v", mode, err)
	}
	if _, err := parseMode("cancel"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestDispatchJobs_CountMode(t *testing.T) {
	jobs := make(chan int, 16)
	dispatchJobs(jobs, config{total: 5})

	var got []int
	for id := range jobs {
		got = append(got, id)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 jobs, got %d", len(got))
	}
}

func TestDispatchJobs_DurationWithCap(t *testing.T) {
	jobs := make(chan int, 16)
	dispatchJobs(jobs, config{duration: time.Second, total: 3, totalSet: true})

	count := 0
	for range jobs {
		count++
	}
	if count != 3 {
		t.Fatalf("expected cap of 3 jobs, got %d", count)
	}
}

func TestBuildLatencySummary(t *testing.T) {
	summary := buildLatencySummary([]float64{4, 1, 3, 2})

	if summary.Min != 1 || summary.Max != 4 {
		t.Errorf("unexpected min/max: %+v", summary)
	}
	if summary.Avg != 2.5 {
		t.Errorf("expected avg 2.5, got %f", summary.Avg)
	}
	if summary.P50 != 2.5 {
		t.Errorf("expected p50 2.5, got %f", summary.P50)
	}
	if empty := buildLatencySummary(nil); empty != (latencySummary{}) {
		t.Errorf("expected zero summary for empty input, got %+v", empty)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	if got := percentile(sorted, 50); got != 3 {
		t.Errorf("expected p50 3, got %f", got)
	}
	if got := percentile(sorted, 100); got != 5 {
		t.Errorf("expected p100 5, got %f", got)
	}
	if got := percentile(sorted, 95); math.Abs(got-4.8) > 1e-9 {
		t.Errorf("expected p95 4.8, got %f", got)
	}
	if got := percentile([]float64{7}, 99); got != 7 {
		t.Errorf("expected single value 7, got %f", got)
	}
}

func TestRatio(t *testing.T) {
	if got := ratio(1, 4); got != 0.25 {
		t.Errorf("expected 0.25, got %f", got)
	}
	if got := ratio(1, 0); got != 0 {
		t.Errorf("expected 0 for empty total, got %f", got)
	}
}

func TestCollectorRecordsOutcomes(t *testing.T) {
	col := newCollector()
	col.record("create-order", 10*time.Millisecond, "201", true)
	col.record("create-order", 20*time.Millisecond, "400", false)
	col.record("scenario", 30*time.Millisecond, "ok", true)

	result := col.buildReport(time.Now(), time.Second)
	if result.TotalScenarios != 1 || result.SuccessScenarios != 1 {
		t.Fatalf("unexpected scenario counts: %+v", result)
	}

	endpoint, ok := result.Endpoints["create-order"]
	if !ok {
		t.Fatal("expected create-order endpoint in report")
	}
	if endpoint.Calls != 2 || endpoint.Success != 1 || endpoint.Failed != 1 {
		t.Fatalf("unexpected endpoint counts: %+v", endpoint)
	}
	if endpoint.Statuses["201"] != 1 || endpoint.Statuses["400"] != 1 {
		t.Fatalf("unexpected status breakdown: %+v", endpoint.Statuses)
	}
	if endpoint.ErrorRate != 0.5 {
		t.Fatalf("expected error rate 0.5, got %f", endpoint.ErrorRate)
	}
}
