package cost

import (
	"math"
	"sync"
	"testing"
	"time"
)

func TestCalculateCostCents(t *testing.T) {
	tests := []struct {
		name           string
		inputTokens    int
		outputTokens   int
		inputPrice     float64
		outputPrice    float64
		wantCents      uint64
	}{
		{
			name:        "reference prices",
			inputTokens: 1_000_000, outputTokens: 500_000,
			inputPrice: 3.0, outputPrice: 15.0,
			// 300 input cents + 750 output cents
			wantCents: 1050,
		},
		{
			name:        "small calls round to nearest cent",
			inputTokens: 1000, outputTokens: 500,
			inputPrice: 3.0, outputPrice: 15.0,
			// 0.3 rounds to 0, 0.75 rounds to 1
			wantCents: 1,
		},
		{
			name:        "zero tokens",
			inputTokens: 0, outputTokens: 0,
			inputPrice: 3.0, outputPrice: 15.0,
			wantCents: 0,
		},
		{
			name:        "input only",
			inputTokens: 2_000_000, outputTokens: 0,
			inputPrice: 1.0, outputPrice: 99.0,
			wantCents: 200,
		},
		{
			name:        "free model",
			inputTokens: 1_000_000, outputTokens: 1_000_000,
			inputPrice: 0, outputPrice: 0,
			wantCents: 0,
		},
		{
			name:        "negative tokens clamp to zero",
			inputTokens: -1_000_000, outputTokens: -500_000,
			inputPrice: 3.0, outputPrice: 15.0,
			wantCents: 0,
		},
		{
			name:        "negative input leaves output priced",
			inputTokens: -100, outputTokens: 500_000,
			inputPrice: 3.0, outputPrice: 15.0,
			wantCents: 750,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCostCents(tt.inputTokens, tt.outputTokens, tt.inputPrice, tt.outputPrice)
			if got != tt.wantCents {
				t.Errorf("CalculateCostCents = %d, want %d", got, tt.wantCents)
			}
		})
	}
}

func TestCalculateCostCentsAdditive(t *testing.T) {
	// Ten identical calls must cost exactly ten times one call.
	single := CalculateCostCents(100_000, 50_000, 3.0, 15.0)

	tracker := NewTracker(1000, 10000)
	for i := 0; i < 10; i++ {
		tracker.RecordUsage("gpt-4", 100_000, 50_000, 3.0, 15.0)
	}

	want := float64(10*single) / 100
	if got := tracker.DailySpent(); got != want {
		t.Errorf("DailySpent = %v, want %v after 10 identical calls", got, want)
	}
}

func TestNewTracker(t *testing.T) {
	tracker := NewTracker(10.0, 100.0)

	if tracker.DailyBudget() != 10.0 {
		t.Errorf("DailyBudget = %v, want 10", tracker.DailyBudget())
	}
	if tracker.MonthlyBudget() != 100.0 {
		t.Errorf("MonthlyBudget = %v, want 100", tracker.MonthlyBudget())
	}
	if tracker.DailySpent() != 0 || tracker.MonthlySpent() != 0 {
		t.Error("fresh tracker must show no spending")
	}
}

func TestRecordUsage(t *testing.T) {
	tracker := NewTracker(100.0, 1000.0)

	// 1M in at $3/1M plus 1M out at $15/1M is exactly $18.
	tracker.RecordUsage("gpt-4", 1_000_000, 1_000_000, 3.0, 15.0)

	if got := tracker.DailySpent(); math.Abs(got-18.0) > 1e-9 {
		t.Errorf("DailySpent = %v, want 18", got)
	}
	if got := tracker.MonthlySpent(); math.Abs(got-18.0) > 1e-9 {
		t.Errorf("MonthlySpent = %v, want 18", got)
	}
}

func TestBudgetBoundary(t *testing.T) {
	// One cent of budget; a one cent call reaches it exactly.
	tracker := NewTracker(0.01, 1000.0)

	if tracker.IsOverBudget() {
		t.Fatal("fresh tracker must not be over budget")
	}

	tracker.RecordUsage("gpt-4", 1_000_000, 0, 1.0, 0)

	if !tracker.IsOverBudget() {
		t.Error("reaching the budget exactly must count as over")
	}
	if !tracker.IsOverDailyBudget() {
		t.Error("daily budget must be reported over")
	}
	if tracker.IsOverMonthlyBudget() {
		t.Error("monthly budget must not be reported over")
	}
	if got := tracker.DailyRemaining(); got != 0 {
		t.Errorf("DailyRemaining = %v, want 0", got)
	}
}

func TestRemainingFloorsAtZero(t *testing.T) {
	tracker := NewTracker(0.01, 0.02)

	tracker.RecordUsage("gpt-4", 10_000_000, 0, 1.0, 0) // $10

	if got := tracker.DailyRemaining(); got != 0 {
		t.Errorf("DailyRemaining = %v, want 0 (never negative)", got)
	}
	if got := tracker.MonthlyRemaining(); got != 0 {
		t.Errorf("MonthlyRemaining = %v, want 0 (never negative)", got)
	}
}

func TestReport(t *testing.T) {
	tracker := NewTracker(100.0, 1000.0)

	tracker.RecordUsage("gpt-4", 1_000_000, 500_000, 3.0, 15.0)
	tracker.RecordUsage("claude-3", 500_000, 250_000, 8.0, 24.0)

	report := tracker.Report()

	if report.DailySpent <= 0 {
		t.Error("DailySpent must be positive after recording usage")
	}
	if report.DailyRemaining >= 100.0 {
		t.Errorf("DailyRemaining = %v, want less than the budget", report.DailyRemaining)
	}
	if _, ok := report.ByModel["gpt-4"]; !ok {
		t.Error("ByModel must include gpt-4")
	}
	if _, ok := report.ByModel["claude-3"]; !ok {
		t.Error("ByModel must include claude-3")
	}
	if math.Abs(report.DailySpent-(report.ByModel["gpt-4"]+report.ByModel["claude-3"])) > 1e-9 {
		t.Error("per-model spending must sum to the total")
	}
}

func TestUsageHistory(t *testing.T) {
	tracker := NewTracker(10.0, 100.0)

	tracker.RecordUsage("model-a", 100, 50, 1.0, 2.0)
	tracker.RecordUsageWithTask("model-b", 200, 100, 1.0, 2.0, "task-123")

	history := tracker.UsageHistory()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Model != "model-a" || history[1].Model != "model-b" {
		t.Errorf("history order = %q, %q", history[0].Model, history[1].Model)
	}
	if history[0].TaskID != "" {
		t.Errorf("untasked record TaskID = %q, want empty", history[0].TaskID)
	}
	if history[1].TaskID != "task-123" {
		t.Errorf("TaskID = %q, want task-123", history[1].TaskID)
	}
	if tracker.UsageCount() != 2 {
		t.Errorf("UsageCount = %d, want 2", tracker.UsageCount())
	}
}

func TestTotalTokens(t *testing.T) {
	tracker := NewTracker(10.0, 100.0)

	tracker.RecordUsage("model-a", 100, 50, 1.0, 2.0)
	tracker.RecordUsage("model-b", 200, 100, 1.0, 2.0)

	if got := tracker.TotalTokens(); got != 450 {
		t.Errorf("TotalTokens = %d, want 450", got)
	}
}

func TestConcurrentRecording(t *testing.T) {
	tracker := NewTracker(10_000, 100_000)

	// Each call is exactly 105 cents.
	const goroutines = 8
	const callsEach = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < callsEach; i++ {
				tracker.RecordUsage("gpt-4", 100_000, 50_000, 3.0, 15.0)
			}
		}()
	}
	wg.Wait()

	want := float64(goroutines*callsEach*105) / 100
	if got := tracker.DailySpent(); got != want {
		t.Errorf("DailySpent = %v, want exactly %v", got, want)
	}
	if tracker.UsageCount() != goroutines*callsEach {
		t.Errorf("UsageCount = %d, want %d", tracker.UsageCount(), goroutines*callsEach)
	}
}

func TestDailyRolloverResetsDailyOnly(t *testing.T) {
	current := time.Date(2026, time.March, 14, 23, 0, 0, 0, time.UTC)
	tracker := NewTracker(3.0, 1000)
	tracker.now = func() time.Time { return current }

	tracker.RecordUsage("model-a", 1_000_000, 0, 3.0, 0) // $3.00

	if !tracker.IsOverDailyBudget() {
		t.Fatal("daily budget must be reached before the rollover")
	}

	current = current.Add(2 * time.Hour) // past UTC midnight, same month

	if got := tracker.DailySpent(); got != 0 {
		t.Errorf("DailySpent after day change = %v, want 0", got)
	}
	if tracker.IsOverDailyBudget() {
		t.Error("daily budget must reopen after the rollover")
	}
	if got := tracker.MonthlySpent(); got != 3.0 {
		t.Errorf("MonthlySpent after day change = %v, want 3.0", got)
	}
	if got := tracker.Report().ByModel["model-a"]; got != 3.0 {
		t.Errorf("ByModel after day change = %v, want 3.0", got)
	}
	if got := len(tracker.UsageHistory()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
}

func TestMonthlyRolloverClearsModelBreakdown(t *testing.T) {
	current := time.Date(2026, time.March, 31, 23, 30, 0, 0, time.UTC)
	tracker := NewTracker(100, 1000)
	tracker.now = func() time.Time { return current }

	tracker.RecordUsage("model-a", 1_000_000, 0, 3.0, 0)  // $3.00
	tracker.RecordUsage("model-b", 0, 1_000_000, 0, 15.0) // $15.00

	current = time.Date(2026, time.April, 1, 0, 30, 0, 0, time.UTC)

	if got := tracker.DailySpent(); got != 0 {
		t.Errorf("DailySpent after month change = %v, want 0", got)
	}
	if got := tracker.MonthlySpent(); got != 0 {
		t.Errorf("MonthlySpent after month change = %v, want 0", got)
	}
	if got := len(tracker.Report().ByModel); got != 0 {
		t.Errorf("ByModel after month change has %d entries, want 0", got)
	}
	if got := len(tracker.UsageHistory()); got != 2 {
		t.Errorf("history length = %d, want 2", got)
	}

	tracker.RecordUsage("model-a", 1_000_000, 0, 3.0, 0)
	if got := tracker.MonthlySpent(); got != 3.0 {
		t.Errorf("MonthlySpent after new usage = %v, want 3.0", got)
	}
	if got := len(tracker.UsageHistory()); got != 3 {
		t.Errorf("history length after new usage = %d, want 3", got)
	}
}
