// Package cost tracks LLM spending against daily and monthly budgets.
//
// All amounts are held internally in integer cents so that concurrent
// accumulation never drifts the way floating point sums do. The public
// surface accepts and returns dollars.
package cost

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

const centsPerDollar = 100.0

// UsageRecord describes a single metered API call.
type UsageRecord struct {
	// Timestamp is when the call was recorded, in UTC.
	Timestamp time.Time

	// Model is the model identifier the call was billed under.
	Model string

	// InputTokens is the number of prompt tokens consumed.
	InputTokens int

	// OutputTokens is the number of completion tokens generated.
	OutputTokens int

	// CostCents is the integer cost of the call in cents.
	CostCents uint64

	// TaskID associates the call with a generation task. Empty when the
	// call was not made on behalf of a task.
	TaskID string
}

// Report is a point-in-time summary of spending, in dollars.
type Report struct {
	// DailySpent is the amount spent today.
	DailySpent float64

	// DailyRemaining is the daily budget left, floored at zero.
	DailyRemaining float64

	// MonthlySpent is the amount spent this calendar month.
	MonthlySpent float64

	// MonthlyRemaining is the monthly budget left, floored at zero.
	MonthlyRemaining float64

	// ByModel breaks the month's spending down per model.
	ByModel map[string]float64
}

// Tracker meters spending against a daily and a monthly budget.
//
// Counters roll over lazily: every accessor first compares the current UTC
// day-of-year and calendar month against the ones it is tracking and resets
// the corresponding counters when they differ. No background timers are
// involved. A monthly rollover also clears the per-model breakdown; the
// usage history is never cleared.
//
// Reaching a budget exactly counts as over budget.
type Tracker struct {
	dailyBudgetCents   uint64
	monthlyBudgetCents uint64

	// now is the clock used for rollover decisions and record timestamps.
	now func() time.Time

	mu              sync.Mutex
	spentTodayCents uint64
	spentMonthCents uint64
	costByModel     map[string]uint64
	history         []UsageRecord
	trackingDay     int
	trackingMonth   time.Month
}

// NewTracker creates a tracker with budgets given in dollars.
func NewTracker(dailyBudget, monthlyBudget float64) *Tracker {
	now := time.Now().UTC()
	return &Tracker{
		dailyBudgetCents:   dollarsToCents(dailyBudget),
		monthlyBudgetCents: dollarsToCents(monthlyBudget),
		now:                time.Now,
		costByModel:        make(map[string]uint64),
		trackingDay:        now.YearDay(),
		trackingMonth:      now.Month(),
	}
}

// RecordUsage meters one API call. Prices are dollars per million tokens.
func (t *Tracker) RecordUsage(model string, inputTokens, outputTokens int, costPer1MInput, costPer1MOutput float64) {
	t.record(model, inputTokens, outputTokens, costPer1MInput, costPer1MOutput, "")
}

// RecordUsageWithTask meters one API call attributed to a task.
func (t *Tracker) RecordUsageWithTask(model string, inputTokens, outputTokens int, costPer1MInput, costPer1MOutput float64, taskID string) {
	t.record(model, inputTokens, outputTokens, costPer1MInput, costPer1MOutput, taskID)
}

func (t *Tracker) record(model string, inputTokens, outputTokens int, costPer1MInput, costPer1MOutput float64, taskID string) {
	costCents := CalculateCostCents(inputTokens, outputTokens, costPer1MInput, costPer1MOutput)
	now := t.now().UTC()

	t.mu.Lock()
	t.maybeResetLocked(now)
	t.spentTodayCents += costCents
	t.spentMonthCents += costCents
	t.costByModel[model] += costCents
	t.history = append(t.history, UsageRecord{
		Timestamp:    now,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostCents:    costCents,
		TaskID:       taskID,
	})
	t.mu.Unlock()

	slog.Debug("recorded LLM usage",
		"model", model,
		"input_tokens", inputTokens,
		"output_tokens", outputTokens,
		"cost_cents", costCents,
		"task_id", taskID,
	)
}

// IsOverBudget reports whether either the daily or the monthly budget has
// been reached.
func (t *Tracker) IsOverBudget() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maybeResetLocked(t.now().UTC())
	return t.spentTodayCents >= t.dailyBudgetCents || t.spentMonthCents >= t.monthlyBudgetCents
}

// IsOverDailyBudget reports whether the daily budget has been reached.
func (t *Tracker) IsOverDailyBudget() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maybeResetLocked(t.now().UTC())
	return t.spentTodayCents >= t.dailyBudgetCents
}

// IsOverMonthlyBudget reports whether the monthly budget has been reached.
func (t *Tracker) IsOverMonthlyBudget() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maybeResetLocked(t.now().UTC())
	return t.spentMonthCents >= t.monthlyBudgetCents
}

// DailySpent returns today's spending in dollars.
func (t *Tracker) DailySpent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maybeResetLocked(t.now().UTC())
	return centsToDollars(t.spentTodayCents)
}

// MonthlySpent returns this month's spending in dollars.
func (t *Tracker) MonthlySpent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maybeResetLocked(t.now().UTC())
	return centsToDollars(t.spentMonthCents)
}

// DailyRemaining returns the unspent daily budget in dollars, never negative.
func (t *Tracker) DailyRemaining() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maybeResetLocked(t.now().UTC())
	if t.spentTodayCents >= t.dailyBudgetCents {
		return 0
	}
	return centsToDollars(t.dailyBudgetCents - t.spentTodayCents)
}

// MonthlyRemaining returns the unspent monthly budget in dollars, never
// negative.
func (t *Tracker) MonthlyRemaining() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maybeResetLocked(t.now().UTC())
	if t.spentMonthCents >= t.monthlyBudgetCents {
		return 0
	}
	return centsToDollars(t.monthlyBudgetCents - t.spentMonthCents)
}

// Report returns a full spending summary.
func (t *Tracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maybeResetLocked(t.now().UTC())

	byModel := make(map[string]float64, len(t.costByModel))
	for model, cents := range t.costByModel {
		byModel[model] = centsToDollars(cents)
	}

	r := Report{
		DailySpent:   centsToDollars(t.spentTodayCents),
		MonthlySpent: centsToDollars(t.spentMonthCents),
		ByModel:      byModel,
	}
	if t.spentTodayCents < t.dailyBudgetCents {
		r.DailyRemaining = centsToDollars(t.dailyBudgetCents - t.spentTodayCents)
	}
	if t.spentMonthCents < t.monthlyBudgetCents {
		r.MonthlyRemaining = centsToDollars(t.monthlyBudgetCents - t.spentMonthCents)
	}
	return r
}

// UsageHistory returns a copy of every usage record, in insertion order.
func (t *Tracker) UsageHistory() []UsageRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]UsageRecord, len(t.history))
	copy(out, t.history)
	return out
}

// UsageCount returns the number of recorded calls.
func (t *Tracker) UsageCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history)
}

// TotalTokens returns the sum of input and output tokens across the history.
func (t *Tracker) TotalTokens() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total uint64
	for _, r := range t.history {
		total += uint64(r.InputTokens) + uint64(r.OutputTokens)
	}
	return total
}

// DailyBudget returns the configured daily budget in dollars.
func (t *Tracker) DailyBudget() float64 {
	return centsToDollars(t.dailyBudgetCents)
}

// MonthlyBudget returns the configured monthly budget in dollars.
func (t *Tracker) MonthlyBudget() float64 {
	return centsToDollars(t.monthlyBudgetCents)
}

// maybeResetLocked rolls the counters over when the UTC day or month has
// changed since the last access. Caller must hold the mutex.
func (t *Tracker) maybeResetLocked(now time.Time) {
	if day := now.YearDay(); day != t.trackingDay {
		t.spentTodayCents = 0
		t.trackingDay = day
		slog.Info("daily cost counter reset")
	}
	if month := now.Month(); month != t.trackingMonth {
		t.spentMonthCents = 0
		t.costByModel = make(map[string]uint64)
		t.trackingMonth = month
		slog.Info("monthly cost counter reset")
	}
}

// CalculateCostCents computes the integer cost in cents for a call.
// Prices are dollars per million tokens; each side rounds to the nearest
// cent before summing.
// Negative token counts are treated as zero.
func CalculateCostCents(inputTokens, outputTokens int, costPer1MInput, costPer1MOutput float64) uint64 {
	if inputTokens < 0 {
		inputTokens = 0
	}
	if outputTokens < 0 {
		outputTokens = 0
	}
	inputCents := math.Round(float64(inputTokens) / 1_000_000 * costPer1MInput * centsPerDollar)
	outputCents := math.Round(float64(outputTokens) / 1_000_000 * costPer1MOutput * centsPerDollar)
	return uint64(inputCents) + uint64(outputCents)
}

func dollarsToCents(dollars float64) uint64 {
	return uint64(math.Round(dollars * centsPerDollar))
}

func centsToDollars(cents uint64) float64 {
	return float64(cents) / centsPerDollar
}
