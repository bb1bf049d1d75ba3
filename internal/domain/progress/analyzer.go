package progress

import (
	"errors"
	"math"
	"time"
)

// ErrNoProgressData is returned when a client has no entries to analyze.
// It is distinct from an analysis with zero progress.
var ErrNoProgressData = errors.New("no progress data available")

// Trend of the most recent entries.
type Trend string

const (
	TrendLosing  Trend = "losing"
	TrendGaining Trend = "gaining"
	TrendStable  Trend = "stable"
)

// Direction the client needs to move to reach the goal.
type Direction string

const (
	DirectionLoss        Direction = "loss"
	DirectionGain        Direction = "gain"
	DirectionMaintenance Direction = "maintenance"
)

const (
	trendThreshold    = 0.5
	rateWindow        = 4
	consistencyTarget = 12
	defaultWeeks      = 4
	rateEpsilon       = 1e-3
)

// Input of an analysis. Entries may be in any order.
type Input struct {
	Entries        []Entry
	GoalWeight     float64
	StartingWeight *float64
	Now            time.Time
}

// Milestone is the next intermediate target toward the goal.
type Milestone struct {
	Target        float64   `json:"target"`
	Increment     float64   `json:"increment"`
	Weeks         int       `json:"weeks"`
	EstimatedDate time.Time `json:"estimatedDate"`
}

// Effectiveness is the blended score and its clamped components.
type Effectiveness struct {
	Score       float64 `json:"score"`
	Progress    float64 `json:"progress"`
	Consistency float64 `json:"consistency"`
	Stability   float64 `json:"stability"`
}

// Analysis is the result of analyzing one client's history.
type Analysis struct {
	EntryCount         int           `json:"entryCount"`
	StartingWeight     float64       `json:"startingWeight"`
	CurrentWeight      float64       `json:"currentWeight"`
	GoalWeight         float64       `json:"goalWeight"`
	Trend              Trend         `json:"trend"`
	WeeklyRate         float64       `json:"weeklyRate"`
	ProgressPercentage float64       `json:"progressPercentage"`
	Direction          Direction     `json:"direction"`
	NextMilestone      *Milestone    `json:"nextMilestone,omitempty"`
	Effectiveness      Effectiveness `json:"effectiveness"`
}

// Analyze computes trend, rate, progress, next milestone and effectiveness.
func Analyze(in Input) (*Analysis, error) {
	if len(in.Entries) == 0 {
		return nil, ErrNoProgressData
	}

	entries := make([]Entry, len(in.Entries))
	copy(entries, in.Entries)
	SortNewestFirst(entries)

	weights := make([]float64, len(entries))
	for i, e := range entries {
		weights[i] = e.Weight
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	current := weights[0]
	start := weights[len(weights)-1]
	if in.StartingWeight != nil {
		start = *in.StartingWeight
	}

	a := &Analysis{
		EntryCount:     len(entries),
		StartingWeight: start,
		CurrentWeight:  current,
		GoalWeight:     in.GoalWeight,
		Trend:          TrendOf(weights),
		WeeklyRate:     WeeklyRate(weights),
		Direction:      DirectionOf(current, in.GoalWeight),
	}
	a.ProgressPercentage = ProgressPercentage(current, start, in.GoalWeight)
	a.NextMilestone = NextMilestone(current, in.GoalWeight, a.WeeklyRate, now)
	a.Effectiveness = EffectivenessScore(a.ProgressPercentage, weights)

	return a, nil
}

// TrendOf compares the newest weight with the third newest.
func TrendOf(newestFirst []float64) Trend {
	if len(newestFirst) < 3 {
		return TrendStable
	}
	diff := newestFirst[0] - newestFirst[2]
	switch {
	case diff > trendThreshold:
		return TrendGaining
	case diff < -trendThreshold:
		return TrendLosing
	default:
		return TrendStable
	}
}

// WeeklyRate is the average change per entry over the newest four entries.
// Negative values mean weight is going down.
func WeeklyRate(newestFirst []float64) float64 {
	n := len(newestFirst)
	if n > rateWindow {
		n = rateWindow
	}
	if n <= 1 {
		return 0
	}
	return (newestFirst[0] - newestFirst[n-1]) / float64(n-1)
}

// ProgressPercentage is the share of the start-to-goal distance covered,
// capped at 100.
func ProgressPercentage(current, start, goal float64) float64 {
	total := math.Abs(goal - start)
	if total == 0 {
		return 0
	}
	return math.Min(100, math.Abs(current-start)/total*100)
}

// DirectionOf tells whether the goal is below, above or at the current weight.
func DirectionOf(current, goal float64) Direction {
	switch {
	case goal < current:
		return DirectionLoss
	case goal > current:
		return DirectionGain
	default:
		return DirectionMaintenance
	}
}

// MilestoneIncrement scales with the remaining distance to the goal.
func MilestoneIncrement(remaining float64) float64 {
	switch {
	case remaining > 10:
		return 5
	case remaining >= 5:
		return 2
	default:
		return 1
	}
}

// NextMilestone moves the target toward the goal without passing it. It is
// nil once the goal is reached.
func NextMilestone(current, goal, rate float64, now time.Time) *Milestone {
	remaining := math.Abs(goal - current)
	if remaining == 0 {
		return nil
	}

	inc := MilestoneIncrement(remaining)
	target := current - inc
	if goal > current {
		target = current + inc
	}
	if math.Abs(target-current) > remaining {
		target = goal
	}

	weeks := defaultWeeks
	if math.Abs(rate) > rateEpsilon {
		weeks = int(math.Ceil(math.Abs(target-current) / math.Abs(rate)))
	}

	return &Milestone{
		Target:        target,
		Increment:     inc,
		Weeks:         weeks,
		EstimatedDate: now.AddDate(0, 0, 7*weeks),
	}
}

// EffectivenessScore blends progress, consistency and stability. Every
// component is clamped to [0,100] so the score is too, for any entry count.
func EffectivenessScore(progressPct float64, newestFirst []float64) Effectiveness {
	e := Effectiveness{
		Progress:    clamp(progressPct),
		Consistency: clamp(float64(len(newestFirst)) / consistencyTarget * 100),
		Stability:   clamp(100 - variance(deltas(newestFirst))*10),
	}
	e.Score = clamp(0.5*e.Progress + 0.3*e.Consistency + 0.2*e.Stability)
	return e
}

func deltas(weights []float64) []float64 {
	if len(weights) < 2 {
		return nil
	}
	out := make([]float64, 0, len(weights)-1)
	for i := 1; i < len(weights); i++ {
		out = append(out, weights[i-1]-weights[i])
	}
	return out
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
