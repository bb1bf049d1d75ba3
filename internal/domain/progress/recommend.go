package progress

import "github.com/nutriplan/core/internal/domain/plan"

// Standing summarizes how well the current plan works.
type Standing string

const (
	StandingOnTrack         Standing = "on_track"
	StandingNeedsAdjustment Standing = "needs_adjustment"
	StandingOffTrack        Standing = "off_track"
)

// StandingOf buckets an effectiveness score.
func StandingOf(score float64) Standing {
	switch {
	case score >= 70:
		return StandingOnTrack
	case score >= 40:
		return StandingNeedsAdjustment
	default:
		return StandingOffTrack
	}
}

// RecommendedGoal picks the template goal matching the analysis. A client
// who reached the goal moves to maintenance.
func RecommendedGoal(a *Analysis) plan.Goal {
	if a.ProgressPercentage >= 100 {
		return plan.GoalMaintenance
	}
	switch a.Direction {
	case DirectionLoss:
		return plan.GoalWeightLoss
	case DirectionGain:
		return plan.GoalWeightGain
	default:
		return plan.GoalMaintenance
	}
}

// RankTemplates keeps the templates tagged for goal. When the plan is off
// track, maintenance templates follow as a gentler fallback.
func RankTemplates(a *Analysis, templates []plan.Template) []plan.Template {
	goal := RecommendedGoal(a)
	var matched, fallback []plan.Template
	for _, t := range templates {
		switch {
		case t.Goal == goal:
			matched = append(matched, t)
		case t.Goal == plan.GoalMaintenance && StandingOf(a.Effectiveness.Score) == StandingOffTrack:
			fallback = append(fallback, t)
		}
	}
	return append(matched, fallback...)
}
