// Package scoring ranks leads for dial ordering and buckets them into
// speed-to-lead urgency tiers. The scorer and the classifier share the
// same breakpoints so queue ordering never disagrees with alerting.
package scoring

import (
	"sort"

	"dialer_backend/internal/dialer/domain"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	scoreVersion = "v1"

	// Speed-to-lead breakpoints in minutes. Shared by Score and Classify.
	criticalWithinMinutes = 5
	urgentWithinMinutes   = 15
	warmWithinMinutes     = 60

	// Bonus contribution per urgency tier.
	criticalBonus = 30.0
	urgentBonus   = 20.0
	warmBonus     = 10.0

	// Multiplicative priority boosts.
	boostHigh   = 1.5
	boostMedium = 1.2
	boostLow    = 1.0
)

// Urgency is the speed-to-lead bucket used for alerting and scoring.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyWarm     Urgency = "warm"
	UrgencyCold     Urgency = "cold"
)

// Classify buckets elapsed minutes since lead creation into an urgency
// tier. A nil value means the lead is very old and classifies as cold.
func Classify(minutes *int) Urgency {
	if minutes == nil {
		return UrgencyCold
	}
	switch {
	case *minutes < criticalWithinMinutes:
		return UrgencyCritical
	case *minutes < urgentWithinMinutes:
		return UrgencyUrgent
	case *minutes < warmWithinMinutes:
		return UrgencyWarm
	default:
		return UrgencyCold
	}
}

// speedBonus returns the additive contribution for a lead's urgency tier.
func speedBonus(minutes *int) float64 {
	switch Classify(minutes) {
	case UrgencyCritical:
		return criticalBonus
	case UrgencyUrgent:
		return urgentBonus
	case UrgencyWarm:
		return warmBonus
	default:
		return 0
	}
}

// priorityBoost returns the multiplier for a lead's priority band.
// Unknown or unset priorities get the low boost.
func priorityBoost(p domain.Priority) float64 {
	switch p {
	case domain.PriorityHigh:
		return boostHigh
	case domain.PriorityMedium:
		return boostMedium
	default:
		return boostLow
	}
}

// Score ranks a lead for queue ordering. It is pure and total: missing
// fields default to worst-case values and it never fails.
func Score(lead domain.Lead) float64 {
	base := speedBonus(lead.SpeedToLeadMinutes) + float64(lead.ConversionLikelihood)
	return base * priorityBoost(lead.Priority)
}

// Less reports whether a should be dialed before b. Ordering is score
// descending, then speed-to-lead ascending (fresher first, absent last),
// then conversion likelihood descending.
func Less(a, b domain.Lead) bool {
	scoreA, scoreB := Score(a), Score(b)
	if scoreA != scoreB {
		return scoreA > scoreB
	}

	ageA, ageB := speedToLeadOrVeryOld(a), speedToLeadOrVeryOld(b)
	if ageA != ageB {
		return ageA < ageB
	}

	return a.ConversionLikelihood > b.ConversionLikelihood
}

// Sort orders leads in place for dialing, best first. The sort is stable
// so fully tied leads keep their relative order.
func Sort(leads []domain.Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		return Less(leads[i], leads[j])
	})
}

// speedToLeadOrVeryOld maps an absent speed-to-lead to a sentinel that
// sorts after every real value.
func speedToLeadOrVeryOld(lead domain.Lead) int {
	if lead.SpeedToLeadMinutes == nil {
		return int(^uint(0) >> 1)
	}
	return *lead.SpeedToLeadMinutes
}

// Version returns the scoring model version for diagnostics.
func Version() string {
	return scoreVersion
}
