package risk

// Tier is the discrete severity classification derived from the aggregate score.
type Tier string

const (
	TierNone     Tier = "NONE"
	TierLow      Tier = "LOW"
	TierModerate Tier = "MODERATE"
	TierHigh     Tier = "HIGH"
	TierCritical Tier = "CRITICAL"
)

// tierThresholds are evaluated top-down as independent score >= cutoff checks,
// so boundary values resolve to the higher tier.
var tierThresholds = []struct {
	cutoff float64
	tier   Tier
}{
	{8, TierCritical},
	{7, TierHigh},
	{5, TierModerate},
	{3, TierLow},
}

// ClassifyTier maps a clamped score onto a severity tier.
func ClassifyTier(score float64) Tier {
	for _, t := range tierThresholds {
		if score >= t.cutoff {
			return t.tier
		}
	}
	return TierNone
}

// AtLeast reports whether t is the same or a more severe tier than other.
func (t Tier) AtLeast(other Tier) bool {
	return t.rank() >= other.rank()
}

func (t Tier) rank() int {
	switch t {
	case TierCritical:
		return 4
	case TierHigh:
		return 3
	case TierModerate:
		return 2
	case TierLow:
		return 1
	default:
		return 0
	}
}
