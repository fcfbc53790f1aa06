// Package escalation maps assessed risk tiers onto intervention protocols and
// drives the escalation side effects.
package escalation

import (
	"github.com/mindhaven/wellness-platform/internal/risk"
)

// Protocol is the static intervention configuration for one tier. Read-only
// reference data; never user-owned.
type Protocol struct {
	Actions            []string
	Escalate           bool
	NotifyCounselors   bool
	SendEmergencyAlert bool
	UserMessage        string
}

var protocolTable = map[risk.Tier]Protocol{
	risk.TierLow: {
		Actions:     []string{"ai_support", "mood_exercises"},
		UserMessage: "Thanks for sharing how you're feeling. A few mood exercises might help today.",
	},
	risk.TierModerate: {
		Actions:     []string{"ai_support", "peer_groups", "self_care"},
		UserMessage: "It sounds like things have been heavy. You don't have to carry this alone - your peer groups and self-care tools are here.",
	},
	risk.TierHigh: {
		Actions:          []string{"counselor_booking", "crisis_resources", "peer_support"},
		Escalate:         true,
		NotifyCounselors: true,
		UserMessage:      "We're concerned about you. A counselor has been notified and booking a session now could really help.",
	},
	risk.TierCritical: {
		Actions:            []string{"immediate_counselor", "emergency_contacts", "crisis_hotline"},
		Escalate:           true,
		NotifyCounselors:   true,
		SendEmergencyAlert: true,
		UserMessage:        "You matter, and help is available right now. A counselor is being connected and your emergency contacts have been alerted.",
	},
}

// ProtocolFor returns the intervention protocol for a tier. Tiers without a
// table entry (NONE) get a no-op protocol with a supportive message.
func ProtocolFor(tier risk.Tier) Protocol {
	if p, ok := protocolTable[tier]; ok {
		return p
	}
	return Protocol{
		UserMessage: "Glad you checked in. Keep it up - regular check-ins help you notice patterns early.",
	}
}

// Urgency grades how prominently the UI should surface a recommendation.
type Urgency string

const (
	UrgencyNone      Urgency = "none"
	UrgencyLow       Urgency = "low"
	UrgencyModerate  Urgency = "moderate"
	UrgencyHigh      Urgency = "high"
	UrgencyImmediate Urgency = "immediate"
)

// Contact is an emergency resource surfaced with CRITICAL recommendations.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Recommendation is what the caller renders back to the user. Derived purely
// from the tier.
type Recommendation struct {
	Message           string    `json:"message"`
	Actions           []string  `json:"actions"`
	Urgency           Urgency   `json:"urgency"`
	EmergencyContacts []Contact `json:"emergency_contacts,omitempty"`
}

var crisisContacts = []Contact{
	{Name: "988 Suicide & Crisis Lifeline", Phone: "988"},
	{Name: "Crisis Text Line (text HOME)", Phone: "741741"},
}

// BuildRecommendation derives the user-facing recommendation for a tier.
func BuildRecommendation(tier risk.Tier) Recommendation {
	proto := ProtocolFor(tier)
	rec := Recommendation{
		Message: proto.UserMessage,
		Actions: proto.Actions,
		Urgency: urgencyFor(tier),
	}
	if tier == risk.TierCritical {
		rec.EmergencyContacts = append([]Contact(nil), crisisContacts...)
	}
	return rec
}

func urgencyFor(tier risk.Tier) Urgency {
	switch tier {
	case risk.TierCritical:
		return UrgencyImmediate
	case risk.TierHigh:
		return UrgencyHigh
	case risk.TierModerate:
		return UrgencyModerate
	case risk.TierLow:
		return UrgencyLow
	default:
		return UrgencyNone
	}
}
