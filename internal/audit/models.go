package audit

import "time"

// Action names one kind of registry event.
type Action string

const (
	ActionClaimSubmitted   Action = "claim_submitted"
	ActionClaimVerified    Action = "claim_verified"
	ActionPolicyUpdated    Action = "policy_updated"
	ActionUnitAdded        Action = "unit_added"
	ActionMethodologyAdded Action = "methodology_added"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Consumers reconstruct
// registry history by replaying the stream in order; there is no other query
// API over history.
type Event struct {
	Timestamp time.Time
	Action    Action

	// Claim events.
	ClaimID    string
	ProfileRef string
	Validator  string
	Score      int

	// Policy events. Category is also set on claim events.
	Category    string
	Unit        string
	Methodology string

	// Who performed the action and under which request.
	Actor     string
	RequestID string
}

// ClaimSubmitted builds the submission notification.
func ClaimSubmitted(claimID, profileRef, category, actor string) Event {
	return Event{
		Action:     ActionClaimSubmitted,
		ClaimID:    claimID,
		ProfileRef: profileRef,
		Category:   category,
		Actor:      actor,
	}
}

// ClaimVerified builds the verification notification.
func ClaimVerified(claimID, validator string, score int) Event {
	return Event{
		Action:    ActionClaimVerified,
		ClaimID:   claimID,
		Validator: validator,
		Score:     score,
		Actor:     validator,
	}
}

// PolicyUpdated builds the policy replacement notification.
func PolicyUpdated(category, actor string) Event {
	return Event{Action: ActionPolicyUpdated, Category: category, Actor: actor}
}

// UnitAdded builds the allowed-unit notification.
func UnitAdded(category, unit, actor string) Event {
	return Event{Action: ActionUnitAdded, Category: category, Unit: unit, Actor: actor}
}

// MethodologyAdded builds the allowed-methodology notification.
func MethodologyAdded(category, methodology, actor string) Event {
	return Event{Action: ActionMethodologyAdded, Category: category, Methodology: methodology, Actor: actor}
}
