package checkout

import "strings"

// Plan slugs understood by the transition guard. Any other non-empty slug
// is treated as a distinct paid plan and allowed through.
const (
	PlanNone  = "none"
	PlanFree  = "free"
	PlanBasic = "basic"
	PlanPro   = "pro"
)

// GuardOutcome is the decision of the plan-transition guard.
type GuardOutcome int

const (
	// GuardProceed allows the checkout to continue without prompting.
	GuardProceed GuardOutcome = iota
	// GuardBlock stops the checkout; Message explains why. A block is a UX
	// outcome, not a failure.
	GuardBlock
	// GuardConfirm requires an explicit user confirmation before the
	// checkout may continue.
	GuardConfirm
)

// GuardDecision is the result of evaluating a (current, requested) pair.
type GuardDecision struct {
	Outcome GuardOutcome
	Message string
}

// CheckTransition evaluates the plan-transition decision table:
//
//	same plan            -> block, informational
//	pro -> basic         -> block, must use the scheduled-downgrade path
//	basic -> pro         -> confirm, fixed-amount upgrade charge applies
//	everything else      -> proceed
//
// Empty slugs normalize to "none"; "none" to anything proceeds.
func CheckTransition(current, requested string) GuardDecision {
	current = normalizePlan(current)
	requested = normalizePlan(requested)

	switch {
	case current == requested:
		return GuardDecision{
			Outcome: GuardBlock,
			Message: "You are already on this plan.",
		}
	case current == PlanPro && requested == PlanBasic:
		return GuardDecision{
			Outcome: GuardBlock,
			Message: "Moving from Pro to Basic takes effect next billing cycle. Use the scheduled downgrade instead of checkout.",
		}
	case current == PlanBasic && requested == PlanPro:
		return GuardDecision{
			Outcome: GuardConfirm,
			Message: "Upgrade now? The fixed upgrade amount will be charged to your stored card immediately.",
		}
	default:
		return GuardDecision{Outcome: GuardProceed}
	}
}

func normalizePlan(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return PlanNone
	}
	return slug
}
