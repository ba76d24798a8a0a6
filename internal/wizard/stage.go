package wizard

// Stage is the position of a session in the receipt review workflow.
type Stage int

const (
	StageAcquiring Stage = iota
	StageExtracting
	StageOfferManualFallback
	StageAwaitReviewDecision
	StageAwaitFieldSelection
	StageAwaitFieldValue
	StageTerminated
)

var stageNames = map[Stage]string{
	StageAcquiring:           "acquiring",
	StageExtracting:          "extracting",
	StageOfferManualFallback: "offer_manual_fallback",
	StageAwaitReviewDecision: "await_review_decision",
	StageAwaitFieldSelection: "await_field_selection",
	StageAwaitFieldValue:     "await_field_value",
	StageTerminated:          "terminated",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// awaitsInput reports whether the stage waits for a user message.
func (s Stage) awaitsInput() bool {
	switch s {
	case StageOfferManualFallback, StageAwaitReviewDecision, StageAwaitFieldSelection, StageAwaitFieldValue:
		return true
	default:
		return false
	}
}
