package constants

// BlueprintStatus is the canonical status for blueprint records and the
// project's blueprint.processingStatus field.
type BlueprintStatus string

// Stable values (store these exact strings).
const (
	BlueprintStatusProcessing BlueprintStatus = "PROCESSING" // extraction in progress
	BlueprintStatusCompleted  BlueprintStatus = "COMPLETED"  // blueprint persisted
	BlueprintStatusError      BlueprintStatus = "ERROR"      // terminal failure
)

// EstimateStatus covers both the internal workflow and the vocabulary used at
// the API boundary.
type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusPending  EstimateStatus = "pending"
	EstimateStatusApproved EstimateStatus = "approved"
	EstimateStatusRejected EstimateStatus = "rejected"
	EstimateStatusSent     EstimateStatus = "sent"
	EstimateStatusAccepted EstimateStatus = "accepted"
)

var allEstimateStatuses = []EstimateStatus{
	EstimateStatusDraft,
	EstimateStatusPending,
	EstimateStatusApproved,
	EstimateStatusRejected,
	EstimateStatusSent,
	EstimateStatusAccepted,
}

// ParseEstimateStatus returns the status for s, or false when s is not part of
// the vocabulary.
func ParseEstimateStatus(s string) (EstimateStatus, bool) {
	for _, st := range allEstimateStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further status transition is allowed.
func (s EstimateStatus) IsTerminal() bool {
	return s == EstimateStatusRejected
}
