package domain

import "fmt"

// AssignmentStatus is the closed set of assignment lifecycle states.
// The literal stored for an active assignment is a single canonical
// constant; callers must never match it loosely.
type AssignmentStatus string

const (
	AssignmentProposed  AssignmentStatus = "proposed"
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// ParseAssignmentStatus converts a stored string into an AssignmentStatus,
// rejecting anything outside the enumerated set. Unknown spellings must
// surface as errors, not silently fail to match.
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	switch AssignmentStatus(s) {
	case AssignmentProposed, AssignmentActive, AssignmentCompleted, AssignmentCancelled:
		return AssignmentStatus(s), nil
	}

	return "", fmt.Errorf("unknown assignment status '%s'", s)
}

// RequestStatus is the service request lifecycle state, owned by the
// request lifecycle subsystem.
type RequestStatus string

const (
	RequestRequested  RequestStatus = "requested"
	RequestAssigned   RequestStatus = "assigned"
	RequestInProgress RequestStatus = "in_progress"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
)

// ParseRequestStatus converts a stored string into a RequestStatus,
// rejecting anything outside the enumerated set.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestRequested, RequestAssigned, RequestInProgress, RequestCompleted, RequestCancelled:
		return RequestStatus(s), nil
	}

	return "", fmt.Errorf("unknown request status '%s'", s)
}
