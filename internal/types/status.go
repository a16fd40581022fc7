package types

import (
	"fmt"
	"strings"
)

// Status is the screening state of a candidate.
type Status string

// Candidate statuses. Every record starts as StatusPending.
const (
	StatusPending     Status = "pending"
	StatusShortlisted Status = "shortlisted"
	StatusRejected    Status = "rejected"
	StatusInvited     Status = "invited"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusPending, StatusShortlisted, StatusRejected, StatusInvited}

// InvalidStatusError is returned for a status value outside the defined set.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q: must be one of pending, shortlisted, rejected, invited", e.Value)
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShortlisted, StatusRejected, StatusInvited:
		return true
	}
	return false
}

// ParseStatus converts user input into a Status, rejecting unknown values.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", &InvalidStatusError{Value: value}
	}
	return s, nil
}

// UpdateStatusRequest is the body of a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
