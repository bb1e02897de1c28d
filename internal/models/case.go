package models

import (
	"fmt"
	"time"
)

type CaseStatus string

const (
	CaseStatusPending    CaseStatus = "Pending"
	CaseStatusInProgress CaseStatus = "In Progress"
	CaseStatusCompleted  CaseStatus = "Completed"
	CaseStatusRejected   CaseStatus = "Rejected"
)

var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusPending:    {CaseStatusInProgress, CaseStatusRejected},
	CaseStatusInProgress: {CaseStatusCompleted, CaseStatusRejected},
	CaseStatusCompleted:  nil,
	CaseStatusRejected:   nil,
}

// ParseCaseStatus accepts the wire names plus the camel/underscore spellings
// older clients send for "In Progress".
func ParseCaseStatus(s string) (CaseStatus, error) {
	switch s {
	case "Pending", "pending":
		return CaseStatusPending, nil
	case "In Progress", "InProgress", "in_progress", "inProgress":
		return CaseStatusInProgress, nil
	case "Completed", "completed":
		return CaseStatusCompleted, nil
	case "Rejected", "rejected":
		return CaseStatusRejected, nil
	}
	return "", fmt.Errorf("unknown case status %q", s)
}

func (s CaseStatus) Valid() bool {
	_, ok := caseTransitions[s]
	return ok
}

func (s CaseStatus) Terminal() bool {
	next, ok := caseTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether to is directly reachable from s.
func (s CaseStatus) CanTransition(to CaseStatus) bool {
	for _, next := range caseTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Attachment struct {
	ObjectKey string
	Mime      string
	SizeBytes int64
	Checksum  []byte
	Signature []byte
}

type Appointment struct {
	Reference string
	At        time.Time
}

type Case struct {
	ID          string
	ClientID    string
	LawyerID    string
	Title       string
	Description string
	CaseType    string
	Status      CaseStatus
	Attachment  *Attachment
	Appointment *Appointment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CaseStats struct {
	Cases   int
	Clients int
}
