package queue

import "time"

type TaskType string

const (
	TaskPurgeSessions    TaskType = "sessions.purge"
	TaskCaseCreated      TaskType = "case.created"
	TaskCaseTransitioned TaskType = "case.transitioned"
)

// Task is one unit of background work carried on the stream. Fields that do
// not apply to a task type are left empty.
type Task struct {
	Type     TaskType  `json:"type"`
	CaseID   string    `json:"caseId,omitempty"`
	LawyerID string    `json:"lawyerId,omitempty"`
	From     string    `json:"from,omitempty"`
	To       string    `json:"to,omitempty"`
	At       time.Time `json:"at"`
}

func (t Task) values() map[string]any {
	values := map[string]any{
		"type": string(t.Type),
		"at":   t.At.UTC().Format(time.RFC3339Nano),
	}
	for key, value := range map[string]string{
		"caseId":   t.CaseID,
		"lawyerId": t.LawyerID,
		"from":     t.From,
		"to":       t.To,
	} {
		if value != "" {
			values[key] = value
		}
	}
	return values
}
