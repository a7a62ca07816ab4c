package model

import "time"

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusAccepted SubmissionStatus = "accepted"
	StatusWrong    SubmissionStatus = "wrong"
	StatusError    SubmissionStatus = "error"
)

// Terminal reports whether the status can no longer change. A submission is
// created pending and transitions exactly once to a terminal state.
func (s SubmissionStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusWrong || s == StatusError
}

type Submission struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	ProblemID       string           `json:"problem_id"`
	Code            string           `json:"code"`
	Language        Language         `json:"language"`
	Status          SubmissionStatus `json:"status"`
	TestCasesPassed int              `json:"test_cases_passed"`
	TestCasesTotal  int              `json:"test_cases_total"`
	Runtime         float64          `json:"runtime"` // seconds, worst case among passed cases
	Memory          int              `json:"memory"`  // KB, worst case among passed cases
	ErrorMessage    *string          `json:"error_message,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}
