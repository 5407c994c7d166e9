package gateway

import (
	"context"
	"time"

	"github.com/abhisek/homeplay/internal/activity"
)

// Gateway is the backend homework-submission endpoint.
type Gateway interface {
	// FindExistingSubmission returns the submission already stored for the
	// child on this homework, or nil if there is none. Safe to call
	// repeatedly.
	FindExistingSubmission(ctx context.Context, homeworkID, childID string) (*Record, error)

	// SubmitResult persists a finished session. Failures are returned as
	// *SubmissionError.
	SubmitResult(ctx context.Context, homeworkID, childID string, result Result) (*Record, error)
}

// Result is the outcome of an interactive session.
type Result struct {
	Score          int                   `json:"score"`
	TotalQuestions int                   `json:"totalQuestions"`
	Percentage     int                   `json:"percentage"`
	Answers        activity.AnswerRecord `json:"answers"`
}

// Record is a stored submission as reported by the backend.
type Record struct {
	ID             string
	HomeworkID     string
	ChildID        string
	Score          int
	Percentage     int
	TotalQuestions int
	Answers        activity.AnswerRecord
	SubmittedAt    time.Time
}
