package model

import "time"

// JobStatus is the state machine position of a processing job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving to next is a legal step in the
// state graph: pending -> running -> {completed, failed}, and
// {pending, running} -> cancelled.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning || next == StatusCancelled
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed || next == StatusCancelled
	}
	return false
}

// ProcessingJob tracks one submitted pipeline run from submission to its
// terminal state. Owned by the job registry after submission.
type ProcessingJob struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Status         JobStatus          `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	StartedAt      *time.Time         `json:"started_at,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	InputCount     int                `json:"input_count"`
	ProcessedCount int                `json:"processed_count"`
	ErrorCount     int                `json:"error_count"`
	Configuration  ProcessingConfig   `json:"configuration"`
	Results        []ProcessingResult `json:"results"`
	LastError      *ProcessingError   `json:"last_error,omitempty"`
}
