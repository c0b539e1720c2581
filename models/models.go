package models

import (
	"errors"
	"time"
)

// ErrJobNotFound is returned when a research job is not found
var ErrJobNotFound = errors.New("research job not found")

// JobStatus is the lifecycle state of a research job. Transitions are
// monotonic: PENDING -> PROCESSING -> COMPLETED | FAILED.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether no further transition is allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ResearchJob is the durable record of one research request. Result is set
// if and only if Status is COMPLETED.
type ResearchJob struct {
	ID        string           `json:"id"`
	Topic     string           `json:"topic"`
	Status    JobStatus        `json:"status"`
	Result    []ArticleSummary `json:"result"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// JobLogEntry is one append-only progress line for a job. Entries are read
// in timestamp ascending order.
type JobLogEntry struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"jobId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ArticleSummary is one summarized article persisted inside a completed
// job's result.
type ArticleSummary struct {
	Source   string   `json:"source"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// Summarization is the validated shape of one model summarization response.
type Summarization struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}
