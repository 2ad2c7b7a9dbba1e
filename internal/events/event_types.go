package events

import (
	"time"

	"github.com/fieldops/field-report-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubmissionCreated  EventType = "submission_created"
	EventSubmissionReviewed EventType = "submission_reviewed"
	EventSolutionEdited     EventType = "solution_edited"
	EventSubmissionViewed   EventType = "submission_viewed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	Kind       domain.Kind `json:"kind"`
	Submission string      `json:"submission_id"`
	ActorID    *string     `json:"actor_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// SubmissionCreatedPayload payload.
type SubmissionCreatedPayload struct {
	ProblemType string `json:"problem_type,omitempty"`
	Preview     string `json:"preview"`
}

// SubmissionReviewedPayload payload.
type SubmissionReviewedPayload struct {
	OldStatus   domain.SubmissionStatus `json:"old_status"`
	NewStatus   domain.SubmissionStatus `json:"new_status"`
	SubmittedBy string                  `json:"submitted_by"`
}

// SolutionEditedPayload payload.
type SolutionEditedPayload struct {
	Preview string `json:"preview"`
}
