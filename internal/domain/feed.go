package domain

import "time"

// Submitter labels used when no user name can be shown.
const (
	UnknownSubmitterName  = "Unknown User"
	CustomerSubmitterName = "Customer"
)

// FeedItem is the kind-agnostic projection of a submission shown in the feed.
// Exactly one of Complaint, ServiceReport and Feedback is set, matching Kind.
type FeedItem struct {
	Kind          Kind
	ID            string
	MainText      string
	SubmitterName string
	Status        *SubmissionStatus
	ImageURL      *string
	CreatedAt     time.Time

	Complaint     *Complaint
	ServiceReport *ServiceReport
	Feedback      *Feedback
}

// FeedResult is the role-filtered feed with its summary figures.
type FeedResult struct {
	Submissions           []FeedItem
	IsAdmin               bool
	PendingCount          int
	SubmissionsTodayCount int
}
