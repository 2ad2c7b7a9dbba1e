package dto

import (
	"time"

	"github.com/fieldops/field-report-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	MachineID   string                      `json:"machine_id"`
	ProblemType domain.ComplaintProblemType `json:"problem_type"`
	Details     string                      `json:"details"`
	Flags       domain.IssueFlags           `json:"flags"`
	Other       string                      `json:"other"`
	Solution    string                      `json:"solution"`
	ImageRef    *string                     `json:"image_ref"`
}

// CreateServiceReportRequest payload.
type CreateServiceReportRequest struct {
	MachineID     string                    `json:"machine_id"`
	ProblemType   domain.ServiceProblemType `json:"problem_type"`
	WorkPerformed string                    `json:"work_performed"`
	Flags         domain.IssueFlags         `json:"flags"`
	Other         string                    `json:"other"`
	Solution      string                    `json:"solution"`
	ImageRef      *string                   `json:"image_ref"`
}

// CreateFeedbackRequest payload.
type CreateFeedbackRequest struct {
	Category     domain.FeedbackCategory `json:"category"`
	Comments     string                  `json:"comments"`
	ContactEmail *string                 `json:"contact_email"`
	ImageRef     *string                 `json:"image_ref"`
}

// ReviewRequest carries an admin decision.
type ReviewRequest struct {
	Decision string `json:"decision"`
}

// SolutionRequest replaces the solution text.
type SolutionRequest struct {
	Solution string `json:"solution"`
}

// SubmissionCreatedResponse identifies a new submission.
type SubmissionCreatedResponse struct {
	ID        string      `json:"id"`
	Kind      domain.Kind `json:"kind"`
	CreatedAt time.Time   `json:"created_at"`
}

// ReviewResponse is the review sub-model of a complaint or service report.
type ReviewResponse struct {
	Status            domain.SubmissionStatus `json:"status"`
	ApprovedBy        *string                 `json:"approved_by"`
	ApprovedAt        *time.Time              `json:"approved_at"`
	ViewedBySubmitter *bool                   `json:"viewed_by_submitter"`
}

// ComplaintResponse holds the complaint specific fields of a feed item.
type ComplaintResponse struct {
	MachineID   string                      `json:"machine_id"`
	ProblemType domain.ComplaintProblemType `json:"problem_type"`
	Flags       domain.IssueFlags           `json:"flags"`
	Other       string                      `json:"other"`
	Solution    string                      `json:"solution"`
	SubmittedBy string                      `json:"submitted_by"`
	ReviewResponse
}

// ServiceReportResponse holds the service report specific fields of a feed item.
type ServiceReportResponse struct {
	MachineID   string                    `json:"machine_id"`
	ProblemType domain.ServiceProblemType `json:"problem_type"`
	Flags       domain.IssueFlags         `json:"flags"`
	Other       string                    `json:"other"`
	Solution    string                    `json:"solution"`
	SubmittedBy string                    `json:"submitted_by"`
	ReviewResponse
}

// FeedbackResponse holds the feedback specific fields of a feed item.
type FeedbackResponse struct {
	Category     domain.FeedbackCategory `json:"category"`
	ContactEmail *string                 `json:"contact_email"`
}

// FeedItemResponse is one entry of the merged feed.
type FeedItemResponse struct {
	Kind          domain.Kind              `json:"kind"`
	ID            string                   `json:"id"`
	MainText      string                   `json:"main_text"`
	SubmitterName string                   `json:"submitter_name"`
	Status        *domain.SubmissionStatus `json:"status"`
	ImageURL      *string                  `json:"image_url"`
	CreatedAt     time.Time                `json:"created_at"`

	Complaint     *ComplaintResponse     `json:"complaint,omitempty"`
	ServiceReport *ServiceReportResponse `json:"service_report,omitempty"`
	Feedback      *FeedbackResponse      `json:"feedback,omitempty"`
}

// FeedResponse is the role-filtered feed with KPIs.
type FeedResponse struct {
	Submissions           []FeedItemResponse `json:"submissions"`
	IsAdmin               bool               `json:"is_admin"`
	PendingCount          int                `json:"pending_count"`
	SubmissionsTodayCount int                `json:"submissions_today_count"`
}

// BadgeResponse carries the pending badge count.
type BadgeResponse struct {
	Count int `json:"count"`
}

// NewFeedResponse renders a feed result.
func NewFeedResponse(result *domain.FeedResult) FeedResponse {
	items := make([]FeedItemResponse, 0, len(result.Submissions))
	for _, item := range result.Submissions {
		items = append(items, newFeedItemResponse(item))
	}
	return FeedResponse{
		Submissions:           items,
		IsAdmin:               result.IsAdmin,
		PendingCount:          result.PendingCount,
		SubmissionsTodayCount: result.SubmissionsTodayCount,
	}
}

func newFeedItemResponse(item domain.FeedItem) FeedItemResponse {
	resp := FeedItemResponse{
		Kind:          item.Kind,
		ID:            item.ID,
		MainText:      item.MainText,
		SubmitterName: item.SubmitterName,
		Status:        item.Status,
		ImageURL:      item.ImageURL,
		CreatedAt:     item.CreatedAt,
	}
	switch {
	case item.Complaint != nil:
		c := item.Complaint
		resp.Complaint = &ComplaintResponse{
			MachineID:      c.MachineID,
			ProblemType:    c.ProblemType,
			Flags:          c.Flags,
			Other:          c.Other,
			Solution:       c.Solution,
			SubmittedBy:    c.SubmittedBy,
			ReviewResponse: newReviewResponse(c.Review),
		}
	case item.ServiceReport != nil:
		r := item.ServiceReport
		resp.ServiceReport = &ServiceReportResponse{
			MachineID:      r.MachineID,
			ProblemType:    r.ProblemType,
			Flags:          r.Flags,
			Other:          r.Other,
			Solution:       r.Solution,
			SubmittedBy:    r.SubmittedBy,
			ReviewResponse: newReviewResponse(r.Review),
		}
	case item.Feedback != nil:
		resp.Feedback = &FeedbackResponse{
			Category:     item.Feedback.Category,
			ContactEmail: item.Feedback.ContactEmail,
		}
	}
	return resp
}

func newReviewResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		Status:            r.Status,
		ApprovedBy:        r.ApprovedBy,
		ApprovedAt:        r.ApprovedAt,
		ViewedBySubmitter: r.ViewedBySubmitter,
	}
}
