package domain

import "time"

// Kind identifies which submission collection a record belongs to.
type Kind string

const (
	KindComplaint     Kind = "complaint"
	KindServiceReport Kind = "service_report"
	KindFeedback      Kind = "feedback"
)

// ParseKind accepts the wire literal of a kind.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindComplaint, KindServiceReport, KindFeedback:
		return k, true
	}
	return "", false
}

// Reviewable reports whether submissions of this kind carry a review status.
func (k Kind) Reviewable() bool {
	return k == KindComplaint || k == KindServiceReport
}

// SubmissionStatus enumerates review states.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

// Terminal reports whether no further review is expected.
func (s SubmissionStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseDecision accepts only the terminal statuses a reviewer may pick.
func ParseDecision(s string) (SubmissionStatus, bool) {
	switch st := SubmissionStatus(s); st {
	case StatusApproved, StatusRejected:
		return st, true
	}
	return "", false
}

// SubmissionRef addresses a submission in a specific collection.
type SubmissionRef struct {
	ID   string
	Kind Kind
}

// Review holds the review sub-model shared by complaints and service reports.
// ApprovedBy and ApprovedAt are set once Status leaves pending.
// ViewedBySubmitter is only meaningful when Status is approved.
type Review struct {
	Status            SubmissionStatus
	ApprovedBy        *string
	ApprovedAt        *time.Time
	ViewedBySubmitter *bool
}

// Apply records a reviewer decision.
func (r *Review) Apply(decision SubmissionStatus, reviewerID string, at time.Time) {
	r.Status = decision
	r.ApprovedBy = &reviewerID
	r.ApprovedAt = &at
	if decision == StatusApproved {
		unread := false
		r.ViewedBySubmitter = &unread
	}
}

// IssueFlags marks the fault categories a submission touches.
type IssueFlags struct {
	Mechanical bool `json:"mechanical"`
	Electrical bool `json:"electrical"`
	Hydraulic  bool `json:"hydraulic"`
	Software   bool `json:"software"`
	Safety     bool `json:"safety"`
}

// ComplaintProblemType classifies complaints.
type ComplaintProblemType string

const (
	ComplaintEquipmentFault ComplaintProblemType = "equipment-fault"
	ComplaintInstallation   ComplaintProblemType = "installation"
	ComplaintPerformance    ComplaintProblemType = "performance"
	ComplaintSafety         ComplaintProblemType = "safety"
	ComplaintOther          ComplaintProblemType = "other"
)

// Valid reports membership in the closed set.
func (p ComplaintProblemType) Valid() bool {
	switch p {
	case ComplaintEquipmentFault, ComplaintInstallation, ComplaintPerformance, ComplaintSafety, ComplaintOther:
		return true
	}
	return false
}

// ServiceProblemType classifies service reports.
type ServiceProblemType string

const (
	ServicePreventiveMaintenance ServiceProblemType = "preventive-maintenance"
	ServiceRepair                ServiceProblemType = "repair"
	ServiceInstallation          ServiceProblemType = "installation"
	ServiceInspection            ServiceProblemType = "inspection"
	ServiceOther                 ServiceProblemType = "other"
)

// Valid reports membership in the closed set.
func (p ServiceProblemType) Valid() bool {
	switch p {
	case ServicePreventiveMaintenance, ServiceRepair, ServiceInstallation, ServiceInspection, ServiceOther:
		return true
	}
	return false
}

// FeedbackCategory classifies customer feedback.
type FeedbackCategory string

const (
	FeedbackProduct FeedbackCategory = "product"
	FeedbackService FeedbackCategory = "service"
	FeedbackSupport FeedbackCategory = "support"
	FeedbackOther   FeedbackCategory = "other"
)

// Valid reports membership in the closed set.
func (c FeedbackCategory) Valid() bool {
	switch c {
	case FeedbackProduct, FeedbackService, FeedbackSupport, FeedbackOther:
		return true
	}
	return false
}

// Complaint is a field report of a machine problem.
type Complaint struct {
	ID          string
	MachineID   string
	ProblemType ComplaintProblemType
	Details     string
	Flags       IssueFlags
	Other       string
	Solution    string
	ImageRef    *string
	SubmittedBy string
	Review
	CreatedAt time.Time
}

// ServiceReport documents work performed on a machine.
type ServiceReport struct {
	ID            string
	MachineID     string
	ProblemType   ServiceProblemType
	WorkPerformed string
	Flags         IssueFlags
	Other         string
	Solution      string
	ImageRef      *string
	SubmittedBy   string
	Review
	CreatedAt time.Time
}

// Feedback is anonymous customer feedback. It has no review lifecycle.
type Feedback struct {
	ID           string
	Category     FeedbackCategory
	Comments     string
	ContactEmail *string
	ImageRef     *string
	CreatedAt    time.Time
}
