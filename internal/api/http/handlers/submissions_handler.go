package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-report-service/internal/api/dto"
	"github.com/fieldops/field-report-service/internal/auth"
	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/service"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

// SubmissionsHandler manages submission and review endpoints.
type SubmissionsHandler struct {
	service *service.SubmissionService
}

// NewSubmissionsHandler constructs handler.
func NewSubmissionsHandler(submissionService *service.SubmissionService) *SubmissionsHandler {
	return &SubmissionsHandler{service: submissionService}
}

// CreateComplaint POST /api/complaints.
func (h *SubmissionsHandler) CreateComplaint(c *fiber.Ctx) error {
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	complaint, err := h.service.SubmitComplaint(c.UserContext(), auth.ActorFromContext(c), service.ComplaintInput{
		MachineID:   req.MachineID,
		ProblemType: req.ProblemType,
		Details:     req.Details,
		Flags:       req.Flags,
		Other:       req.Other,
		Solution:    req.Solution,
		ImageRef:    req.ImageRef,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SubmissionCreatedResponse{
		ID:        complaint.ID,
		Kind:      domain.KindComplaint,
		CreatedAt: complaint.CreatedAt,
	}})
}

// CreateServiceReport POST /api/service-reports.
func (h *SubmissionsHandler) CreateServiceReport(c *fiber.Ctx) error {
	var req dto.CreateServiceReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	report, err := h.service.SubmitServiceReport(c.UserContext(), auth.ActorFromContext(c), service.ServiceReportInput{
		MachineID:     req.MachineID,
		ProblemType:   req.ProblemType,
		WorkPerformed: req.WorkPerformed,
		Flags:         req.Flags,
		Other:         req.Other,
		Solution:      req.Solution,
		ImageRef:      req.ImageRef,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SubmissionCreatedResponse{
		ID:        report.ID,
		Kind:      domain.KindServiceReport,
		CreatedAt: report.CreatedAt,
	}})
}

// CreateFeedback POST /api/feedback.
func (h *SubmissionsHandler) CreateFeedback(c *fiber.Ctx) error {
	var req dto.CreateFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	fb, err := h.service.SubmitFeedback(c.UserContext(), service.FeedbackInput{
		Category:     req.Category,
		Comments:     req.Comments,
		ContactEmail: req.ContactEmail,
		ImageRef:     req.ImageRef,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SubmissionCreatedResponse{
		ID:        fb.ID,
		Kind:      domain.KindFeedback,
		CreatedAt: fb.CreatedAt,
	}})
}

// Review POST /api/submissions/:kind/:id/review.
func (h *SubmissionsHandler) Review(c *fiber.Ctx) error {
	ref, err := submissionRef(c)
	if err != nil {
		return err
	}
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	decision, ok := domain.ParseDecision(req.Decision)
	if !ok {
		return apperrors.NewInvalidArgument("decision must be approved or rejected", map[string]any{"decision": req.Decision})
	}
	if err := h.service.Review(c.UserContext(), auth.ActorFromContext(c), ref, decision); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// EditSolution PUT /api/submissions/:kind/:id/solution.
func (h *SubmissionsHandler) EditSolution(c *fiber.Ctx) error {
	ref, err := submissionRef(c)
	if err != nil {
		return err
	}
	var req dto.SolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := h.service.EditSolution(c.UserContext(), auth.ActorFromContext(c), ref, req.Solution); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MarkViewed POST /api/submissions/:kind/:id/viewed.
func (h *SubmissionsHandler) MarkViewed(c *fiber.Ctx) error {
	ref, err := submissionRef(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkViewed(c.UserContext(), auth.ActorFromContext(c), ref); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func submissionRef(c *fiber.Ctx) (domain.SubmissionRef, error) {
	kind, ok := domain.ParseKind(c.Params("kind"))
	if !ok {
		return domain.SubmissionRef{}, apperrors.NewInvalidArgument("unsupported submission kind", map[string]any{"kind": c.Params("kind")})
	}
	return domain.SubmissionRef{ID: c.Params("id"), Kind: kind}, nil
}
