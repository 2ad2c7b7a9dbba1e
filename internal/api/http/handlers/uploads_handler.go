package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-report-service/internal/storage"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

// UploadIssuer hands out upload targets in the blob store.
type UploadIssuer interface {
	IssueUploadURL() (*storage.Upload, error)
}

// UploadsHandler issues signed upload URLs.
type UploadsHandler struct {
	issuer UploadIssuer
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(issuer UploadIssuer) *UploadsHandler {
	return &UploadsHandler{issuer: issuer}
}

// IssueUpload POST /api/uploads.
func (h *UploadsHandler) IssueUpload(c *fiber.Ctx) error {
	upload, err := h.issuer.IssueUploadURL()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": upload})
}
