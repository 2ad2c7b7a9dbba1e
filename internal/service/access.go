package service

import (
	"github.com/fieldops/field-report-service/internal/domain"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

func requireActor(actor *domain.Actor) error {
	if !actor.Authenticated() {
		return apperrors.NewUnauthenticated("authentication required")
	}
	return nil
}

// requireAdmin keeps "no identity" and "not an admin" apart so callers and
// logs can tell them apart.
func requireAdmin(actor *domain.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
