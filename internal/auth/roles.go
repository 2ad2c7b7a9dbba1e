package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

// RequireActor rejects anonymous callers.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFromContext(c).Authenticated() {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin rejects anonymous callers and non-admins, keeping the two
// failures distinguishable.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if !actor.Authenticated() {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !actor.IsAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
