package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-report-service/internal/domain"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

const actorKey = "auth_actor"

// AuthMiddleware resolves the caller of every request.
type AuthMiddleware struct {
	resolver *Resolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver *Resolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Handle attaches the resolved actor. Requests without an Authorization header,
// or whose token names a missing or deactivated user, continue anonymously and
// are stopped by the route guards where an actor is required. Malformed or
// unverifiable credentials are rejected.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	actor, err := m.resolver.Resolve(c.UserContext(), strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}
	if actor != nil {
		c.Locals(actorKey, actor)
	}
	return c.Next()
}

// ActorFromContext returns the resolved caller or nil.
func ActorFromContext(c *fiber.Ctx) *domain.Actor {
	actor, _ := c.Locals(actorKey).(*domain.Actor)
	return actor
}
