package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/repository"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

// Resolver turns a bearer token into the calling actor.
type Resolver struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewResolver constructs a resolver.
func NewResolver(tokens *TokenManager, users repository.UserRepository) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve returns nil for an empty token and for a valid token whose user is
// missing or deactivated; only a token that fails verification is an error.
// The admin capability comes from the stored user row, never from the token, so
// revocation applies on the next call.
func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.Actor, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := r.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid token")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, nil
	}

	user, err := r.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	if !user.AccountActivated {
		return nil, nil
	}

	return &domain.Actor{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}
