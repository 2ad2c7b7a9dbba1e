package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/repository"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

func names(entries []DirectoryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	caller := env.addUser(t, "Zed Caller", false)
	env.addUser(t, "Joan Smith", false)
	john := env.addUser(t, "John O'Neil", true)
	env.addUser(t, "jo", false)
	env.addUser(t, "Mary Jones", false)

	inactive := &domain.User{AccountActivated: false}
	inactive.SetName("Jonas Dormant")
	require.NoError(t, env.store.Users().Create(ctx, inactive))

	got, err := env.dir.SearchUsers(ctx, caller, "jo", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"jo", "Joan Smith", "John O'Neil"}, names(got))

	got, err = env.dir.SearchUsers(ctx, caller, "  JOHN O'", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, john.UserID, got[0].ID)

	got, err = env.dir.SearchUsers(ctx, caller, "jo", []string{john.UserID})
	require.NoError(t, err)
	assert.Equal(t, []string{"jo", "Joan Smith"}, names(got))
}

func TestSearchUsersEmptyPrefix(t *testing.T) {
	env := newTestEnv()
	caller := env.addUser(t, "Zed Caller", false)

	for _, prefix := range []string{"", "   ", "!!!"} {
		got, err := env.dir.SearchUsers(context.Background(), caller, prefix, nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestSearchUsersLimit(t *testing.T) {
	env := newTestEnv()
	caller := env.addUser(t, "Zed Caller", false)
	for i := 12; i > 0; i-- {
		env.addUser(t, fmt.Sprintf("Jo %02d", i), false)
	}

	got, err := env.dir.SearchUsers(context.Background(), caller, "jo", nil)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "Jo 01", got[0].Name)
	assert.Equal(t, "Jo 10", got[9].Name)
}

func TestSearchUsersRequiresActor(t *testing.T) {
	env := newTestEnv()
	_, err := env.dir.SearchUsers(context.Background(), nil, "jo", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

// recordingUsers keeps the last search query sent to the store.
type recordingUsers struct {
	repository.UserRepository
	last repository.UserSearchQuery
}

func (r *recordingUsers) SearchByName(ctx context.Context, q repository.UserSearchQuery) ([]domain.User, error) {
	r.last = q
	return r.UserRepository.SearchByName(ctx, q)
}

func TestSearchUsersIgnoresMalformedExclusions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	caller := env.addUser(t, "Zed Caller", false)
	john := env.addUser(t, "John Doe", false)
	users := &recordingUsers{UserRepository: env.store.Users()}

	got, err := NewDirectoryService(users).SearchUsers(ctx, caller, "jo", []string{"foo", john.UserID, "1,2"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{john.UserID}, users.last.Exclude)

	got, err = NewDirectoryService(users).SearchUsers(ctx, caller, "jo", []string{"foo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"John Doe"}, names(got))
	assert.Empty(t, users.last.Exclude)
}
