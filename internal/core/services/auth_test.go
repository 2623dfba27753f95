package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"franklin-api/internal/core/domain"
	"franklin-api/internal/testutil"
)

func TestExchangeCode(t *testing.T) {
	users := new(testutil.MockUserRepo)
	github := new(testutil.MockGithubClient)
	svc := NewAuthService(users, github)

	ghUser := &domain.User{GithubID: 77, Login: "octocat", AccessToken: "gho_token"}
	stored := &domain.User{ID: uuid.New(), GithubID: 77, Login: "octocat", AccessToken: "gho_token"}

	github.On("ExchangeCode", mock.Anything, "authcode").Return("gho_token", nil)
	github.On("AuthenticatedUser", mock.Anything, "gho_token").Return(ghUser, nil)
	users.On("Upsert", mock.Anything, ghUser).Return(stored, nil)

	user, err := svc.ExchangeCode(context.Background(), "authcode")

	require.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)
	assert.Equal(t, "gho_token", user.AccessToken)
	github.AssertExpectations(t)
}

func TestExchangeCodeEmpty(t *testing.T) {
	svc := NewAuthService(new(testutil.MockUserRepo), new(testutil.MockGithubClient))

	_, err := svc.ExchangeCode(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidOAuthCode)
}

func TestExchangeCodeRejected(t *testing.T) {
	users := new(testutil.MockUserRepo)
	github := new(testutil.MockGithubClient)
	svc := NewAuthService(users, github)

	github.On("ExchangeCode", mock.Anything, "badcode").Return("", domain.ErrGithubRejected)

	_, err := svc.ExchangeCode(context.Background(), "badcode")

	assert.ErrorIs(t, err, domain.ErrGithubRejected)
	users.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestUserFromToken(t *testing.T) {
	users := new(testutil.MockUserRepo)
	svc := NewAuthService(users, new(testutil.MockGithubClient))
	stored := &domain.User{ID: uuid.New(), Login: "octocat"}

	users.On("GetByToken", mock.Anything, "gho_token").Return(stored, nil)

	user, err := svc.UserFromToken(context.Background(), "gho_token")

	require.NoError(t, err)
	assert.Equal(t, stored, user)
}

func TestUserFromTokenMissing(t *testing.T) {
	svc := NewAuthService(new(testutil.MockUserRepo), new(testutil.MockGithubClient))

	_, err := svc.UserFromToken(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrMissingToken)
}

func TestUserFromTokenUnknown(t *testing.T) {
	users := new(testutil.MockUserRepo)
	svc := NewAuthService(users, new(testutil.MockGithubClient))

	users.On("GetByToken", mock.Anything, "stale").Return(nil, domain.ErrUserNotFound)

	_, err := svc.UserFromToken(context.Background(), "stale")

	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
