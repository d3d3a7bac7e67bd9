package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu/internal/auth"
	"qrmenu/internal/domain"
)

type fakeOwners struct {
	byEmail map[string]*domain.Owner
}

func newFakeOwners() *fakeOwners {
	return &fakeOwners{byEmail: make(map[string]*domain.Owner)}
}

func (o *fakeOwners) CreateOwner(owner *domain.Owner) error {
	o.byEmail[owner.Email] = owner
	return nil
}

func (o *fakeOwners) GetOwnerByEmail(email string) (*domain.Owner, error) {
	owner, ok := o.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return owner, nil
}

func newAuthService() (*AuthService, *fakeOwners, *auth.TokenManager) {
	owners := newFakeOwners()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(owners, tokens), owners, tokens
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, owners, tokens := newAuthService()

	owner, token, err := svc.Register("Owner@Example.com", "letmein-please")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", owner.Email)
	assert.NotEmpty(t, owner.ID)
	assert.NotEqual(t, "letmein-please", owner.PasswordHash)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, claims.OwnerID)

	assert.Contains(t, owners.byEmail, "owner@example.com")
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthService()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "bad email", email: "not-an-email", password: "letmein-please", wantErr: ErrValidation},
		{name: "empty email", email: "", password: "letmein-please", wantErr: ErrValidation},
		{name: "short password", email: "owner@example.com", password: "short", wantErr: ErrValidation},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, _, err := svc.Register(testCase.email, testCase.password)
			assert.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService()

	_, _, err := svc.Register("owner@example.com", "letmein-please")
	require.NoError(t, err)

	_, _, err = svc.Register("owner@example.com", "another-password")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _, tokens := newAuthService()

	owner, _, err := svc.Register("owner@example.com", "letmein-please")
	require.NoError(t, err)

	token, err := svc.Login("owner@example.com", "letmein-please")
	require.NoError(t, err)
	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, claims.OwnerID)

	_, err = svc.Login("owner@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("stranger@example.com", "letmein-please")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
