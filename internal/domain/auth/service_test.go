package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/internal/core/apperror"
	"dukapos/internal/core/id"
)

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[string]*User // keyed by phone
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *User) error {
	f.users[user.Phone] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID.String())
}

func (f *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*User, error) {
	u, ok := f.users[phone]
	if !ok {
		return nil, apperror.NewNotFound("user", phone)
	}
	return u, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *User) error {
	f.users[user.Phone] = user
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _ UserFilter) ([]User, int, error) {
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) Exists(_ context.Context, phone string) (bool, error) {
	_, ok := f.users[phone]
	return ok, nil
}

type fakeTokenRepo struct {
	tokens map[string]*RefreshToken // keyed by token hash
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*RefreshToken{}}
}

func (f *fakeTokenRepo) SaveRefreshToken(_ context.Context, token *RefreshToken) error {
	f.tokens[token.TokenHash] = token
	return nil
}

func (f *fakeTokenRepo) GetRefreshToken(_ context.Context, tokenHash string) (*RefreshToken, error) {
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh_token", tokenHash)
	}
	return t, nil
}

func (f *fakeTokenRepo) RevokeRefreshToken(_ context.Context, tokenID id.ID, reason string) error {
	for _, t := range f.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllUserTokens(_ context.Context, userID id.ID, reason string) error {
	for _, t := range f.tokens {
		if t.UserID == userID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (f *fakeTokenRepo) CleanupExpiredTokens(_ context.Context) (int, error) {
	removed := 0
	for hash, t := range f.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(f.tokens, hash)
			removed++
		}
	}
	return removed, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeTokenRepo) {
	t.Helper()
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	svc := NewService(users, tokens, &fakeTxManager{}, jwtSvc, DefaultServiceConfig())
	return svc, users, tokens
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Phone:    "+254700111222",
		Name:     "Amina",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, user.Role, "role defaults to staff")
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	require.Contains(t, users.users, "+254700111222")

	pair, logged, err := svc.Login(ctx, Credentials{Phone: "+254700111222", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotNil(t, logged.LastLoginAt)
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Phone: "+254700111222", Name: "Amina", Password: "short"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = svc.Register(ctx, RegisterRequest{Phone: "+254700111222", Name: "Amina", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Phone: "+254700111222", Name: "Other", Password: "hunter22"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))
}

func TestService_LoginWrongPassword(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Phone: "+254700111222", Name: "Amina", Password: "hunter22"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, Credentials{Phone: "+254700111222", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
	assert.Equal(t, 1, users.users["+254700111222"].FailedLoginAttempts)

	_, _, err = svc.Login(ctx, Credentials{Phone: "+254799000000", Password: "hunter22"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized), "unknown phone looks like bad credentials")
}

func TestService_LockoutAfterRepeatedFailures(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Phone: "+254700111222", Name: "Amina", Password: "hunter22"})
	require.NoError(t, err)

	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, err = svc.Login(ctx, Credentials{Phone: "+254700111222", Password: "wrong"})
		require.Error(t, err)
	}
	assert.True(t, users.users["+254700111222"].IsLocked())

	_, _, err = svc.Login(ctx, Credentials{Phone: "+254700111222", Password: "hunter22"})
	require.Error(t, err, "correct password rejected while locked")
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestService_LoginDisabledAccount(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Phone: "+254700111222", Name: "Amina", Password: "hunter22"})
	require.NoError(t, err)
	users.users["+254700111222"].IsActive = false

	_, _, err = svc.Login(ctx, Credentials{Phone: "+254700111222", Password: "hunter22"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestService_RefreshTokenRotation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Phone: "+254700111222", Name: "Amina", Password: "hunter22"})
	require.NoError(t, err)

	pair, _, err := svc.Login(ctx, Credentials{Phone: "+254700111222", Password: "hunter22"})
	require.NoError(t, err)

	next, err := svc.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The old token was revoked by the rotation.
	_, err = svc.RefreshToken(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))

	require.NoError(t, svc.Logout(ctx, user.ID))
	_, err = svc.RefreshToken(ctx, next.RefreshToken)
	require.Error(t, err, "logout revokes outstanding refresh tokens")
}

func TestService_RefreshTokenGarbage(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RefreshToken(context.Background(), "nonsense")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}
