package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	coreauth "go-product-catalog/internal/core/auth"
	"go-product-catalog/internal/domain"
	"go-product-catalog/pkg/apperr"
	"go-product-catalog/pkg/utils"
)

func newTestAuthService(repo domain.AccountRepository) *AuthService {
	jwter := &coreauth.JWTer{
		Secret: []byte("test-secret"),
		Issuer: "catalog-test",
		TTL:    time.Hour,
	}
	return NewAuthService(repo, newTestLockout(repo), jwter, zap.NewNop())
}

func seedAccount(username, password string, active bool) *domain.Account {
	return &domain.Account{
		ID:           utils.NewID(),
		Username:     username,
		PasswordHash: utils.HashPassword(password),
		Roles:        []string{domain.RoleUser, domain.RoleProductRead},
		IsActive:     active,
	}
}

func TestLoginSuccess(t *testing.T) {
	a := seedAccount("alice", "correct-horse", true)
	a.FailedLoginAttempts = 3
	repo := newFakeAccounts(a)
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), "alice", "correct-horse")
	require.NoError(t, err)

	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, 3600, res.ExpiresIn)
	assert.Equal(t, a.ID, res.User.ID)
	assert.Equal(t, "alice", res.User.Username)
	assert.ElementsMatch(t, []string{domain.RoleUser, domain.RoleProductRead}, res.User.Roles)

	// 成功登录清零计数
	assert.Equal(t, 0, a.FailedLoginAttempts)
	assert.Nil(t, a.AccountLockedUntil)

	// token 可被解析且带角色
	claims, err := svc.jwter.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, a.ID, claims.UID)
	assert.True(t, claims.HasAnyRole(domain.RoleProductRead))
}

func TestLoginUnknownUsername(t *testing.T) {
	svc := newTestAuthService(newFakeAccounts())

	// 不存在的用户名同样报 INVALID_CREDENTIALS，不暴露是否注册过
	_, err := svc.Login(context.Background(), "nobody", "whatever")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
}

func TestLoginWrongPasswordCountsUp(t *testing.T) {
	a := seedAccount("bob", "right-pass", true)
	repo := newFakeAccounts(a)
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), "bob", "wrong-pass")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
	assert.Contains(t, err.Error(), "Attempt 1/5")
	assert.Equal(t, 1, a.FailedLoginAttempts)
}

func TestLoginLocksAfterFiveFailures(t *testing.T) {
	a := seedAccount("carol", "right-pass", true)
	repo := newFakeAccounts(a)
	svc := newTestAuthService(repo)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Login(ctx, "carol", "wrong")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
	}
	_, err := svc.Login(ctx, "carol", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAccountLocked))

	// 锁定窗口内密码对了也进不来
	_, err = svc.Login(ctx, "carol", "right-pass")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAccountLocked))
}

func TestLoginAutoUnlockAfterWindow(t *testing.T) {
	a := seedAccount("dave", "right-pass", true)
	repo := newFakeAccounts(a)
	svc := newTestAuthService(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = svc.Login(ctx, "dave", "wrong")
	}
	require.NotNil(t, a.AccountLockedUntil)

	// 拨快时钟越过锁定窗口
	svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }

	res, err := svc.Login(ctx, "dave", "right-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, 0, a.FailedLoginAttempts)
	assert.Nil(t, a.AccountLockedUntil)
}

func TestLoginInactiveAccount(t *testing.T) {
	a := seedAccount("erin", "right-pass", false)
	svc := newTestAuthService(newFakeAccounts(a))

	_, err := svc.Login(context.Background(), "erin", "right-pass")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAccountInactive))
}

func TestRegisterDefaultsAndToken(t *testing.T) {
	repo := newFakeAccounts()
	svc := newTestAuthService(repo)

	res, err := svc.Register(context.Background(), "frank", "some-password", nil)
	require.NoError(t, err)

	// 注册即发 token，但账号默认未激活
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, []string{domain.RoleUser}, res.User.Roles)

	a, _ := repo.FindByUsername(context.Background(), "frank")
	require.NotNil(t, a)
	assert.False(t, a.IsActive)
	assert.Equal(t, 0, a.FailedLoginAttempts)
	assert.Nil(t, a.AccountLockedUntil)
	assert.NotEqual(t, "some-password", a.PasswordHash)
	assert.True(t, utils.CheckPassword("some-password", a.PasswordHash))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeAccounts()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "grace", "password-one", nil)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "grace", "password-two", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUsernameTaken))

	// 没有第二个账号被写进去
	_, total, err := repo.List(ctx, "grace", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestRegisterKeepsGivenRoles(t *testing.T) {
	svc := newTestAuthService(newFakeAccounts())

	res, err := svc.Register(context.Background(), "heidi", "some-password",
		[]string{domain.RoleAdmin, domain.RoleProductWrite})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{domain.RoleAdmin, domain.RoleProductWrite}, res.User.Roles)
}
