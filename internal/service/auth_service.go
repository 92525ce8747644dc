package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	coreauth "go-product-catalog/internal/core/auth"
	"go-product-catalog/internal/domain"
	"go-product-catalog/pkg/apperr"
	"go-product-catalog/pkg/utils"
)

type AuthUser struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type AuthResult struct {
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	ExpiresIn   int      `json:"expiresIn"`
	User        AuthUser `json:"user"`
}

type AuthService struct {
	accounts domain.AccountRepository
	lockout  *Lockout
	jwter    *coreauth.JWTer
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(accounts domain.AccountRepository, lockout *Lockout, jwter *coreauth.JWTer, log *zap.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		lockout:  lockout,
		jwter:    jwter,
		log:      log,
		now:      time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	a, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if a == nil {
		// 统一返回 INVALID_CREDENTIALS，避免用户名枚举
		return nil, apperr.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.lockout.EvaluateBeforeAttempt(ctx, a, now); err != nil {
		return nil, err
	}

	if !utils.CheckPassword(password, a.PasswordHash) {
		return nil, s.lockout.RecordFailure(ctx, a, now)
	}

	if err := s.lockout.RecordSuccess(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("login success", zap.String("account_id", a.ID))
	return s.result(a)
}

// Register 注册即发 token；账号仍是未激活，首登会被激活检查拦下
func (s *AuthService) Register(ctx context.Context, username, password string, roles []string) (*AuthResult, error) {
	taken, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.ErrUsernameTaken
	}

	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}

	a := &domain.Account{
		ID:           utils.NewID(),
		Username:     username,
		PasswordHash: utils.HashPassword(password),
		Roles:        roles,
		IsActive:     false,
	}
	// 预检查只是为了报错友好，唯一索引才是权威守卫（repo 把冲突翻译回来）
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("account registered", zap.String("account_id", a.ID), zap.String("username", a.Username))
	return s.result(a)
}

func (s *AuthService) result(a *domain.Account) (*AuthResult, error) {
	tok, err := s.jwter.Issue(a.ID, a.Roles)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwter.TTL.Seconds()),
		User:        AuthUser{ID: a.ID, Username: a.Username, Roles: a.Roles},
	}, nil
}
