package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-product-catalog/internal/domain"
	"go-product-catalog/pkg/apperr"
)

// Lockout 登录失败锁定状态机。
// 簿记是读-改-写，没有行锁：同一账号并发失败可能少记/多记，按已知竞态接受。
type Lockout struct {
	accounts     domain.AccountRepository
	log          *zap.Logger
	Threshold    int
	LockDuration time.Duration
}

func NewLockout(accounts domain.AccountRepository, log *zap.Logger, threshold int, lockDuration time.Duration) *Lockout {
	return &Lockout{
		accounts:     accounts,
		log:          log,
		Threshold:    threshold,
		LockDuration: lockDuration,
	}
}

// EvaluateBeforeAttempt 登录前置检查：过期先自动解锁，再判锁定、判激活
func (l *Lockout) EvaluateBeforeAttempt(ctx context.Context, a *domain.Account, now time.Time) error {
	if a.AccountLockedUntil != nil && now.After(*a.AccountLockedUntil) {
		a.AccountLockedUntil = nil
		a.FailedLoginAttempts = 0
		if err := l.accounts.Save(ctx, a); err != nil {
			return err
		}
		l.log.Info("account auto-unlocked", zap.String("account_id", a.ID))
	}

	if a.Locked(now) {
		remaining := a.AccountLockedUntil.Sub(now)
		minutes := (remaining.Milliseconds() + 59_999) / 60_000 // 向上取整到分钟
		return apperr.ErrAccountLocked.WithMessage(
			"Account is temporarily locked due to too many failed attempts. Please try again in approximately %d minute(s).", minutes)
	}

	if !a.IsActive {
		return apperr.ErrAccountInactive.WithMessage(
			"Your account has not been activated yet. Please wait for administrator approval.")
	}
	return nil
}

// RecordSuccess 成功登录清零计数并解锁
func (l *Lockout) RecordSuccess(ctx context.Context, a *domain.Account) error {
	a.FailedLoginAttempts = 0
	a.AccountLockedUntil = nil
	return l.accounts.Save(ctx, a)
}

// RecordFailure 失败计数 +1；到阈值立即锁定（第 N 次没有宽限）
func (l *Lockout) RecordFailure(ctx context.Context, a *domain.Account, now time.Time) error {
	a.FailedLoginAttempts++

	if a.FailedLoginAttempts >= l.Threshold {
		until := now.Add(l.LockDuration)
		a.AccountLockedUntil = &until
		if err := l.accounts.Save(ctx, a); err != nil {
			return err
		}
		l.log.Warn("account locked",
			zap.String("account_id", a.ID),
			zap.Int("failed_attempts", a.FailedLoginAttempts),
			zap.Time("locked_until", until),
		)
		return apperr.ErrAccountLocked.WithMessage(
			"Too many failed login attempts. Account locked for %d minutes.", int(l.LockDuration.Minutes()))
	}

	if err := l.accounts.Save(ctx, a); err != nil {
		return err
	}
	return apperr.ErrInvalidCredentials.WithMessage(
		"Invalid username or password. Attempt %d/%d.", a.FailedLoginAttempts, l.Threshold)
}
