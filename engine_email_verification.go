package adminauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VerifyEmail marks an account's email as verified. The lookup is by
// token, not email: verification tokens are unique per row, while the same
// email can belong to several role accounts. The supplied email is only
// cross-checked (case-insensitively) against the token's owner.
func (e *Engine) VerifyEmail(ctx context.Context, email, token string) error {
	if e == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		return ErrVerificationTokenInvalid
	}

	account, err := e.identity.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.logger.Warn("unknown verification token presented")
			return ErrVerificationTokenInvalid
		}
		return mapBackendErr(err)
	}

	if !strings.EqualFold(account.Email, strings.TrimSpace(email)) {
		e.logger.Warn("verification token/email mismatch",
			"token_owner", account.Email, "supplied", email)
		return ErrVerificationTokenInvalid
	}
	if account.EmailVerified {
		return ErrEmailAlreadyVerified
	}
	if account.VerificationExpiresAt == nil || account.VerificationExpiresAt.Before(time.Now()) {
		e.logger.Warn("expired verification token", "email", account.Email, "role", account.Role)
		return ErrVerificationTokenExpired
	}

	account.EmailVerified = true
	account.VerificationToken = nil
	account.VerificationExpiresAt = nil

	if err := e.identity.Update(ctx, account); err != nil {
		return mapBackendErr(err)
	}

	e.logger.Info("email verified", "email", account.Email, "role", account.Role)
	e.metricInc(MetricEmailVerified)
	return nil
}

// ResendVerification rotates the verification token for one (email, role)
// account and re-sends the verification email. When no matching unverified
// account exists it silently succeeds — this endpoint must not reveal
// whether an email is registered.
func (e *Engine) ResendVerification(ctx context.Context, email string, role Role) error {
	if e == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	email = normalizeEmail(email)
	if email == "" || !role.Valid() {
		return nil
	}

	account, err := e.identity.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.logger.Warn("verification resend for unknown account", "email", email, "role", role)
			return nil
		}
		return mapBackendErr(err)
	}
	if account.EmailVerified {
		return nil
	}

	token := uuid.NewString()
	expiry := time.Now().Add(e.config.EmailVerification.TokenTTL)
	account.VerificationToken = &token
	account.VerificationExpiresAt = &expiry

	if err := e.identity.Update(ctx, account); err != nil {
		return mapBackendErr(err)
	}

	link := e.config.EmailVerification.LinkBaseURL + "?token=" + token
	if err := e.mailer.SendVerification(ctx, account.Email, account.FullName(), link); err != nil {
		e.logger.Error("failed to send verification email", "email", account.Email, "error", err)
		return errors.Join(ErrEmailDispatchFailed, err)
	}

	e.logger.Info("verification email resent", "email", account.Email, "role", account.Role)
	e.metricInc(MetricVerificationResent)
	return nil
}
