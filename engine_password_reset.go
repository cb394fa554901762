package adminauth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// resetRequestedMessage is returned whether or not the email matched an
// account, so the endpoint cannot be used to probe for registered emails.
const resetRequestedMessage = "If an account exists with this email, a password reset link has been sent"

// RequestPasswordReset starts the reset flow for an email address. The
// lookup is not role-qualified: the first account matching the email (in
// creation order) receives the token. The returned message is identical
// for matched and unmatched emails.
//
// A failed reset email is logged but not surfaced — reporting it would
// reveal that the account exists, and the persisted token lets the user
// simply request again.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if e == nil || e.identity == nil {
		return "", ErrEngineNotReady
	}
	email = normalizeEmail(email)
	if email == "" {
		return resetRequestedMessage, nil
	}

	account, err := e.identity.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.logger.Warn("password reset requested for unknown email", "email", email)
			e.metricInc(MetricPasswordResetRequest)
			return resetRequestedMessage, nil
		}
		return "", mapBackendErr(err)
	}

	token := uuid.NewString()
	expiry := time.Now().Add(e.config.PasswordReset.TokenTTL)
	account.PasswordResetToken = &token
	account.PasswordResetExpiresAt = &expiry

	if err := e.identity.Update(ctx, account); err != nil {
		return "", mapBackendErr(err)
	}

	link := e.config.PasswordReset.LinkBaseURL + "?token=" + token
	if err := e.mailer.SendPasswordReset(ctx, account.Email, account.FirstName, link); err != nil {
		e.logger.Error("failed to send password reset email", "email", account.Email, "error", err)
	} else {
		e.logger.Info("password reset requested", "email", account.Email, "role", account.Role)
	}

	e.metricInc(MetricPasswordResetRequest)
	return resetRequestedMessage, nil
}

// ConfirmPasswordReset completes the flow: it resolves the account by the
// reset token (unique per row, so no role disambiguation is needed),
// checks the expiry, and installs the new password. The reset token and
// any live refresh token are cleared, forcing a fresh login.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if e == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		e.metricInc(MetricPasswordResetConfirmFailure)
		return ErrResetTokenInvalid
	}
	if len(newPassword) < e.config.Password.MinLength {
		e.metricInc(MetricPasswordResetConfirmFailure)
		return ErrPasswordPolicy
	}

	account, err := e.identity.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.logger.Warn("unknown password reset token presented")
			e.metricInc(MetricPasswordResetConfirmFailure)
			return ErrResetTokenInvalid
		}
		return mapBackendErr(err)
	}

	if account.PasswordResetExpiresAt == nil || account.PasswordResetExpiresAt.Before(time.Now()) {
		e.logger.Warn("expired password reset token", "email", account.Email, "role", account.Role)
		e.metricInc(MetricPasswordResetConfirmFailure)
		return ErrResetTokenExpired
	}

	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		return err
	}

	account.PasswordHash = hash
	account.PasswordResetToken = nil
	account.PasswordResetExpiresAt = nil
	account.RefreshToken = nil
	account.RefreshTokenExpiresAt = nil

	if err := e.identity.Update(ctx, account); err != nil {
		return mapBackendErr(err)
	}

	e.logger.Info("password reset completed", "email", account.Email, "role", account.Role)
	e.metricInc(MetricPasswordResetConfirmSuccess)
	return nil
}
