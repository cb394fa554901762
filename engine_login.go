package adminauth

import (
	"context"
	"errors"
	"time"

	"github.com/shms-platform/adminauth/internal"
	"github.com/shms-platform/adminauth/internal/stores"
)

const challengeSentMessage = "Verification code sent to your email"

// BeginLogin runs phase one of the login protocol: it resolves the account
// by (email, role), issues a one-time passcode, snapshots the identity for
// phase two, and dispatches the passcode by email.
//
// A missing account and a wrong role selection both fail with
// [ErrInvalidCredentials]; the two are deliberately indistinguishable. If
// the email cannot be sent the phase fails with [ErrEmailDispatchFailed],
// but the issued passcode and snapshot are left in place — they expire
// unused, and a retry simply overwrites them.
func (e *Engine) BeginLogin(ctx context.Context, email string, role Role) (*LoginChallenge, error) {
	if e == nil || e.identity == nil {
		return nil, ErrEngineNotReady
	}
	email = normalizeEmail(email)
	if email == "" || !role.Valid() {
		e.metricInc(MetricBeginLoginFailure)
		return nil, ErrInvalidCredentials
	}

	account, err := e.identity.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.logger.Warn("login attempt for unknown email/role combination",
				"email", email, "role", role)
			e.metricInc(MetricBeginLoginFailure)
			return nil, ErrInvalidCredentials
		}
		e.metricInc(MetricBeginLoginFailure)
		return nil, mapBackendErr(err)
	}
	if !account.Active {
		e.logger.Warn("login attempt for inactive account", "email", email, "role", role)
		e.metricInc(MetricBeginLoginFailure)
		return nil, ErrAccountInactive
	}

	slot := loginSlot(account.Email, account.Role)

	code, err := e.passcodes.Issue(ctx, slot)
	if err != nil {
		e.metricInc(MetricBeginLoginFailure)
		return nil, mapBackendErr(err)
	}

	snapshot := &stores.PreAuthSnapshot{
		Email:     account.Email,
		Role:      string(account.Role),
		FirstName: account.FirstName,
		LastName:  account.LastName,
	}
	if err := e.preauth.Put(ctx, slot, snapshot); err != nil {
		e.metricInc(MetricBeginLoginFailure)
		return nil, mapBackendErr(err)
	}

	if err := e.mailer.SendPasscode(ctx, account.Email, account.FullName(), code, e.config.Passcode.TTL); err != nil {
		// The pending code and snapshot are not rolled back; they are
		// harmless residue that expires within the passcode TTL.
		e.logger.Error("failed to send passcode email", "email", account.Email, "error", err)
		e.metricInc(MetricBeginLoginFailure)
		return nil, errors.Join(ErrEmailDispatchFailed, err)
	}

	e.logger.Info("pre-login successful", "email", account.Email, "role", account.Role)
	e.metricInc(MetricBeginLoginSuccess)

	return &LoginChallenge{
		Email:     account.Email,
		Role:      account.Role,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Message:   challengeSentMessage,
	}, nil
}

// VerifyLogin runs phase two: it consumes the passcode, reads and discards
// the pre-auth snapshot, re-verifies the password against the durable
// record, and issues the token pair. The refresh token is persisted on the
// account with a fresh expiry; any previous refresh token is implicitly
// invalidated by the overwrite.
func (e *Engine) VerifyLogin(ctx context.Context, email string, role Role, passwordPlain, code string) (*AuthResult, error) {
	if e == nil || e.identity == nil {
		return nil, ErrEngineNotReady
	}
	email = normalizeEmail(email)
	if email == "" || !role.Valid() {
		e.metricInc(MetricVerifyLoginFailure)
		return nil, ErrInvalidCredentials
	}

	slot := loginSlot(email, role)

	ok, err := e.passcodes.Validate(ctx, slot, code)
	if err != nil {
		e.metricInc(MetricVerifyLoginFailure)
		return nil, mapBackendErr(err)
	}
	if !ok {
		e.logger.Warn("invalid passcode supplied", "email", email, "role", role)
		e.metricInc(MetricVerifyLoginFailure)
		return nil, ErrInvalidOrExpiredCode
	}

	// The code was consumed above. If the snapshot is gone the caller must
	// restart at phase one; this is distinct from a bad code on purpose.
	if _, err := e.preauth.Get(ctx, slot); err != nil {
		if errors.Is(err, stores.ErrPreAuthNotFound) {
			e.logger.Warn("pre-auth snapshot expired", "email", email, "role", role)
			e.metricInc(MetricVerifyLoginFailure)
			return nil, ErrSessionExpired
		}
		e.metricInc(MetricVerifyLoginFailure)
		return nil, mapBackendErr(err)
	}

	// Re-fetch the durable record; the snapshot is never trusted for
	// security-relevant fields.
	account, err := e.identity.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.logger.Error("account missing after passcode validation", "email", email, "role", role)
			e.metricInc(MetricVerifyLoginFailure)
			return nil, ErrInvalidCredentials
		}
		e.metricInc(MetricVerifyLoginFailure)
		return nil, mapBackendErr(err)
	}

	ok, err = e.passwordHash.Verify(passwordPlain, account.PasswordHash)
	if err != nil || !ok {
		e.logger.Warn("invalid password", "email", email, "role", role)
		e.metricInc(MetricVerifyLoginFailure)
		return nil, ErrInvalidCredentials
	}

	result, err := e.issueTokens(ctx, account)
	if err != nil {
		e.metricInc(MetricVerifyLoginFailure)
		return nil, err
	}

	// Snapshot deletion is best-effort: a leftover entry expires on its own
	// and cannot be replayed because the passcode is already consumed.
	if err := e.preauth.Delete(ctx, slot); err != nil {
		e.logger.Warn("failed to delete pre-auth snapshot", "email", email, "role", role, "error", err)
	}

	e.logger.Info("login successful", "email", account.Email, "role", account.Role)
	e.metricInc(MetricVerifyLoginSuccess)
	return result, nil
}

// issueTokens mints the access/refresh pair and persists the rotated
// refresh token on the account record.
func (e *Engine) issueTokens(ctx context.Context, account *Account) (*AuthResult, error) {
	access, expiresAt, err := e.jwtManager.CreateAccess(account.ID.String(), account.Email, string(account.Role))
	if err != nil {
		return nil, err
	}

	refresh, err := internal.NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	refreshExpiry := time.Now().Add(e.config.Refresh.TTL)
	account.RefreshToken = &refresh
	account.RefreshTokenExpiresAt = &refreshExpiry

	if err := e.identity.Update(ctx, account); err != nil {
		return nil, mapBackendErr(err)
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		Account: AccountSummary{
			ID:        account.ID,
			Email:     account.Email,
			Role:      account.Role,
			FirstName: account.FirstName,
			LastName:  account.LastName,
		},
	}, nil
}
