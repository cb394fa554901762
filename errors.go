package adminauth

import "errors"

// Semantic rejections. These are terminal for the given input: retrying the
// same request will fail the same way.
var (
	// ErrInvalidCredentials covers a bad (email, role) combination and a bad
	// password. The two are deliberately indistinguishable so a caller cannot
	// probe which roles exist for an email.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive rejects login for a deactivated account.
	ErrAccountInactive = errors.New("account inactive")
	// ErrInvalidOrExpiredCode rejects a wrong, consumed, or expired passcode.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	// ErrSessionExpired means the pre-auth snapshot is gone while the code was
	// otherwise accepted; the caller must restart at phase one.
	ErrSessionExpired = errors.New("login session expired")
	// ErrInvalidRefreshToken rejects an unknown or already-rotated refresh token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrRefreshTokenExpired rejects a matched refresh token past its expiry.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrEmailDispatchFailed is surfaced when the phase-one passcode email
	// cannot be sent. The issued passcode and snapshot are left to expire.
	ErrEmailDispatchFailed = errors.New("email dispatch failed")
	// ErrTokenInvalid rejects an access token that fails signature, issuer,
	// audience, or expiry verification.
	ErrTokenInvalid = errors.New("invalid access token")
	// ErrTokenRevoked rejects a structurally valid access token present in the
	// revocation registry.
	ErrTokenRevoked = errors.New("access token revoked")
	// ErrResetTokenInvalid rejects an unknown password-reset token.
	ErrResetTokenInvalid = errors.New("invalid password reset token")
	// ErrResetTokenExpired rejects a matched password-reset token past its expiry.
	ErrResetTokenExpired = errors.New("password reset token expired")
	// ErrVerificationTokenInvalid rejects an unknown email-verification token
	// or one whose owning account does not match the supplied email.
	ErrVerificationTokenInvalid = errors.New("invalid verification token")
	// ErrVerificationTokenExpired rejects a matched verification token past its expiry.
	ErrVerificationTokenExpired = errors.New("verification token expired")
	// ErrEmailAlreadyVerified rejects verification of an already-verified account.
	ErrEmailAlreadyVerified = errors.New("email already verified")
	// ErrPasswordPolicy rejects a new password below the configured minimum length.
	ErrPasswordPolicy = errors.New("password policy violation")
)

// Infrastructure failures. These are retryable and are never returned for a
// semantic rejection.
var (
	// ErrAuthUnavailable wraps failures of the identity store or the ephemeral
	// cache. Callers may retry with the same input.
	ErrAuthUnavailable = errors.New("authentication backend unavailable")
	// ErrEngineNotReady is returned when the engine was constructed without a
	// required dependency.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ErrAccountNotFound is the sentinel IdentityStore implementations return
// when no row matches a lookup. The engine never surfaces it to callers.
var ErrAccountNotFound = errors.New("account not found")
