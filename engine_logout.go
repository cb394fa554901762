package adminauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Logout revokes the caller's current access token for the configured
// logout TTL (default one hour, matching the access-token lifetime). The
// raw token string is the revocation key; it is not re-parsed, so even a
// malformed token can be revoked. Durable state is untouched.
func (e *Engine) Logout(ctx context.Context, accessToken string) error {
	return e.RevokeAccessToken(ctx, accessToken, e.config.Revocation.LogoutTTL)
}

// RevokeAccessToken records the token in the revocation registry for ttl.
// A non-positive ttl uses the configured default (24h), which covers any
// token's remaining natural lifetime.
func (e *Engine) RevokeAccessToken(ctx context.Context, accessToken string, ttl time.Duration) error {
	if e == nil || e.revocations == nil {
		return ErrEngineNotReady
	}
	if ttl <= 0 {
		ttl = e.config.Revocation.DefaultTTL
	}
	if err := e.revocations.Revoke(ctx, accessToken, ttl); err != nil {
		return mapBackendErr(err)
	}
	e.logger.Info("access token revoked")
	e.metricInc(MetricLogout)
	return nil
}

// Authorize is the full per-request check: signature, issuer, audience,
// and expiry via the token manager, then the revocation registry. The
// registry is mandatory — a structurally valid token that has been revoked
// is rejected. Callers must route every authenticated request through this
// (or through middleware.Guard, which wraps it).
func (e *Engine) Authorize(ctx context.Context, accessToken string) (*AuthContext, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	revoked, err := e.revocations.IsRevoked(ctx, accessToken)
	if err != nil {
		return nil, mapBackendErr(err)
	}
	if revoked {
		e.logger.Warn("revoked access token presented", "email", claims.Email)
		e.metricInc(MetricRevokedTokenRejected)
		return nil, ErrTokenRevoked
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	role, ok := ParseRole(claims.Role)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return &AuthContext{
		AccountID: accountID,
		Email:     claims.Email,
		Role:      role,
	}, nil
}
