package adminauth

import (
	"context"
	"errors"
	"time"
)

// Refresh exchanges a live refresh token for a new token pair. The stored
// refresh token is rotated, not extended: the presented token becomes
// unusable the moment the new one is persisted, keeping exactly one active
// refresh token per account.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if e == nil || e.identity == nil {
		return nil, ErrEngineNotReady
	}
	if refreshToken == "" {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrInvalidRefreshToken
	}

	account, err := e.identity.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.logger.Warn("unknown refresh token presented")
			e.metricInc(MetricRefreshFailure)
			return nil, ErrInvalidRefreshToken
		}
		e.metricInc(MetricRefreshFailure)
		return nil, mapBackendErr(err)
	}

	if account.RefreshTokenExpiresAt == nil || account.RefreshTokenExpiresAt.Before(time.Now()) {
		e.logger.Warn("expired refresh token", "email", account.Email, "role", account.Role)
		e.metricInc(MetricRefreshFailure)
		return nil, ErrRefreshTokenExpired
	}

	result, err := e.issueTokens(ctx, account)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	e.logger.Info("token refreshed", "email", account.Email, "role", account.Role)
	e.metricInc(MetricRefreshSuccess)
	return result, nil
}
