package adminauth

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine. Zero values are filled with
// the defaults below by [Builder.Build]; only the JWT secret, issuer, and
// audience have no default and must be supplied.
type Config struct {
	JWT               JWTConfig
	Refresh           RefreshConfig
	Passcode          PasscodeConfig
	PreAuth           PreAuthConfig
	Revocation        RevocationConfig
	Password          PasswordConfig
	PasswordReset     PasswordResetConfig
	EmailVerification EmailVerificationConfig
	Metrics           MetricsConfig
}

// JWTConfig configures the signed access tokens. HMAC-SHA256 over the
// shared secret; issuer and audience are embedded and enforced on verify.
type JWTConfig struct {
	Secret    []byte
	Issuer    string
	Audience  string
	AccessTTL time.Duration // default 1h
	Leeway    time.Duration // clock-skew tolerance on verify, default 0
}

// RefreshConfig configures the opaque refresh tokens persisted on the
// account record.
type RefreshConfig struct {
	TTL time.Duration // default 7 days
}

// PasscodeConfig configures the one-time 6-digit login codes.
type PasscodeConfig struct {
	TTL         time.Duration // default 10m
	RedisPrefix string        // default "otp"
}

// PreAuthConfig configures the phase-one identity snapshot. Its TTL is kept
// equal to the passcode TTL by default so the two expire in the same window.
type PreAuthConfig struct {
	TTL         time.Duration // default 10m
	RedisPrefix string        // default "preauth"
}

// RevocationConfig configures the access-token revocation registry.
type RevocationConfig struct {
	RedisPrefix string        // default "blacklist"
	LogoutTTL   time.Duration // TTL applied on logout, default 1h
	DefaultTTL  time.Duration // TTL for generic revocation, default 24h
}

// PasswordConfig configures hashing and the minimum-length policy.
type PasswordConfig struct {
	MinLength  int // default 8
	BcryptCost int // default bcrypt.DefaultCost
}

// PasswordResetConfig configures the reset-request flow.
type PasswordResetConfig struct {
	TokenTTL    time.Duration // default 1h
	LinkBaseURL string        // reset page; token appended as ?token=
}

// EmailVerificationConfig configures verification-token issuance.
type EmailVerificationConfig struct {
	TokenTTL    time.Duration // default 24h
	LinkBaseURL string
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: time.Hour,
		},
		Refresh: RefreshConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Passcode: PasscodeConfig{
			TTL:         10 * time.Minute,
			RedisPrefix: "otp",
		},
		PreAuth: PreAuthConfig{
			TTL:         10 * time.Minute,
			RedisPrefix: "preauth",
		},
		Revocation: RevocationConfig{
			RedisPrefix: "blacklist",
			LogoutTTL:   time.Hour,
			DefaultTTL:  24 * time.Hour,
		},
		Password: PasswordConfig{
			MinLength: 8,
		},
		PasswordReset: PasswordResetConfig{
			TokenTTL: time.Hour,
		},
		EmailVerification: EmailVerificationConfig{
			TokenTTL: 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func (c *Config) applyDefaults() {
	def := defaultConfig()
	if c.JWT.AccessTTL <= 0 {
		c.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if c.Refresh.TTL <= 0 {
		c.Refresh.TTL = def.Refresh.TTL
	}
	if c.Passcode.TTL <= 0 {
		c.Passcode.TTL = def.Passcode.TTL
	}
	if c.Passcode.RedisPrefix == "" {
		c.Passcode.RedisPrefix = def.Passcode.RedisPrefix
	}
	if c.PreAuth.TTL <= 0 {
		c.PreAuth.TTL = c.Passcode.TTL
	}
	if c.PreAuth.RedisPrefix == "" {
		c.PreAuth.RedisPrefix = def.PreAuth.RedisPrefix
	}
	if c.Revocation.RedisPrefix == "" {
		c.Revocation.RedisPrefix = def.Revocation.RedisPrefix
	}
	if c.Revocation.LogoutTTL <= 0 {
		c.Revocation.LogoutTTL = def.Revocation.LogoutTTL
	}
	if c.Revocation.DefaultTTL <= 0 {
		c.Revocation.DefaultTTL = def.Revocation.DefaultTTL
	}
	if c.Password.MinLength <= 0 {
		c.Password.MinLength = def.Password.MinLength
	}
	if c.PasswordReset.TokenTTL <= 0 {
		c.PasswordReset.TokenTTL = def.PasswordReset.TokenTTL
	}
	if c.EmailVerification.TokenTTL <= 0 {
		c.EmailVerification.TokenTTL = def.EmailVerification.TokenTTL
	}
}

// Validate rejects configurations the engine cannot run with. Called by
// [Builder.Build] after defaulting.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("jwt secret must be at least 32 bytes")
	}
	if c.JWT.Issuer == "" {
		return errors.New("jwt issuer required")
	}
	if c.JWT.Audience == "" {
		return errors.New("jwt audience required")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("invalid jwt leeway")
	}
	if c.Passcode.TTL < time.Minute {
		return errors.New("passcode TTL below one minute")
	}
	if c.PreAuth.TTL < c.Passcode.TTL {
		// The snapshot must outlive (or match) the code, or a valid code
		// could outlast its own login session.
		return errors.New("pre-auth TTL shorter than passcode TTL")
	}
	if c.Refresh.TTL <= c.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if c.Revocation.DefaultTTL < c.JWT.AccessTTL {
		return errors.New("revocation default TTL shorter than access TTL")
	}
	return nil
}
