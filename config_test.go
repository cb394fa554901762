package adminauth

import (
	"testing"
	"time"
)

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	if cfg.JWT.AccessTTL != time.Hour {
		t.Fatalf("access TTL default: %v", cfg.JWT.AccessTTL)
	}
	if cfg.Refresh.TTL != 7*24*time.Hour {
		t.Fatalf("refresh TTL default: %v", cfg.Refresh.TTL)
	}
	if cfg.Passcode.TTL != 10*time.Minute || cfg.Passcode.RedisPrefix != "otp" {
		t.Fatalf("passcode defaults: %+v", cfg.Passcode)
	}
	if cfg.PreAuth.TTL != 10*time.Minute || cfg.PreAuth.RedisPrefix != "preauth" {
		t.Fatalf("pre-auth defaults: %+v", cfg.PreAuth)
	}
	if cfg.Revocation.RedisPrefix != "blacklist" || cfg.Revocation.LogoutTTL != time.Hour || cfg.Revocation.DefaultTTL != 24*time.Hour {
		t.Fatalf("revocation defaults: %+v", cfg.Revocation)
	}
	if cfg.Password.MinLength != 8 {
		t.Fatalf("password min length default: %d", cfg.Password.MinLength)
	}
	if cfg.PasswordReset.TokenTTL != time.Hour {
		t.Fatalf("reset token TTL default: %v", cfg.PasswordReset.TokenTTL)
	}
	if cfg.EmailVerification.TokenTTL != 24*time.Hour {
		t.Fatalf("verification token TTL default: %v", cfg.EmailVerification.TokenTTL)
	}
}

func TestApplyDefaultsTracksCustomPasscodeTTL(t *testing.T) {
	var cfg Config
	cfg.Passcode.TTL = 3 * time.Minute
	cfg.applyDefaults()

	// An unset pre-auth TTL follows the passcode TTL so the snapshot never
	// expires before the code it belongs to.
	if cfg.PreAuth.TTL != 3*time.Minute {
		t.Fatalf("expected pre-auth TTL to follow passcode TTL, got %v", cfg.PreAuth.TTL)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := testConfig()
		cfg.applyDefaults()
		return cfg
	}

	if err := func() error { c := valid(); return c.Validate() }(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = []byte("short") }},
		{"missing issuer", func(c *Config) { c.JWT.Issuer = "" }},
		{"missing audience", func(c *Config) { c.JWT.Audience = "" }},
		{"excessive leeway", func(c *Config) { c.JWT.Leeway = 5 * time.Minute }},
		{"tiny passcode ttl", func(c *Config) { c.Passcode.TTL = 30 * time.Second }},
		{"pre-auth shorter than passcode", func(c *Config) { c.PreAuth.TTL = 5 * time.Minute; c.Passcode.TTL = 10 * time.Minute }},
		{"refresh not longer than access", func(c *Config) { c.Refresh.TTL = c.JWT.AccessTTL }},
		{"revocation shorter than access", func(c *Config) { c.Revocation.DefaultTTL = 30 * time.Minute }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected missing redis to fail the build")
	}
}
