package adminauth

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/shms-platform/adminauth/internal/stores"
	"github.com/shms-platform/adminauth/jwt"
	"github.com/shms-platform/adminauth/password"
)

// Engine drives the two-phase login protocol, refresh-token rotation, and
// access-token revocation. It holds no mutable in-process state of its own;
// all per-request state lives in the Redis stores and the identity store,
// so a single Engine is safe for concurrent use.
type Engine struct {
	config Config

	identity IdentityStore
	mailer   EmailSender

	passcodes   *stores.PasscodeStore
	preauth     *stores.PreAuthStore
	revocations *stores.RevocationStore

	jwtManager   *jwt.Manager
	passwordHash *password.Hasher

	metrics *Metrics
	logger  *slog.Logger
}

// Builder assembles an Engine. Use New, chain the With* setters, then Build.
type Builder struct {
	config Config

	redis    redis.UniversalClient
	identity IdentityStore
	mailer   EmailSender
	logger   *slog.Logger

	built bool
}

func New() *Builder {
	return &Builder{config: defaultConfig()}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithIdentityStore(store IdentityStore) *Builder {
	b.identity = store
	return b
}

func (b *Builder) WithMailer(mailer EmailSender) *Builder {
	b.mailer = mailer
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration, wires the stores, and returns the
// engine. A builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.identity == nil {
		return nil, errors.New("identity store required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	cfg := b.config
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jm, err := jwt.NewManager(jwt.Config{
		Secret:    cfg.JWT.Secret,
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		AccessTTL: cfg.JWT.AccessTTL,
		Leeway:    cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	ph, err := password.NewHasher(cfg.Password.BcryptCost)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b.built = true

	return &Engine{
		config:       cfg,
		identity:     b.identity,
		mailer:       b.mailer,
		passcodes:    stores.NewPasscodeStore(b.redis, cfg.Passcode.RedisPrefix, cfg.Passcode.TTL),
		preauth:      stores.NewPreAuthStore(b.redis, cfg.PreAuth.RedisPrefix, cfg.PreAuth.TTL),
		revocations:  stores.NewRevocationStore(b.redis, cfg.Revocation.RedisPrefix),
		jwtManager:   jm,
		passwordHash: ph,
		metrics:      NewMetrics(cfg.Metrics),
		logger:       logger,
	}, nil
}

// MetricsSnapshot returns a copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// loginSlot is the shared cache-key fragment for a login attempt. Phase one
// and phase two must resolve to the same slot regardless of caller casing.
func loginSlot(email string, role Role) string {
	return normalizeEmail(email) + ":" + string(role)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// mapBackendErr converts a store or identity failure into the engine-level
// transient sentinel while keeping the underlying detail in the chain.
func mapBackendErr(err error) error {
	return errors.Join(ErrAuthUnavailable, err)
}
