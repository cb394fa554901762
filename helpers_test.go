package adminauth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shms-platform/adminauth/password"
)

const testPassword = "correct-horse-battery"

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.JWT.Issuer = "adminauth-test"
	cfg.JWT.Audience = "adminauth-test-clients"
	cfg.Password.BcryptCost = 4 // MinCost, keeps the suite fast
	cfg.PasswordReset.LinkBaseURL = "https://portal.test/reset"
	cfg.EmailVerification.LinkBaseURL = "https://portal.test/verify"
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *miniredis.Miniredis, *memIdentityStore, *capturingMailer) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	identity := newMemIdentityStore()
	mailer := &capturingMailer{}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityStore(identity).
		WithMailer(mailer).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, identity, mailer
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hasher, err := password.NewHasher(4)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := hasher.Hash(plain)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return hash
}

func seedAccount(t *testing.T, store *memIdentityStore, email string, role Role) *Account {
	t.Helper()
	acc := &Account{
		ID:            uuid.New(),
		Email:         email,
		Role:          role,
		PasswordHash:  hashPassword(t, testPassword),
		FirstName:     "Test",
		LastName:      "User",
		Active:        true,
		EmailVerified: true,
		CreatedAt:     time.Now(),
	}
	store.put(acc)
	return acc
}

// memIdentityStore is an in-memory IdentityStore for engine tests.
type memIdentityStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
	// failNext makes every call return this error until cleared.
	failNext error
}

func newMemIdentityStore() *memIdentityStore {
	return &memIdentityStore{accounts: map[uuid.UUID]*Account{}}
}

func (s *memIdentityStore) put(acc *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *acc
	s.accounts[acc.ID] = &cp
}

func (s *memIdentityStore) get(id uuid.UUID) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		cp := *a
		return &cp
	}
	return nil
}

func (s *memIdentityStore) find(match func(*Account) bool) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		return nil, s.failNext
	}
	var found *Account
	for _, a := range s.accounts {
		if match(a) {
			if found == nil || a.CreatedAt.Before(found.CreatedAt) {
				found = a
			}
		}
	}
	if found == nil {
		return nil, ErrAccountNotFound
	}
	cp := *found
	return &cp, nil
}

func (s *memIdentityStore) FindByEmailAndRole(_ context.Context, email string, role Role) (*Account, error) {
	return s.find(func(a *Account) bool {
		return normalizeEmail(a.Email) == normalizeEmail(email) && a.Role == role
	})
}

func (s *memIdentityStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	return s.find(func(a *Account) bool {
		return normalizeEmail(a.Email) == normalizeEmail(email)
	})
}

func (s *memIdentityStore) FindByRefreshToken(_ context.Context, token string) (*Account, error) {
	return s.find(func(a *Account) bool {
		return a.RefreshToken != nil && *a.RefreshToken == token
	})
}

func (s *memIdentityStore) FindByResetToken(_ context.Context, token string) (*Account, error) {
	return s.find(func(a *Account) bool {
		return a.PasswordResetToken != nil && *a.PasswordResetToken == token
	})
}

func (s *memIdentityStore) FindByVerificationToken(_ context.Context, token string) (*Account, error) {
	return s.find(func(a *Account) bool {
		return a.VerificationToken != nil && *a.VerificationToken == token
	})
}

func (s *memIdentityStore) Update(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		return s.failNext
	}
	if _, ok := s.accounts[account.ID]; !ok {
		return ErrAccountNotFound
	}
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

type sentPasscode struct {
	To   string
	Code string
}

type sentLink struct {
	To   string
	Link string
}

// capturingMailer records outbound mail and can be told to fail.
type capturingMailer struct {
	mu sync.Mutex

	passcodes   []sentPasscode
	resetLinks  []sentLink
	verifyLinks []sentLink

	failSend error
}

func (m *capturingMailer) SendPasscode(_ context.Context, to, _, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend != nil {
		return m.failSend
	}
	m.passcodes = append(m.passcodes, sentPasscode{To: to, Code: code})
	return nil
}

func (m *capturingMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend != nil {
		return m.failSend
	}
	m.resetLinks = append(m.resetLinks, sentLink{To: to, Link: link})
	return nil
}

func (m *capturingMailer) SendVerification(_ context.Context, to, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend != nil {
		return m.failSend
	}
	m.verifyLinks = append(m.verifyLinks, sentLink{To: to, Link: link})
	return nil
}

func (m *capturingMailer) lastPasscode(t *testing.T) sentPasscode {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.passcodes) == 0 {
		t.Fatal("no passcode email was sent")
	}
	return m.passcodes[len(m.passcodes)-1]
}

func (m *capturingMailer) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSend = err
}
