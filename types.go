package adminauth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is one of the five fixed privilege levels. Combined with an email
// address it identifies exactly one account.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleSecretary  Role = "secretary"
)

// Roles lists every valid role value.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleAccountant, RoleSecretary}

// ParseRole parses a role name case-insensitively. The second return value
// is false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r, true
	}
	return "", false
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleAccountant, RoleSecretary:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Account is the durable identity record, one row per (email, role) pair.
// The tuple (lowercased email, role) is unique; the email alone is not.
// Role-specific attributes are nullable and selected by the Role tag.
type Account struct {
	ID           uuid.UUID
	Email        string
	Role         Role
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  *string

	Active        bool
	EmailVerified bool

	// Single active refresh token; overwritten on every issuance.
	RefreshToken          *string
	RefreshTokenExpiresAt *time.Time

	PasswordResetToken     *string
	PasswordResetExpiresAt *time.Time

	VerificationToken     *string
	VerificationExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy *uuid.UUID

	// Role-tagged attributes.
	Department        *string // admin
	ManagedDepartment *string // manager
	TeamSize          int     // manager
	LicenseNumber     *string // accountant
	OfficeNumber      *string // secretary
	Permissions       *string // super_admin
}

// FullName joins first and last name for email salutations.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// AccountSummary is the caller-visible slice of an account returned with
// successful authentication results.
type AccountSummary struct {
	ID        uuid.UUID
	Email     string
	Role      Role
	FirstName string
	LastName  string
}

// LoginChallenge is returned by [Engine.BeginLogin] after the passcode has
// been issued and dispatched.
type LoginChallenge struct {
	Email     string
	Role      Role
	FirstName string
	LastName  string
	Message   string
}

// AuthResult is returned by [Engine.VerifyLogin] and [Engine.Refresh].
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Account      AccountSummary
}

// AuthContext is the verified identity attached to an authorized request,
// returned by [Engine.Authorize].
type AuthContext struct {
	AccountID uuid.UUID
	Email     string
	Role      Role
}

// IdentityStore is the durable account collaborator the engine requires.
// Implementations return [ErrAccountNotFound] when no row matches; any other
// error is treated as a transient infrastructure failure.
//
// Email comparisons must be case-insensitive. Token lookups match exact
// token values and are unique per row.
type IdentityStore interface {
	FindByEmailAndRole(ctx context.Context, email string, role Role) (*Account, error)
	// FindByEmail returns the first account matching the email across roles,
	// in creation order. Used only by the reset-request path, which is not
	// role-qualified.
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByRefreshToken(ctx context.Context, token string) (*Account, error)
	FindByResetToken(ctx context.Context, token string) (*Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*Account, error)
	Update(ctx context.Context, account *Account) error
}

// EmailSender dispatches the outbound mail the engine triggers. Transport
// and templating are the caller's concern.
type EmailSender interface {
	SendPasscode(ctx context.Context, toEmail, recipientName, code string, expiresIn time.Duration) error
	SendPasswordReset(ctx context.Context, toEmail, recipientName, link string) error
	SendVerification(ctx context.Context, toEmail, recipientName, link string) error
}
