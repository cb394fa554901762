// Package postgres implements adminauth.IdentityStore on a pgx connection
// pool. Accounts live in a single table with a unique index on
// (lower(email), role); role-specific attributes are nullable columns.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shms-platform/adminauth"
)

var _ adminauth.IdentityStore = (*Store)(nil)

const accountColumns = `id, email, role, password_hash, first_name, last_name, phone_number,
	active, email_verified,
	refresh_token, refresh_token_expires_at,
	password_reset_token, password_reset_expires_at,
	verification_token, verification_expires_at,
	created_at, updated_at, created_by,
	department, managed_department, team_size, license_number, office_number, permissions`

// Store is a pgx-backed account repository.
type Store struct {
	pool *pgxpool.Pool
}

// New connects a pool from the given DSN and verifies it with a ping.
func New(ctx context.Context, dsn string) (*Store, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool. The caller retains ownership.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) FindByEmailAndRole(ctx context.Context, email string, role adminauth.Role) (*adminauth.Account, error) {
	query := `SELECT ` + accountColumns + `
			  FROM admin_accounts WHERE lower(email) = lower($1) AND role = $2`
	return s.queryOne(ctx, query, email, string(role))
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*adminauth.Account, error) {
	query := `SELECT ` + accountColumns + `
			  FROM admin_accounts WHERE lower(email) = lower($1)
			  ORDER BY created_at LIMIT 1`
	return s.queryOne(ctx, query, email)
}

func (s *Store) FindByRefreshToken(ctx context.Context, token string) (*adminauth.Account, error) {
	query := `SELECT ` + accountColumns + `
			  FROM admin_accounts WHERE refresh_token = $1`
	return s.queryOne(ctx, query, token)
}

func (s *Store) FindByResetToken(ctx context.Context, token string) (*adminauth.Account, error) {
	query := `SELECT ` + accountColumns + `
			  FROM admin_accounts WHERE password_reset_token = $1`
	return s.queryOne(ctx, query, token)
}

func (s *Store) FindByVerificationToken(ctx context.Context, token string) (*adminauth.Account, error) {
	query := `SELECT ` + accountColumns + `
			  FROM admin_accounts WHERE verification_token = $1`
	return s.queryOne(ctx, query, token)
}

// Create inserts a new account row. ID, CreatedAt and UpdatedAt are
// assigned by the database and written back into account.
func (s *Store) Create(ctx context.Context, account *adminauth.Account) error {
	query := `INSERT INTO admin_accounts (
				  email, role, password_hash, first_name, last_name, phone_number,
				  active, email_verified,
				  verification_token, verification_expires_at, created_by,
				  department, managed_department, team_size, license_number, office_number, permissions)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			  RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		account.Email, string(account.Role), account.PasswordHash,
		account.FirstName, account.LastName, account.PhoneNumber,
		account.Active, account.EmailVerified,
		account.VerificationToken, account.VerificationExpiresAt, account.CreatedBy,
		account.Department, account.ManagedDepartment, account.TeamSize,
		account.LicenseNumber, account.OfficeNumber, account.Permissions,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (s *Store) Update(ctx context.Context, account *adminauth.Account) error {
	query := `UPDATE admin_accounts SET
				  password_hash = $2, first_name = $3, last_name = $4, phone_number = $5,
				  active = $6, email_verified = $7,
				  refresh_token = $8, refresh_token_expires_at = $9,
				  password_reset_token = $10, password_reset_expires_at = $11,
				  verification_token = $12, verification_expires_at = $13,
				  department = $14, managed_department = $15, team_size = $16,
				  license_number = $17, office_number = $18, permissions = $19,
				  updated_at = now()
			  WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		account.ID,
		account.PasswordHash, account.FirstName, account.LastName, account.PhoneNumber,
		account.Active, account.EmailVerified,
		account.RefreshToken, account.RefreshTokenExpiresAt,
		account.PasswordResetToken, account.PasswordResetExpiresAt,
		account.VerificationToken, account.VerificationExpiresAt,
		account.Department, account.ManagedDepartment, account.TeamSize,
		account.LicenseNumber, account.OfficeNumber, account.Permissions,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return adminauth.ErrAccountNotFound
	}

	return nil
}

func (s *Store) queryOne(ctx context.Context, query string, args ...any) (*adminauth.Account, error) {
	var a adminauth.Account
	var role string

	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.Email, &role, &a.PasswordHash, &a.FirstName, &a.LastName, &a.PhoneNumber,
		&a.Active, &a.EmailVerified,
		&a.RefreshToken, &a.RefreshTokenExpiresAt,
		&a.PasswordResetToken, &a.PasswordResetExpiresAt,
		&a.VerificationToken, &a.VerificationExpiresAt,
		&a.CreatedAt, &a.UpdatedAt, &a.CreatedBy,
		&a.Department, &a.ManagedDepartment, &a.TeamSize,
		&a.LicenseNumber, &a.OfficeNumber, &a.Permissions,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, adminauth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	a.Role = adminauth.Role(role)
	return &a, nil
}
