package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civigo/citizen-portal/internal/domain"
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally matching a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// UserRepository defines persistence access for portal accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByIdentificationNumber(ctx context.Context, idNumber string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, phone_number, identification_number, password_hash, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.PhoneNumber,
		user.IdentificationNumber,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, phone_number, identification_number, password_hash, role, created_at, updated_at
        FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	const query = `
        SELECT id, name, phone_number, identification_number, password_hash, role, created_at, updated_at
        FROM users WHERE phone_number=$1`
	return r.fetchSingle(ctx, query, phone)
}

func (r *userRepository) GetByIdentificationNumber(ctx context.Context, idNumber string) (*domain.User, error) {
	const query = `
        SELECT id, name, phone_number, identification_number, password_hash, role, created_at, updated_at
        FROM users WHERE identification_number=$1`
	return r.fetchSingle(ctx, query, idNumber)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.PhoneNumber,
		&user.IdentificationNumber,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// ErrNoRows re-exports the pgx sentinel so service code does not import pgx
// directly.
var ErrNoRows = pgx.ErrNoRows
