package repository

import (
	"context"
	"errors"
	"fmt"

	"learnhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error

	GetAccount(ctx context.Context, provider, providerAccountID string) (*model.Account, error)
	CreateAccount(ctx context.Context, a *model.Account) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `id, name, email, password_hash, image_url, bio, role, stripe_customer_id, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ImageURL, &u.Bio, &u.Role, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (name, email, password_hash, image_url, role)
              VALUES ($1, $2, $3, $4, $5) RETURNING ` + userColumns
	err := r.pool.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash, u.ImageURL, u.Role).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ImageURL, &u.Bio, &u.Role, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, fmt.Errorf("fetch user by email: %w", err)
	}
	return u, nil
}

func (r *userRepo) UpdateUser(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET name = $1, bio = $2, image_url = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query, u.Name, u.Bio, u.ImageURL, u.ID).Scan(&u.UpdatedAt); err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

func (r *userRepo) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE users SET stripe_customer_id = $1, updated_at = NOW() WHERE id = $2`, customerID, userID); err != nil {
		return fmt.Errorf("update stripe customer for user %s: %w", userID, err)
	}
	return nil
}

func (r *userRepo) GetAccount(ctx context.Context, provider, providerAccountID string) (*model.Account, error) {
	query := `
		SELECT id, user_id, provider, provider_account_id, created_at
		FROM accounts
		WHERE provider = $1 AND provider_account_id = $2
	`
	var a model.Account
	err := r.pool.QueryRow(ctx, query, provider, providerAccountID).
		Scan(&a.ID, &a.UserID, &a.Provider, &a.ProviderAccountID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch %s account: %w", provider, err)
	}
	return &a, nil
}

func (r *userRepo) CreateAccount(ctx context.Context, a *model.Account) error {
	query := `
		INSERT INTO accounts (user_id, provider, provider_account_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query, a.UserID, a.Provider, a.ProviderAccountID).Scan(&a.ID, &a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert %s account: %w", a.Provider, err)
	}
	return nil
}
