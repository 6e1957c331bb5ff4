package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/output"
)

var _ output.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	q querier
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{q: querier{pool: pool}}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = entities.NormalizeEmail(user.Email)

	_, err := r.q.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name.First, user.Name.Last, user.Email, user.Mobile, user.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user: email %s already registered", user.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, entities.NormalizeEmail(email))
}

func (r *UserRepository) findOne(ctx context.Context, sql string, arg string) (*entities.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
