package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-assignment-service/internal/domain"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) CreateUser(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, is_admin) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Username, user.HashedPassword, user.IsAdmin)
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserStore) UserByName(ctx context.Context, username string) (domain.User, error) {
	return s.one(ctx, `SELECT id, username, password_hash, is_admin FROM users WHERE username=$1`, username)
}

func (s *UserStore) UserByID(ctx context.Context, id string) (domain.User, error) {
	return s.one(ctx, `SELECT id, username, password_hash, is_admin FROM users WHERE id=$1`, id)
}

func (s *UserStore) SetAdmin(ctx context.Context, id string, admin bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET is_admin=$2 WHERE id=$1`, id, admin)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) one(ctx context.Context, query string, arg string) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.HashedPassword, &u.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
