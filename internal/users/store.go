package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID     string  `json:"_id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Points float64 `json:"points"`
}

type Store interface {
	Get(ctx context.Context, id string) (*User, error)
	AddPoints(ctx context.Context, id string, points float64) error
}

type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) Get(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `SELECT id, name, email, points FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Points)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PGStore) AddPoints(ctx context.Context, id string, points float64) error {
	ct, err := s.DB.Exec(ctx, `UPDATE users SET points = points + $2 WHERE id=$1`, id, points)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}
