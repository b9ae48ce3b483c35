package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/messagely/backend/internal/common/db"
	commonerrors "github.com/messagely/backend/internal/common/errors"
	"github.com/messagely/backend/internal/user/domain"
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	UpdateLastLogin(ctx context.Context, username string, t time.Time) (time.Time, error)
	All(ctx context.Context) ([]domain.Summary, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (username, password_hash, first_name, last_name, phone, join_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinedAt,
		user.LastLoginAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			db.MeasureQueryDuration("create user", start)
			return ErrUsernameAlreadyExists
		}
	}
	return db.HandleExecError(err, "create user", start)
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT username, password_hash, first_name, last_name, phone, join_at, last_login_at
		 FROM users WHERE username = $1`,
		username,
	)

	var user domain.User
	err := row.Scan(
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.JoinedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return domain.User{}, db.HandleQueryError(err, ErrUserNotFound, "find user by username", start)
	}

	db.MeasureQueryDuration("find user by username", start)
	return user, nil
}

func (r *PgRepository) UpdateLastLogin(ctx context.Context, username string, t time.Time) (time.Time, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE users SET last_login_at = $1 WHERE username = $2 RETURNING last_login_at`,
		t,
		username,
	)

	var lastLogin time.Time
	if err := row.Scan(&lastLogin); err != nil {
		return time.Time{}, db.HandleQueryError(err, ErrUserNotFound, "update user last login", start)
	}

	db.MeasureQueryDuration("update user last login", start)
	return lastLogin, nil
}

func (r *PgRepository) All(ctx context.Context) ([]domain.Summary, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT username, first_name, last_name, phone FROM users ORDER BY username ASC`,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list users", start)
	}
	defer rows.Close()

	var users []domain.Summary
	for rows.Next() {
		var u domain.Summary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Phone); err != nil {
			return nil, db.HandleQueryError(err, nil, "list users", start)
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, db.HandleQueryError(rows.Err(), nil, "list users", start)
	}

	db.MeasureQueryDuration("list users", start)
	return users, nil
}

var (
	ErrUserNotFound          = commonerrors.ErrUserNotFound
	ErrUsernameAlreadyExists = commonerrors.ErrUsernameAlreadyExists
)
