package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/messagely/backend/internal/common/db"
	commonerrors "github.com/messagely/backend/internal/common/errors"
	"github.com/messagely/backend/internal/message/domain"
)

type Repository interface {
	Create(ctx context.Context, message domain.Message) error
	FindByID(ctx context.Context, id string) (domain.Detail, error)
	FindFromUser(ctx context.Context, username string) ([]domain.Sent, error)
	FindToUser(ctx context.Context, username string) ([]domain.Received, error)
	MarkRead(ctx context.Context, id string, t time.Time) (time.Time, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, message domain.Message) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO messages (id, from_username, to_username, body, sent_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		message.ID,
		message.FromUsername,
		message.ToUsername,
		message.Body,
		message.SentAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			db.MeasureQueryDuration("create message", start)
			return ErrUnknownUser
		}
	}
	return db.HandleExecError(err, "create message", start)
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (domain.Detail, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages m
		 JOIN users f ON f.username = m.from_username
		 JOIN users t ON t.username = m.to_username
		 WHERE m.id = $1`,
		id,
	)

	var d domain.Detail
	err := row.Scan(
		&d.ID, &d.Body, &d.SentAt, &d.ReadAt,
		&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
		&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone,
	)
	if err != nil {
		return domain.Detail{}, db.HandleQueryError(err, ErrMessageNotFound, "find message by id", start)
	}

	db.MeasureQueryDuration("find message by id", start)
	return d, nil
}

// FindFromUser resolves recipient profiles in the same query instead of one
// lookup per message, so latency stays flat with message count.
func (r *PgRepository) FindFromUser(ctx context.Context, username string) ([]domain.Sent, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages m
		 JOIN users u ON u.username = m.to_username
		 WHERE m.from_username = $1
		 ORDER BY m.sent_at ASC`,
		username,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "find messages from user", start)
	}
	defer rows.Close()

	var messages []domain.Sent
	for rows.Next() {
		var m domain.Sent
		err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
		)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "find messages from user", start)
		}
		messages = append(messages, m)
	}
	if rows.Err() != nil {
		return nil, db.HandleQueryError(rows.Err(), nil, "find messages from user", start)
	}

	db.MeasureQueryDuration("find messages from user", start)
	return messages, nil
}

func (r *PgRepository) FindToUser(ctx context.Context, username string) ([]domain.Received, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        u.username, u.first_name, u.last_name, u.phone
		 FROM messages m
		 JOIN users u ON u.username = m.from_username
		 WHERE m.to_username = $1
		 ORDER BY m.sent_at ASC`,
		username,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "find messages to user", start)
	}
	defer rows.Close()

	var messages []domain.Received
	for rows.Next() {
		var m domain.Received
		err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &m.ReadAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
		)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "find messages to user", start)
		}
		messages = append(messages, m)
	}
	if rows.Err() != nil {
		return nil, db.HandleQueryError(rows.Err(), nil, "find messages to user", start)
	}

	db.MeasureQueryDuration("find messages to user", start)
	return messages, nil
}

func (r *PgRepository) MarkRead(ctx context.Context, id string, t time.Time) (time.Time, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE messages SET read_at = $1 WHERE id = $2 AND read_at IS NULL RETURNING read_at`,
		t,
		id,
	)

	var readAt time.Time
	if err := row.Scan(&readAt); err != nil {
		return time.Time{}, db.HandleQueryError(err, ErrMessageNotFound, "mark message read", start)
	}

	db.MeasureQueryDuration("mark message read", start)
	return readAt, nil
}

var (
	ErrMessageNotFound = commonerrors.ErrMessageNotFound
	ErrUnknownUser     = commonerrors.ErrUnknownRecipient
)
