package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"auth_service/internal/observability"
	"auth_service/internal/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db      *sql.DB
	metrics *observability.Metrics
}

func NewPostgresRepository(db *sql.DB, metrics *observability.Metrics) *PostgresRepository {
	return &PostgresRepository{db: db, metrics: metrics}
}

// Create creates a new user in the database
func (r *PostgresRepository) Create(ctx context.Context, user *User) error {
	defer observe(r.metrics, "postgres", "create", time.Now())

	query := `
		INSERT INTO users (
			id, username, email, password, created_at
		)
		VALUES ($1, $2, $3, $4, $5)
	`

	err := utils.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			user.ID,
			user.Username,
			user.Email,
			user.Password,
			user.CreatedAt,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateUser
		}
		logrus.WithError(err).Error("Failed to create user")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User created successfully")

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	defer observe(r.metrics, "postgres", "get_by_id", time.Now())
	return r.getOne(ctx, "id", id)
}

// GetByUsername retrieves a user by username
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	defer observe(r.metrics, "postgres", "get_by_username", time.Now())
	return r.getOne(ctx, "username", username)
}

// GetByEmail retrieves a user by email
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	defer observe(r.metrics, "postgres", "get_by_email", time.Now())
	return r.getOne(ctx, "email", email)
}

// getOne looks a user up by column. column is never user input.
func (r *PostgresRepository) getOne(ctx context.Context, column, value string) (*User, error) {
	query := `
		SELECT id, username, email, password, created_at
		FROM users
		WHERE ` + column + ` = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("column", column).Error("Failed to get user")
		return nil, err
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
