package user

import (
	"context"
	"sync"
	"time"

	"auth_service/internal/observability"
	"auth_service/internal/store"

	"github.com/sirupsen/logrus"
)

// FileRepository stores users in a single JSON document. Every lookup reads
// and scans the whole file; every create rewrites it.
type FileRepository struct {
	mu      sync.Mutex
	file    *store.JSONFile
	metrics *observability.Metrics
}

func NewFileRepository(file *store.JSONFile, metrics *observability.Metrics) *FileRepository {
	return &FileRepository{file: file, metrics: metrics}
}

func (r *FileRepository) Create(ctx context.Context, user *User) error {
	defer observe(r.metrics, "file", "create", time.Now())

	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.file.Read()
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.Username == user.Username || rec.Email == user.Email {
			return ErrDuplicateUser
		}
	}

	records = append(records, toRecord(user))
	if err := r.file.Write(records); err != nil {
		logrus.WithError(err).Error("Failed to persist users")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User created successfully")

	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (*User, error) {
	defer observe(r.metrics, "file", "get_by_id", time.Now())
	return r.find(ctx, func(rec store.Record) bool { return rec.ID == id })
}

func (r *FileRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	defer observe(r.metrics, "file", "get_by_username", time.Now())
	return r.find(ctx, func(rec store.Record) bool { return rec.Username == username })
}

func (r *FileRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	defer observe(r.metrics, "file", "get_by_email", time.Now())
	return r.find(ctx, func(rec store.Record) bool { return rec.Email == email })
}

func (r *FileRepository) find(ctx context.Context, match func(store.Record) bool) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.file.Read()
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if match(rec) {
			return fromRecord(rec), nil
		}
	}
	return nil, ErrUserNotFound
}

func toRecord(u *User) store.Record {
	return store.Record{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
	}
}

func fromRecord(rec store.Record) *User {
	return &User{
		ID:        rec.ID,
		Username:  rec.Username,
		Email:     rec.Email,
		Password:  rec.Password,
		CreatedAt: rec.CreatedAt,
	}
}
