package user

import (
	"strconv"
	"sync/atomic"
	"time"

	"auth_service/internal/auth"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser is what register, login and verify return.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile is what the profile endpoint returns.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser builds an unsaved user holding the plaintext password.
func NewUser(username, email, password string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        newID(now),
		Username:  username,
		Email:     email,
		Password:  password,
		CreatedAt: now,
	}
}

// HashPassword replaces the plaintext password with its bcrypt hash.
func (u *User) HashPassword() error {
	hashed, err := auth.GeneratePasswordHash(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// ComparePassword checks candidate against the stored hash.
func (u *User) ComparePassword(candidate string) error {
	return auth.ComparePasswordHash([]byte(u.Password), candidate)
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

var lastID atomic.Int64

// newID derives an id from the creation time in milliseconds. Ids stay unique
// within the process when several users are created in the same millisecond.
func newID(now time.Time) string {
	ms := now.UnixMilli()
	for {
		last := lastID.Load()
		next := ms
		if next <= last {
			next = last + 1
		}
		if lastID.CompareAndSwap(last, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}
