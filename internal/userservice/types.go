package userservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/blogstack/internal/common"
)

const (
	searchUsersLimit = 50

	SignupMethodPassword = "password"
	SignupMethodGoogle   = "google"
)

type UserService struct {
	m        userStore
	hasher   PasswordHasher
	tokens   *TokenService
	verifier IdentityVerifier
	names    *usernameAllocator
	mb       common.MessageProducer
	logger   *slog.Logger
	onSignup func(method string)
}

// userStore is the persistence surface the account flows depend on.
type userStore interface {
	insertUser(ctx context.Context, u *User) error
	getUserByEmail(ctx context.Context, email string) (*User, error)
	usernameExists(ctx context.Context, username string) (bool, error)
	searchUsers(ctx context.Context, query string, limit int) ([]Profile, error)
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID         int64     `json:"-"`
	Fullname   string    `json:"fullname"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	Password   Password  `json:"-"`
	ProfileImg string    `json:"profile_img"`
	GoogleAuth bool      `json:"google_auth"`
	TotalPosts int       `json:"total_posts"`
	TotalReads int       `json:"total_reads"`
	Blogs      []int64   `json:"-"`
	JoinedAt   time.Time `json:"joined_at"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Profile is the public part of a user returned by searches and embedded in blog listings.
type Profile struct {
	Fullname   string `json:"fullname"`
	Username   string `json:"username"`
	ProfileImg string `json:"profile_img"`
}

// AuthResponse is handed back by every successful signup or sign-in.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	ProfileImg  string `json:"profile_img"`
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
}
