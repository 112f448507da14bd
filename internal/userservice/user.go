package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogstack/internal/common"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrUserNotFound      = errors.New("user not found")
)

var (
	avatarCollections = []string{"notionists-neutral", "adventurer-neutral", "fun-emoji"}
	avatarSeeds       = []string{"Garfield", "Tinkerbell", "Annie", "Loki", "Cleo", "Angel", "Bob", "Mia", "Coco", "Gracie", "Bear", "Bella", "Abby", "Harley", "Cali", "Leo", "Luna", "Jack", "Felix", "Kiki"}
)

// defaultProfileImg picks a generated avatar for accounts without a picture.
func defaultProfileImg() string {
	collection := avatarCollections[rand.IntN(len(avatarCollections))]
	seed := avatarSeeds[rand.IntN(len(avatarSeeds))]
	return fmt.Sprintf("https://api.dicebear.com/6.x/%s/svg?seed=%s", collection, seed)
}

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (fullname, email, username, password, profile_img, google_auth)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, joined_at`

	// a nil hash must reach postgres as NULL, not as an empty bytea
	var hash any
	if u.Password.hash != nil {
		hash = u.Password.hash
	}

	args := []any{
		u.Fullname,
		u.Email,
		u.Username,
		hash,
		u.ProfileImg,
		u.GoogleAuth,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.JoinedAt)
	if err != nil {
		switch {
		case common.UniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		case common.UniqueViolation(err, "users_username_key"):
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	return nil
}

func (m *DBModel) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, fullname, email, username, password, profile_img, google_auth, total_posts, total_reads, blogs, joined_at
		FROM users
		WHERE email = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID,
		&u.Fullname,
		&u.Email,
		&u.Username,
		&u.Password.hash,
		&u.ProfileImg,
		&u.GoogleAuth,
		&u.TotalPosts,
		&u.TotalReads,
		pq.Array(&u.Blogs),
		&u.JoinedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) usernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// searchUsers matches query as a case-insensitive substring of the username.
func (m *DBModel) searchUsers(ctx context.Context, query string, limit int) ([]Profile, error) {
	stmt := `
		SELECT fullname, username, profile_img
		FROM users
		WHERE username ILIKE $1 ESCAPE '\'
		ORDER BY username
		LIMIT $2`

	rows, err := m.db.QueryContext(ctx, stmt, "%"+common.EscapeLike(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []Profile{}
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.Fullname, &p.Username, &p.ProfileImg); err != nil {
			return nil, err
		}
		users = append(users, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
