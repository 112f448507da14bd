package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogstack/internal/common"
)

var (
	ErrUserForeignKey = errors.New("author does not exist")
	ErrAuthorNotFound = errors.New("author not found")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

func (m *BlogModel) insertBlog(ctx context.Context, b *newBlog) (int64, error) {
	content, err := json.Marshal(b.Content)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO blogs (blog_id, title, des, banner, content, tags, author, draft)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	args := []any{
		b.BlogID,
		b.Title,
		b.Des,
		b.Banner,
		content,
		pq.Array(b.Tags),
		b.AuthorID,
		b.Draft,
	}

	var id int64
	err = m.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		switch {
		case common.ForeignKeyViolation(err, "blogs_author_fkey"):
			return 0, ErrUserForeignKey
		default:
			return 0, err
		}
	}

	return id, nil
}

// addAuthorPost bumps the author's post counter and records the blog in one statement.
func (m *BlogModel) addAuthorPost(ctx context.Context, authorID, blogRowID int64, increment int) error {
	query := `
		UPDATE users
		SET total_posts = total_posts + $1, blogs = array_append(blogs, $2)
		WHERE id = $3`

	res, err := m.db.ExecContext(ctx, query, increment, blogRowID, authorID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		return ErrAuthorNotFound
	}

	return nil
}

// filterClause returns the WHERE clause for f together with its arguments. Drafts are always excluded.
func filterClause(f SearchFilter) (string, []any) {
	switch {
	case f.Tag != "":
		return "b.draft = false AND $1 = ANY(b.tags)", []any{f.Tag}
	case f.Query != "":
		return `b.draft = false AND b.title ILIKE $1 ESCAPE '\'`, []any{"%" + common.EscapeLike(f.Query) + "%"}
	default:
		return "b.draft = false", nil
	}
}

// listBlogs returns published blogs matching f, newest first.
func (m *BlogModel) listBlogs(ctx context.Context, f SearchFilter, limit, offset int) ([]Blog, error) {
	where, args := filterClause(f)

	query := fmt.Sprintf(`
		SELECT b.id, b.blog_id, b.title, b.des, b.banner, b.tags,
			b.total_likes, b.total_comments, b.total_reads, b.total_parent_comments,
			b.published_at, u.fullname, u.username, u.profile_img
		FROM blogs b
		JOIN users u ON u.id = b.author
		WHERE %s
		ORDER BY b.published_at DESC, b.id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		var b Blog
		err := rows.Scan(
			&b.ID,
			&b.BlogID,
			&b.Title,
			&b.Des,
			&b.Banner,
			pq.Array(&b.Tags),
			&b.Activity.TotalLikes,
			&b.Activity.TotalComments,
			&b.Activity.TotalReads,
			&b.Activity.TotalParentComments,
			&b.PublishedAt,
			&b.Author.Fullname,
			&b.Author.Username,
			&b.Author.ProfileImg,
		)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

func (m *BlogModel) countBlogs(ctx context.Context, f SearchFilter) (int, error) {
	where, args := filterClause(f)

	var count int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blogs b WHERE "+where, args...).Scan(&count)
	return count, err
}

// trendingBlogs orders published blogs by reads, then likes, then recency.
func (m *BlogModel) trendingBlogs(ctx context.Context, limit int) ([]TrendingBlog, error) {
	query := `
		SELECT b.blog_id, b.title, b.published_at, u.fullname, u.username, u.profile_img
		FROM blogs b
		JOIN users u ON u.id = b.author
		WHERE b.draft = false
		ORDER BY b.total_reads DESC, b.total_likes DESC, b.published_at DESC, b.id DESC
		LIMIT $1`

	rows, err := m.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []TrendingBlog{}
	for rows.Next() {
		var b TrendingBlog
		err := rows.Scan(&b.BlogID, &b.Title, &b.PublishedAt, &b.Author.Fullname, &b.Author.Username, &b.Author.ProfileImg)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}
