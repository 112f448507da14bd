package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sushihentaime/blogstack/internal/common"
	"github.com/sushihentaime/blogstack/internal/userservice"
)

const (
	pageSize      = 5
	trendingLimit = 5
	maxPage       = 1_000_000
	cacheTTL      = time.Minute
)

// Content is the editor document of a blog. Blocks are kept opaque.
type Content struct {
	Time    int64             `json:"time,omitempty"`
	Blocks  []json.RawMessage `json:"blocks"`
	Version string            `json:"version,omitempty"`
}

type Activity struct {
	TotalLikes          int `json:"total_likes"`
	TotalComments       int `json:"total_comments"`
	TotalReads          int `json:"total_reads"`
	TotalParentComments int `json:"total_parent_comments"`
}

// Blog is the listing view of a stored blog.
type Blog struct {
	ID          int64               `json:"-"`
	BlogID      string              `json:"blog_id"`
	Title       string              `json:"title"`
	Des         string              `json:"des"`
	Banner      string              `json:"banner"`
	Tags        []string            `json:"tags"`
	Activity    Activity            `json:"activity"`
	Author      userservice.Profile `json:"author"`
	PublishedAt time.Time           `json:"published_at"`
}

type TrendingBlog struct {
	BlogID      string              `json:"blog_id"`
	Title       string              `json:"title"`
	Author      userservice.Profile `json:"author"`
	PublishedAt time.Time           `json:"published_at"`
}

type CreateBlogRequest struct {
	Title    string   `json:"title"`
	Banner   string   `json:"banner"`
	Des      string   `json:"des"`
	Tags     []string `json:"tags"`
	Content  Content  `json:"content"`
	Draft    bool     `json:"draft"`
	AuthorID int64    `json:"-"`
}

// SearchFilter selects published blogs by tag or, when no tag is given, by title substring.
type SearchFilter struct {
	Tag   string `json:"tag"`
	Query string `json:"query"`
}

// newBlog is what gets written for a CreateBlog call.
type newBlog struct {
	BlogID   string
	Title    string
	Des      string
	Banner   string
	Content  Content
	Tags     []string
	AuthorID int64
	Draft    bool
}

type blogStore interface {
	insertBlog(ctx context.Context, b *newBlog) (int64, error)
	addAuthorPost(ctx context.Context, authorID, blogRowID int64, increment int) error
	listBlogs(ctx context.Context, f SearchFilter, limit, offset int) ([]Blog, error)
	countBlogs(ctx context.Context, f SearchFilter) (int, error)
	trendingBlogs(ctx context.Context, limit int) ([]TrendingBlog, error)
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m        blogStore
	c        *common.Cache
	newID    func() (string, error)
	onCreate func(draft bool)
}
