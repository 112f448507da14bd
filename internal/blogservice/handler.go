package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sushihentaime/blogstack/internal/common"
)

// ErrPostCountUpdate means the blog was stored but the author's post counter was not
// updated. It is returned together with the new blog id.
var ErrPostCountUpdate = errors.New("failed to update total posts number")

type Option func(*BlogService)

// WithCreateHook registers fn to be called after every stored blog.
func WithCreateHook(fn func(draft bool)) Option {
	return func(s *BlogService) {
		s.onCreate = fn
	}
}

func NewBlogService(db *sql.DB, cache *common.Cache, opts ...Option) *BlogService {
	s := &BlogService{
		m:     newBlogModel(db),
		c:     cache,
		newID: defaultBlogIDSuffix,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateBlog stores a blog for req.AuthorID and returns its public id.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (string, error) {
	v := common.NewValidator()
	validateAuthor(v, req.AuthorID)
	if !v.Valid() {
		return "", v.ValidationError()
	}

	validateBlog(v, req)
	if !v.Valid() {
		return "", v.ValidationError()
	}

	blogID, err := newBlogID(req.Title, s.newID)
	if err != nil {
		return "", err
	}

	tags := make([]string, 0, len(req.Tags))
	for _, t := range req.Tags {
		tags = append(tags, strings.ToLower(t))
	}

	content := req.Content
	if content.Blocks == nil {
		content.Blocks = []json.RawMessage{}
	}

	id, err := s.m.insertBlog(ctx, &newBlog{
		BlogID:   blogID,
		Title:    req.Title,
		Des:      req.Des,
		Banner:   req.Banner,
		Content:  content,
		Tags:     tags,
		AuthorID: req.AuthorID,
		Draft:    req.Draft,
	})
	if err != nil {
		return "", err
	}

	s.c.Flush()
	if s.onCreate != nil {
		s.onCreate(req.Draft)
	}

	increment := 1
	if req.Draft {
		increment = 0
	}

	// the blog stays even if the counter update fails
	if err := s.m.addAuthorPost(ctx, req.AuthorID, id, increment); err != nil {
		return blogID, fmt.Errorf("%w: %v", ErrPostCountUpdate, err)
	}

	return blogID, nil
}

// ListLatest returns a page of published blogs, newest first. Pages start at 1.
func (s *BlogService) ListLatest(ctx context.Context, page int) ([]Blog, error) {
	page = normalizePage(page)
	if page > maxPage {
		return []Blog{}, nil
	}

	return common.ReadThrough(s.c, common.CacheKeyLatestBlogs(page), cacheTTL, func() ([]Blog, error) {
		return s.m.listBlogs(ctx, SearchFilter{}, pageSize, (page-1)*pageSize)
	})
}

// CountLatest returns the number of published blogs.
func (s *BlogService) CountLatest(ctx context.Context) (int, error) {
	return common.ReadThrough(s.c, common.CacheKeyLatestBlogsCount(), cacheTTL, func() (int, error) {
		return s.m.countBlogs(ctx, SearchFilter{})
	})
}

// ListTrending returns the five most read published blogs.
func (s *BlogService) ListTrending(ctx context.Context) ([]TrendingBlog, error) {
	return common.ReadThrough(s.c, common.CacheKeyTrendingBlogs(), cacheTTL, func() ([]TrendingBlog, error) {
		return s.m.trendingBlogs(ctx, trendingLimit)
	})
}

// Search pages through published blogs matching f. A tag takes precedence over a title query
// and an empty filter matches every published blog.
func (s *BlogService) Search(ctx context.Context, f SearchFilter, page int) ([]Blog, error) {
	page = normalizePage(page)
	if page > maxPage {
		return []Blog{}, nil
	}

	return s.m.listBlogs(ctx, f, pageSize, (page-1)*pageSize)
}

func (s *BlogService) CountSearch(ctx context.Context, f SearchFilter) (int, error) {
	return s.m.countBlogs(ctx, f)
}

// normalizePage clamps page to at least 1. Pages past maxPage are answered as empty
// by the callers without reaching the store.
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
