package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogstack/internal/common"
)

func newMockedService(t *testing.T) (*BlogService, *mockStore) {
	t.Helper()

	store := new(mockStore)
	s := &BlogService{
		m:     store,
		c:     common.NewCache(time.Minute, time.Minute),
		newID: func() (string, error) { return "Xy12", nil },
	}

	return s, store
}

func TestCreateBlog_Mocked(t *testing.T) {
	t.Run("published blog bumps the counter", func(t *testing.T) {
		s, store := newMockedService(t)

		var created []bool
		s.onCreate = func(draft bool) { created = append(created, draft) }

		store.On("insertBlog", mock.Anything, mock.MatchedBy(func(b *newBlog) bool {
			return b.BlogID == "hello-world-Xy12" && b.AuthorID == 3 && strings.Join(b.Tags, ",") == "go,databases"
		})).Return(10, nil).Once()
		store.On("addAuthorPost", mock.Anything, int64(3), int64(10), 1).Return(nil).Once()

		req := publishable()
		req.Title = "Hello World!"
		req.Tags = []string{"Go", "DataBases"}
		req.AuthorID = 3

		id, err := s.CreateBlog(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "hello-world-Xy12", id)
		assert.Equal(t, []bool{false}, created)
		store.AssertExpectations(t)
	})

	t.Run("draft does not bump the counter", func(t *testing.T) {
		s, store := newMockedService(t)

		store.On("insertBlog", mock.Anything, mock.MatchedBy(func(b *newBlog) bool {
			return b.Draft && b.Tags != nil && b.Content.Blocks != nil
		})).Return(11, nil).Once()
		store.On("addAuthorPost", mock.Anything, int64(3), int64(11), 0).Return(nil).Once()

		id, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "Draft", Draft: true, AuthorID: 3})
		require.NoError(t, err)
		assert.Equal(t, "draft-Xy12", id)
		store.AssertExpectations(t)
	})

	t.Run("counter failure keeps the blog id", func(t *testing.T) {
		s, store := newMockedService(t)

		store.On("insertBlog", mock.Anything, mock.Anything).Return(12, nil)
		store.On("addAuthorPost", mock.Anything, int64(3), int64(12), 1).Return(errors.New("deadlock detected"))

		req := publishable()
		req.AuthorID = 3

		id, err := s.CreateBlog(context.Background(), req)
		assert.ErrorIs(t, err, ErrPostCountUpdate)
		assert.Equal(t, "hello-world-Xy12", id)
	})

	t.Run("validation stops before the store", func(t *testing.T) {
		s, store := newMockedService(t)

		_, err := s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "T", AuthorID: 3})
		assert.Equal(t, common.ValidationError{Errors: map[string]string{"des": msgDesInvalid}}, err)

		_, err = s.CreateBlog(context.Background(), &CreateBlogRequest{Title: "T"})
		assert.Equal(t, common.ValidationError{Errors: map[string]string{"author": "must be greater than zero"}}, err)

		store.AssertNotCalled(t, "insertBlog", mock.Anything, mock.Anything)
	})
}

func TestReadCaching_Mocked(t *testing.T) {
	s, store := newMockedService(t)
	ctx := context.Background()

	store.On("countBlogs", mock.Anything, SearchFilter{}).Return(4, nil).Twice()
	store.On("trendingBlogs", mock.Anything, trendingLimit).Return([]TrendingBlog{{BlogID: "a"}}, nil).Once()
	store.On("listBlogs", mock.Anything, SearchFilter{}, pageSize, 0).Return([]Blog{{BlogID: "a"}}, nil).Once()

	for range 3 {
		count, err := s.CountLatest(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, count)

		trending, err := s.ListTrending(ctx)
		require.NoError(t, err)
		assert.Len(t, trending, 1)

		// page 0 and page -3 are both the first page
		latest, err := s.ListLatest(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, latest, 1)
	}

	// a new blog invalidates what was cached
	store.On("insertBlog", mock.Anything, mock.Anything).Return(1, nil)
	store.On("addAuthorPost", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	_, err := s.CreateBlog(ctx, &CreateBlogRequest{Title: "T", Draft: true, AuthorID: 1})
	require.NoError(t, err)

	_, err = s.CountLatest(ctx)
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestSearch_PageOffsets(t *testing.T) {
	s, store := newMockedService(t)

	f := SearchFilter{Tag: "go"}
	store.On("listBlogs", mock.Anything, f, pageSize, 0).Return([]Blog{}, nil).Once()
	store.On("listBlogs", mock.Anything, f, pageSize, 10).Return([]Blog{}, nil).Once()

	_, err := s.Search(context.Background(), f, -3)
	require.NoError(t, err)
	_, err = s.Search(context.Background(), f, 3)
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestListings_PageBeyondLimit(t *testing.T) {
	s, store := newMockedService(t)

	for _, page := range []int{maxPage + 1, math.MaxInt / 4, math.MaxInt} {
		blogs, err := s.Search(context.Background(), SearchFilter{Query: "go"}, page)
		require.NoError(t, err)
		assert.Empty(t, blogs)

		blogs, err = s.ListLatest(context.Background(), page)
		require.NoError(t, err)
		assert.Empty(t, blogs)
		assert.NotNil(t, blogs)
	}

	store.AssertNotCalled(t, "listBlogs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	_, cached := s.c.Get(common.CacheKeyLatestBlogs(maxPage + 1))
	assert.False(t, cached)
}

func TestSearch_LastPageOffset(t *testing.T) {
	s, store := newMockedService(t)

	f := SearchFilter{Query: "go"}
	store.On("listBlogs", mock.Anything, f, pageSize, (maxPage-1)*pageSize).Return([]Blog{}, nil).Once()

	_, err := s.Search(context.Background(), f, maxPage)
	require.NoError(t, err)

	store.AssertExpectations(t)
}

// setupTestUser creates an author directly in the users table.
func setupTestUser(db *sql.DB, username string) (int64, error) {
	var id int64
	err := db.QueryRow(
		"INSERT INTO users (fullname, email, username, profile_img) VALUES ($1, $2, $3, $4) RETURNING id",
		"Test "+username, username+"@example.com", username, "https://img/"+username,
	).Scan(&id)
	return id, err
}

func setupTestEnvironment(t *testing.T) (*BlogService, *sql.DB, int64) {
	db := common.TestDB("file://../../migrations", t)
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	id, err := setupTestUser(db, "author")
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Exec("DELETE FROM blogs")
		cache.Flush()
	})

	return NewBlogService(db, cache), db, id
}

func TestCreateBlog(t *testing.T) {
	s, db, authorID := setupTestEnvironment(t)
	ctx := context.Background()

	req := publishable()
	req.Title = "Hello World!"
	req.AuthorID = authorID

	id, err := s.CreateBlog(ctx, req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "hello-world-"))
	assert.Greater(t, len(id), len("hello-world-"))

	draftID, err := s.CreateBlog(ctx, &CreateBlogRequest{Title: "Only a title", Draft: true, AuthorID: authorID})
	require.NoError(t, err)

	var totalPosts, blogs int
	err = db.QueryRow("SELECT total_posts, cardinality(blogs) FROM users WHERE id = $1", authorID).Scan(&totalPosts, &blogs)
	require.NoError(t, err)
	assert.Equal(t, 1, totalPosts, "drafts are not counted")
	assert.Equal(t, 2, blogs, "drafts are still owned")

	var tags []byte
	err = db.QueryRow("SELECT array_to_string(tags, ',') FROM blogs WHERE blog_id = $1", id).Scan(&tags)
	require.NoError(t, err)
	assert.Equal(t, "go", string(tags))

	var content string
	err = db.QueryRow("SELECT content->'blocks'->0->>'type' FROM blogs WHERE blog_id = $1", id).Scan(&content)
	require.NoError(t, err)
	assert.Equal(t, "paragraph", content)

	var draft bool
	err = db.QueryRow("SELECT draft FROM blogs WHERE blog_id = $1", draftID).Scan(&draft)
	require.NoError(t, err)
	assert.True(t, draft)

	_, err = s.CreateBlog(ctx, &CreateBlogRequest{Title: "Orphan", Draft: true, AuthorID: authorID + 1000})
	assert.ErrorIs(t, err, ErrUserForeignKey)
}

// seedBlog inserts a blog with a fixed publish time so ordering is deterministic.
func seedBlog(t *testing.T, db *sql.DB, author int64, title string, tags []string, draft bool, reads, likes int, published time.Time) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO blogs (blog_id, title, des, banner, tags, author, draft, total_reads, total_likes, published_at)
		VALUES ($1, $2, 'd', 'b', string_to_array($3, ','), $4, $5, $6, $7, $8)`,
		slugify(title), title, strings.Join(tags, ","), author, draft, reads, likes, published)
	require.NoError(t, err)
}

func TestReadPaths(t *testing.T) {
	s, db, authorID := setupTestEnvironment(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		seedBlog(t, db, authorID, fmt.Sprintf("Post %d", i), []string{"go"}, false, i, 0, base.Add(time.Duration(i)*time.Hour))
	}
	seedBlog(t, db, authorID, "Secret Draft", []string{"go"}, true, 1000, 1000, base.Add(100*time.Hour))
	seedBlog(t, db, authorID, "Rust 100% Safe", []string{"rust"}, false, 0, 50, base.Add(-time.Hour))

	t.Run("latest pages never include drafts", func(t *testing.T) {
		first, err := s.ListLatest(ctx, 1)
		require.NoError(t, err)
		require.Len(t, first, 5)
		assert.Equal(t, "Post 6", first[0].Title)
		assert.Equal(t, "author", first[0].Author.Username)
		assert.Equal(t, "https://img/author", first[0].Author.ProfileImg)

		second, err := s.ListLatest(ctx, 2)
		require.NoError(t, err)
		require.Len(t, second, 3)
		assert.Equal(t, "Rust 100% Safe", second[2].Title)

		for _, b := range append(first, second...) {
			assert.NotEqual(t, "Secret Draft", b.Title)
		}

		count, err := s.CountLatest(ctx)
		require.NoError(t, err)
		assert.Equal(t, 8, count)
	})

	t.Run("trending orders by reads then likes", func(t *testing.T) {
		trending, err := s.ListTrending(ctx)
		require.NoError(t, err)
		require.Len(t, trending, 5)
		assert.Equal(t, "Post 6", trending[0].Title)
		assert.Equal(t, "Post 2", trending[4].Title)
	})

	t.Run("search", func(t *testing.T) {
		testCases := []struct {
			name  string
			f     SearchFilter
			count int
			first string
		}{
			{name: "by tag", f: SearchFilter{Tag: "rust"}, count: 1, first: "Rust 100% Safe"},
			{name: "tag wins over query", f: SearchFilter{Tag: "rust", Query: "post"}, count: 1, first: "Rust 100% Safe"},
			{name: "title is case insensitive", f: SearchFilter{Query: "POST"}, count: 7, first: "Post 6"},
			{name: "percent is literal", f: SearchFilter{Query: "100%"}, count: 1, first: "Rust 100% Safe"},
			{name: "draft titles are hidden", f: SearchFilter{Query: "secret"}, count: 0},
			{name: "empty filter", f: SearchFilter{}, count: 8, first: "Post 6"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				blogs, err := s.Search(ctx, tc.f, 1)
				require.NoError(t, err)

				count, err := s.CountSearch(ctx, tc.f)
				require.NoError(t, err)
				assert.Equal(t, tc.count, count)

				if tc.count == 0 {
					assert.Empty(t, blogs)
					return
				}
				assert.Equal(t, tc.first, blogs[0].Title)
			})
		}
	})
}
